package ports

import (
	"context"

	"github.com/target/grailed-admin/internal/domain/job"
)

// Ack is the acknowledgement the backend returns for control calls.
type Ack struct {
	Message string
}

// JobBackend issues control requests to the service that runs the jobs.
type JobBackend interface {
	Start(ctx context.Context, kind job.Kind) (Ack, error)
	Stop(ctx context.Context, kind job.Kind) (Ack, error)
	Status(ctx context.Context, kind job.Kind) (job.StatusReport, error)
	DeleteBySubstrings(ctx context.Context, substrings []string) (Ack, error)
	DeleteByDesigners(ctx context.Context, designers []string) (Ack, error)
	DeleteLowCountDesigners(ctx context.Context, threshold int) (Ack, error)
}

// LogStreamer opens the backend's per-job log event stream.
type LogStreamer interface {
	OpenLogStream(ctx context.Context, kind job.Kind) (EventStream, error)
}

// EventStream yields raw event payloads in delivery order.
// Next returns io.EOF once the server ends the stream. Close unblocks a pending Next.
type EventStream interface {
	Next() (string, error)
	Close() error
}
