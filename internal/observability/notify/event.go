// Package notify defines the payload and sink contract used to page operators when a job
// halts on its own, plus the JSON webhook delivery shared by the concrete sinks.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Fault reasons reported when the dashboard stops a job on its own.
const (
	ReasonRemoteError     = "remote_error"
	ReasonUnparseable     = "unparseable_event"
	ReasonBadCheckpoint   = "bad_checkpoint"
	ReasonStreamTransport = "stream_transport"
)

// JobFaultPayload describes a job that was halted because the backend reported a fault.
type JobFaultPayload struct {
	Kind       string
	Reason     string
	Message    string
	SessionID  string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink is a destination for job fault notifications.
type Sink interface {
	SendJobFault(ctx context.Context, payload JobFaultPayload) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, payload JobFaultPayload) error

// SendJobFault implements Sink.
func (f SinkFunc) SendJobFault(ctx context.Context, payload JobFaultPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// Fallback returns value unless it is blank.
func Fallback(value, fallback string) string {
	for _, r := range value {
		if r != ' ' && r != '\t' && r != '\n' {
			return value
		}
	}
	return fallback
}
