package ports

import (
	"context"

	"github.com/target/grailed-admin/internal/domain/audit"
	"github.com/target/grailed-admin/internal/observability/notify"
)

// AuditLog records control actions and lists them back.
type AuditLog interface {
	Record(ctx context.Context, entry audit.Entry) error
	List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error)
}

// FaultNotifier is told when a job is halted because its stream reported a fault.
// Dispatch must not block the caller on delivery.
type FaultNotifier interface {
	Dispatch(ctx context.Context, payload notify.JobFaultPayload)
}
