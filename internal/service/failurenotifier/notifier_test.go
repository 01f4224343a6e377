package failurenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/target/grailed-admin/internal/observability/notify"
)

func TestServiceNotifyJobFault(t *testing.T) {
	ctx := context.Background()

	var received []notify.JobFaultPayload
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "capture",
				Sink: notify.SinkFunc(func(_ context.Context, payload notify.JobFaultPayload) error {
					received = append(received, payload)
					return nil
				}),
			},
		},
	})

	svc.NotifyJobFault(ctx, notify.JobFaultPayload{Kind: "scraping", Reason: notify.ReasonRemoteError})

	if len(received) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(received))
	}
	if received[0].Severity != notify.SeverityCritical {
		t.Fatalf("expected severity to default to critical, got %s", received[0].Severity)
	}
	if received[0].OccurredAt.IsZero() {
		t.Fatal("expected OccurredAt to be stamped")
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{Sinks: []SinkRegistration{{Name: "nil"}}})
	if svc.Enabled() {
		t.Fatal("expected Enabled() to be false when no usable sinks registered")
	}
	svc.Dispatch(context.Background(), notify.JobFaultPayload{})
	svc.Wait()
}

func TestServiceSinkErrorsDoNotPanic(t *testing.T) {
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "fail",
				Sink: notify.SinkFunc(func(context.Context, notify.JobFaultPayload) error {
					return errors.New("boom")
				}),
			},
		},
	})
	svc.NotifyJobFault(context.Background(), notify.JobFaultPayload{Kind: "scraping"})
}

func TestServiceCooldownPerKind(t *testing.T) {
	var (
		mu    sync.Mutex
		kinds []string
	)
	svc := NewService(Options{
		Cooldown: time.Minute,
		Sinks: []SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(_ context.Context, p notify.JobFaultPayload) error {
				mu.Lock()
				kinds = append(kinds, p.Kind)
				mu.Unlock()
				return nil
			}),
		}},
	})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	svc.NotifyJobFault(ctx, notify.JobFaultPayload{Kind: "scraping"})
	svc.NotifyJobFault(ctx, notify.JobFaultPayload{Kind: "scraping"})
	svc.NotifyJobFault(ctx, notify.JobFaultPayload{Kind: "text-embedding"})
	now = now.Add(2 * time.Minute)
	svc.NotifyJobFault(ctx, notify.JobFaultPayload{Kind: "scraping"})

	if len(kinds) != 3 {
		t.Fatalf("expected 3 deliveries, got %v", kinds)
	}
}

func TestServiceDispatchDetachesFromCaller(t *testing.T) {
	done := make(chan struct{})
	svc := NewService(Options{
		Sinks: []SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(ctx context.Context, _ notify.JobFaultPayload) error {
				if ctx.Err() != nil {
					t.Errorf("delivery context should not inherit cancellation: %v", ctx.Err())
				}
				close(done)
				return nil
			}),
		}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Dispatch(ctx, notify.JobFaultPayload{Kind: "scraping"})
	svc.Wait()

	select {
	case <-done:
	default:
		t.Fatal("expected delivery")
	}
}
