// Package failurenotifier fans job fault notifications out to the configured sinks.
package failurenotifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/target/grailed-admin/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Timeout bounds asynchronous deliveries started by Dispatch. Defaults to 10s.
	Timeout time.Duration
	// Cooldown suppresses repeat notifications for the same job kind. Zero disables it.
	Cooldown time.Duration
}

// Service dispatches job fault events to all registered sinks.
type Service struct {
	logger   *slog.Logger
	sinks    []SinkRegistration
	timeout  time.Duration
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
	inflight sync.WaitGroup
}

// NewService constructs a failure notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		logger:   logger.With("component", "failure_notifier"),
		sinks:    sinks,
		timeout:  timeout,
		cooldown: opts.Cooldown,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// NotifyJobFault delivers payload to every sink and waits for all deliveries.
func (s *Service) NotifyJobFault(ctx context.Context, payload notify.JobFaultPayload) {
	if len(s.sinks) == 0 || !s.admit(payload.Kind) {
		return
	}
	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = s.now()
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendJobFault(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "failure notifier delivery error",
					"sink", entry.Name,
					"job_kind", payload.Kind,
					"reason", payload.Reason,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// Dispatch delivers payload in the background, detached from the caller's cancellation.
func (s *Service) Dispatch(ctx context.Context, payload notify.JobFaultPayload) {
	if !s.Enabled() {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		s.NotifyJobFault(sendCtx, payload)
	}()
}

// Wait blocks until background deliveries started by Dispatch finish.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}

func (s *Service) admit(kind string) bool {
	if s.cooldown <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if last, ok := s.lastSent[kind]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	s.lastSent[kind] = now
	return true
}
