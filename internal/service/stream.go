package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/target/grailed-admin/internal/checkpoint"
	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/observability/metrics"
	"github.com/target/grailed-admin/internal/observability/notify"
	"github.com/target/grailed-admin/internal/observability/statsd"
	"github.com/target/grailed-admin/internal/ports"
)

// AutoStopper halts a job after the stream reported a fault. ControlService implements it.
type AutoStopper interface {
	AutoStop(ctx context.Context, st StatusStore, reason, detail string)
}

// StreamConsumerOptions groups dependencies for StreamConsumer.
type StreamConsumerOptions struct {
	Streamer ports.LogStreamer  // Required: backend log stream
	Parser   *checkpoint.Parser // Optional: defaults to the dictionary format only
	Stopper  AutoStopper        // Optional: without it faults only flip the local flag
	Metrics  statsd.Sink        // Optional: stream metrics
	Logger   *slog.Logger       // Optional: structured logger
}

// StreamConsumer turns a backend log stream into store mutations.
type StreamConsumer struct {
	streamer ports.LogStreamer
	parser   *checkpoint.Parser
	stopper  AutoStopper
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewStreamConsumer constructs a StreamConsumer.
func NewStreamConsumer(opts StreamConsumerOptions) (*StreamConsumer, error) {
	if opts.Streamer == nil {
		return nil, errors.New("LogStreamer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := opts.Parser
	if parser == nil {
		parser = checkpoint.NewParser(nil)
	}
	return &StreamConsumer{
		streamer: opts.Streamer,
		parser:   parser,
		stopper:  opts.Stopper,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "stream_consumer"),
	}, nil
}

// Subscribe opens the backend stream for st's job and applies its events to st until the
// subscription is closed, ctx is done or the stream ends.
func (c *StreamConsumer) Subscribe(ctx context.Context, st StatusStore) (*Subscription, error) {
	kind := st.Kind()
	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := c.streamer.OpenLogStream(streamCtx, kind)
	metrics.EmitStreamConnect(c.metrics, kind.String(), err)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open %s log stream: %w", kind, err)
	}

	sub := &Subscription{
		consumer: c,
		store:    st,
		stream:   stream,
		stopCtx:  context.WithoutCancel(ctx),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	stopWatch := context.AfterFunc(streamCtx, func() { _ = stream.Close() })
	go func() {
		defer stopWatch()
		sub.run()
	}()
	c.logger.DebugContext(ctx, "log stream subscribed", "kind", kind)
	return sub, nil
}

// Subscription is one open log stream bound to one store.
type Subscription struct {
	consumer *StreamConsumer
	store    StatusStore
	stream   ports.EventStream
	stopCtx  context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	closed bool
	err    error

	done  chan struct{}
	stops sync.WaitGroup
}

// Close releases the stream. Once Close returns no further event from this subscription is
// applied, whatever the transport still delivers. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()
	if already {
		return nil
	}
	s.cancel()
	return s.stream.Close()
}

// Done is closed when the read loop exits.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err reports why the read loop ended: io.EOF when the backend closed the stream, the transport
// error otherwise, and nil when the subscription was closed or is still running.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the read loop and any stop call it triggered have finished.
func (s *Subscription) Wait() {
	<-s.done
	s.stops.Wait()
}

func (s *Subscription) run() {
	defer close(s.done)
	defer s.cancel()
	for {
		payload, err := s.stream.Next()
		if err != nil {
			s.finish(err)
			return
		}
		if !s.apply(payload) {
			return
		}
	}
}

func (s *Subscription) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.err = err
	if !errors.Is(err, io.EOF) {
		s.consumer.logger.Warn("log stream ended", "kind", s.store.Kind(), "error", err)
	}
}

// apply handles one payload under the subscription lock and reports whether to keep reading.
func (s *Subscription) apply(payload string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		metrics.EmitStreamEvent(s.consumer.metrics, s.store.Kind().String(), metrics.StreamLate)
		return false
	}
	s.handle(payload)
	return true
}

func (s *Subscription) handle(payload string) {
	c := s.consumer
	st := s.store
	kind := st.Kind()

	if strings.TrimSpace(payload) == "" {
		metrics.EmitStreamEvent(c.metrics, kind.String(), metrics.StreamIgnored)
		return
	}

	ev, err := DecodeLogEvent(payload)
	if err != nil {
		metrics.EmitStreamEvent(c.metrics, kind.String(), metrics.StreamUndecoded)
		st.Append(job.Error(ParseDiagnostic(kind)))
		s.fault(notify.ReasonUnparseable, err.Error())
		return
	}

	st.Append(ev)
	metrics.EmitStreamEvent(c.metrics, kind.String(), metrics.StreamApplied)
	if ev.Level.IsError() {
		s.fault(notify.ReasonRemoteError, ev.Message)
	}

	raw, ok := checkpoint.Match(kind, ev.Message)
	if !ok {
		return
	}
	cp, err := c.parser.Parse(kind, raw)
	if err != nil {
		metrics.EmitStreamEvent(c.metrics, kind.String(), metrics.StreamBadCheckpt)
		st.Append(job.Error(ParseDiagnostic(kind)))
		s.fault(notify.ReasonBadCheckpoint, err.Error())
		return
	}
	st.ApplyCheckpoint(cp)
	metrics.EmitStreamEvent(c.metrics, kind.String(), metrics.StreamCheckpoint)
}

// fault stops an active job. Only the caller that flips the flag issues the backend stop.
func (s *Subscription) fault(reason, detail string) {
	if !s.store.Active() || !s.store.Deactivate() {
		return
	}
	stopper := s.consumer.stopper
	if stopper == nil {
		return
	}
	s.stops.Add(1)
	go func() {
		defer s.stops.Done()
		stopper.AutoStop(s.stopCtx, s.store, reason, detail)
	}()
}

// wireLogEvent is the backend's event shape. Pointers tell a missing field from an empty one.
type wireLogEvent struct {
	Level     *string `json:"level"`
	Message   *string `json:"message"`
	Timestamp *string `json:"timestamp"`
}

// DecodeLogEvent decodes one stream payload. The payload must be a JSON object carrying level
// and message; both are kept verbatim. A missing timestamp decodes as "". The event gets a fresh
// local ID.
func DecodeLogEvent(payload string) (job.LogEvent, error) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return job.LogEvent{}, errors.New("log event is not a JSON object")
	}
	var w wireLogEvent
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return job.LogEvent{}, fmt.Errorf("decode log event: %w", err)
	}
	if w.Level == nil {
		return job.LogEvent{}, errors.New("log event has no level")
	}
	if w.Message == nil {
		return job.LogEvent{}, errors.New("log event has no message")
	}
	ev := job.LogEvent{
		ID:      uuid.NewString(),
		Level:   job.Level(*w.Level),
		Message: *w.Message,
	}
	if w.Timestamp != nil {
		ev.Timestamp = *w.Timestamp
	}
	return ev, nil
}
