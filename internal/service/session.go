package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/observability/metrics"
	"github.com/target/grailed-admin/internal/observability/statsd"
	"github.com/target/grailed-admin/internal/store"
)

// ErrSessionClosed is returned when a view is opened on a session that has been torn down.
var ErrSessionClosed = errors.New("dashboard session closed")

// SessionOptions configures a dashboard session.
type SessionOptions struct {
	Consumer *StreamConsumer // Required: applies backend log events to the session's stores
	Metrics  statsd.Sink     // Optional: viewer gauges
	Logger   *slog.Logger    // Optional: structured logger

	// ReconnectInterval is the minimum spacing between subscribe attempts for one job.
	ReconnectInterval time.Duration
	// ReconnectBurst is how many attempts may be made back to back before pacing applies.
	ReconnectBurst int
}

const (
	defaultReconnectInterval = 2 * time.Second
	defaultReconnectBurst    = 2
)

// Session is one dashboard session: a store per job kind, plus the backend subscriptions that
// feed them while at least one browser view of the job is open.
type Session struct {
	id       string
	stores   *store.Set
	consumer *StreamConsumer
	metrics  statsd.Sink
	logger   *slog.Logger
	interval time.Duration
	burst    int

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu     sync.Mutex
	views  map[job.Kind]*view
	closed bool

	lastSeen atomic.Int64
}

// view is the shared subscription behind the open browser views of one job. A closing view
// stays registered until its supervisor has exited so a reopen cannot overlap it.
type view struct {
	refs    int
	closing bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSession builds a session whose subscriptions live no longer than parent.
func NewSession(parent context.Context, id string, opts SessionOptions) (*Session, error) {
	if opts.Consumer == nil {
		return nil, errors.New("StreamConsumer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = defaultReconnectInterval
	}
	if opts.ReconnectBurst <= 0 {
		opts.ReconnectBurst = defaultReconnectBurst
	}

	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	s := &Session{
		id:       id,
		stores:   store.NewSet(),
		consumer: opts.Consumer,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "dashboard_session", "session", id),
		interval: opts.ReconnectInterval,
		burst:    opts.ReconnectBurst,
		ctx:      gctx,
		cancel:   cancel,
		group:    group,
		views:    make(map[job.Kind]*view),
	}
	s.Touch()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Store returns the store for kind.
func (s *Session) Store(kind job.Kind) (*store.Store, error) {
	st := s.stores.Get(kind)
	if st == nil {
		return nil, fmt.Errorf("%w: %q", job.ErrUnknownKind, kind)
	}
	return st, nil
}

// Touch records activity on the session.
func (s *Session) Touch() { s.lastSeen.Store(time.Now().UnixNano()) }

// LastSeen returns the time of the latest recorded activity.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Viewers returns the number of open views of kind.
func (s *Session) Viewers(kind job.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.views[kind]; v != nil {
		return v.refs
	}
	return 0
}

// Idle reports whether no view is open.
func (s *Session) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.views {
		if !v.closing {
			return false
		}
	}
	return true
}

// OpenView registers a browser view of kind. The first view opens the backend subscription; the
// returned release closes it again once the last view goes away, and only returns after the
// subscription is closed. Opening while the previous subscription is still closing waits for it.
func (s *Session) OpenView(kind job.Kind) (func(), error) {
	if _, err := s.Store(kind); err != nil {
		return nil, err
	}

	s.mu.Lock()
	var v *view
	for {
		if s.closed {
			s.mu.Unlock()
			return nil, ErrSessionClosed
		}
		v = s.views[kind]
		if v == nil || !v.closing {
			break
		}
		closing := v
		s.mu.Unlock()
		<-closing.done
		s.mu.Lock()
		if s.views[kind] == closing {
			delete(s.views, kind)
		}
	}
	if v == nil {
		vctx, cancel := context.WithCancel(s.ctx)
		v = &view{cancel: cancel, done: make(chan struct{})}
		s.views[kind] = v
		done := v.done
		s.group.Go(func() error {
			defer close(done)
			s.supervise(vctx, kind)
			return nil
		})
	}
	v.refs++
	refs := v.refs
	s.mu.Unlock()

	s.Touch()
	metrics.GaugeViewers(s.metrics, kind.String(), refs)

	var once sync.Once
	return func() { once.Do(func() { s.releaseView(kind, v) }) }, nil
}

func (s *Session) releaseView(kind job.Kind, v *view) {
	s.mu.Lock()
	v.refs--
	refs := v.refs
	last := refs == 0 && s.views[kind] == v
	if last {
		v.closing = true
	}
	s.mu.Unlock()

	s.Touch()
	metrics.GaugeViewers(s.metrics, kind.String(), refs)
	if !last {
		return
	}
	v.cancel()
	<-v.done

	s.mu.Lock()
	if s.views[kind] == v {
		delete(s.views, kind)
	}
	s.mu.Unlock()
}

// supervise keeps one subscription open for kind until ctx ends, resubscribing at a paced rate
// when the backend ends the stream or cannot be reached.
func (s *Session) supervise(ctx context.Context, kind job.Kind) {
	st := s.stores.Get(kind)
	limiter := rate.NewLimiter(rate.Every(s.interval), s.burst)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		sub, err := s.consumer.Subscribe(ctx, st)
		if err != nil {
			s.logger.WarnContext(ctx, "log stream subscribe failed", "kind", kind, "error", err)
			continue
		}
		select {
		case <-ctx.Done():
			_ = sub.Close()
			return
		case <-sub.Done():
			if err := sub.Err(); err != nil && !errors.Is(err, io.EOF) {
				s.logger.WarnContext(ctx, "log stream lost, resubscribing", "kind", kind, "error", err)
			} else {
				s.logger.DebugContext(ctx, "log stream ended, resubscribing", "kind", kind)
			}
			_ = sub.Close()
		}
	}
}

// Close tears down every view and closes the stores. Responses to control calls still in
// flight are ignored by the closed stores.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.views = make(map[job.Kind]*view)
	s.mu.Unlock()

	s.cancel()
	_ = s.group.Wait()
	s.stores.Close()
}

// SessionManagerOptions configures a SessionManager.
type SessionManagerOptions struct {
	Session SessionOptions // Required: options for each new session
	IdleTTL time.Duration  // Sessions with no open view are dropped after this long
	Logger  *slog.Logger
}

// SessionManager keeps one dashboard Session per browser session.
type SessionManager struct {
	opts    SessionOptions
	idleTTL time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if opts.Session.Consumer == nil {
		return nil, errors.New("StreamConsumer is required")
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = logger
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		opts:     opts.Session,
		idleTTL:  opts.IdleTTL,
		logger:   logger.With("component", "session_manager"),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}, nil
}

// Get returns the session for id, creating it on first use.
func (m *SessionManager) Get(id string) (*Session, error) {
	if id == "" {
		return nil, errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return nil, ErrSessionClosed
	}
	if s, ok := m.sessions[id]; ok {
		s.Touch()
		return s, nil
	}
	s, err := NewSession(m.ctx, id, m.opts)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = s
	return s, nil
}

// Drop closes and forgets the session for id, e.g. on logout.
func (m *SessionManager) Drop(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap closes sessions that have had no open view for longer than the idle TTL.
func (m *SessionManager) Reap(now time.Time) int {
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Idle() && now.Sub(s.LastSeen()) > m.idleTTL {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Run reaps idle sessions at a fraction of the TTL until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) error {
	interval := m.idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "session reaper stopping", "reason", ctx.Err())
			return nil
		case now := <-ticker.C:
			if n := m.Reap(now); n > 0 {
				m.logger.DebugContext(ctx, "reaped idle dashboard sessions", "count", n)
			}
		}
	}
}

// Close tears down every session. Later Get calls fail with ErrSessionClosed.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = nil
	m.mu.Unlock()

	m.cancel()
	for _, s := range sessions {
		s.Close()
	}
}
