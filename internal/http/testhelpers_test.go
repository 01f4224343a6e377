package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/ports"
	"github.com/target/grailed-admin/internal/service"
)

const (
	testCSRF      = "test-csrf-token"
	testDashboard = "2b1f0a52-8c1e-4c55-9d1a-3f0a6f3b9e10"
)

// idleStream blocks until closed, like a backend stream with nothing to say.
type idleStream struct {
	once sync.Once
	done chan struct{}
}

func (s *idleStream) Next() (string, error) {
	<-s.done
	return "", io.EOF
}

func (s *idleStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

type idleStreamer struct{}

func (idleStreamer) OpenLogStream(context.Context, job.Kind) (ports.EventStream, error) {
	return &idleStream{done: make(chan struct{})}, nil
}

// fakeControl records control calls and applies simple effects to the store.
type fakeControl struct {
	mu      sync.Mutex
	calls   []string
	filters []service.FilterRequest
}

func (f *fakeControl) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeControl) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeControl) Start(_ context.Context, st service.StatusStore) error {
	f.record("start:" + st.Kind().String())
	st.SetActive(true, job.Info("started"))
	return nil
}

func (f *fakeControl) Stop(_ context.Context, st service.StatusStore) error {
	f.record("stop:" + st.Kind().String())
	st.SetActive(false, job.Info("stopped"))
	return nil
}

func (f *fakeControl) FetchStatus(_ context.Context, st service.StatusStore) error {
	f.record("status:" + st.Kind().String())
	return nil
}

func (f *fakeControl) ClearLogs(st service.StatusStore) {
	f.record("clear:" + st.Kind().String())
	st.ClearLogs()
}

func (f *fakeControl) RunFilter(_ context.Context, st service.StatusStore, req service.FilterRequest) error {
	f.record("filter:" + st.Kind().String())
	f.mu.Lock()
	f.filters = append(f.filters, req)
	f.mu.Unlock()
	return nil
}

// fakeAuth serves a fixed set of sessions.
type fakeAuth struct {
	sessions map[string]domainauth.Session
	logout   string
}

func (f *fakeAuth) BeginLogin(_ context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	return &service.BeginLoginResult{AuthURL: "https://idp.example.com/authorize?state=st", State: "st", Nonce: "n"}, nil
}

func (f *fakeAuth) CompleteLogin(_ context.Context, in service.CompleteLoginInput) (domainauth.Session, error) {
	s := domainauth.Session{ID: "new-session", UserID: "u1", Role: domainauth.RoleOperator}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeAuth) GetSession(_ context.Context, id string) (domainauth.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeAuth) Logout(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeAuth) LogoutURL() string { return f.logout }

type testRouter struct {
	handler  http.Handler
	control  *fakeControl
	sessions *service.SessionManager
}

type routerOption func(*RouterServices)

func withAuth(a AuthServiceInterface) routerOption {
	return func(s *RouterServices) { s.Auth = a }
}

func withAudit(a ports.AuditLog) routerOption {
	return func(s *RouterServices) { s.Audit = a }
}

func newTestRouter(t *testing.T, opts ...routerOption) *testRouter {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	consumer, err := service.NewStreamConsumer(service.StreamConsumerOptions{Streamer: idleStreamer{}, Logger: logger})
	require.NoError(t, err)
	sessions, err := service.NewSessionManager(service.SessionManagerOptions{
		Session: service.SessionOptions{Consumer: consumer},
		Logger:  logger,
	})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	renderer, err := NewRenderer(os.DirFS("../../frontend/templates"), logger)
	require.NoError(t, err)

	control := &fakeControl{}
	svc := RouterServices{
		Control:  control,
		Sessions: sessions,
		Renderer: renderer,
		StaticFS: os.DirFS("../../frontend/static"),
		Logger:   logger,
	}
	for _, opt := range opts {
		opt(&svc)
	}
	h, err := NewRouter(svc)
	require.NoError(t, err)
	return &testRouter{handler: h, control: control, sessions: sessions}
}

// request builds a request carrying the dashboard and CSRF cookies.
func request(method, target string, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: dashboardCookie, Value: testDashboard})
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	if method != http.MethodGet {
		req.Header.Set(csrfHeaderName, testCSRF)
	}
	return req
}

func (tr *testRouter) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}
