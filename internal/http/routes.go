package httpx

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
	"github.com/target/grailed-admin/internal/service"
)

// RouterServices groups what the router wires into handlers.
type RouterServices struct {
	Control  JobController           // Required
	Sessions *service.SessionManager // Required
	Renderer *Renderer               // Required
	// Auth is nil when authentication is disabled; every request then acts as a local admin.
	Auth     AuthServiceInterface
	Audit    ports.AuditLog // Optional
	StaticFS fs.FS          // Optional: served under /static/

	CookieDomain string
	Heartbeat    time.Duration
	Logger       *slog.Logger
}

// NewRouter builds the dashboard's handler tree. Recover, Logging and Compression are applied
// by the caller around it.
func NewRouter(svc RouterServices) (http.Handler, error) {
	if svc.Control == nil || svc.Sessions == nil || svc.Renderer == nil {
		return nil, errors.New("control, sessions and renderer are required")
	}
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pages := &PageHandlers{
		Renderer:    svc.Renderer,
		Control:     svc.Control,
		Audit:       svc.Audit,
		AuthEnabled: svc.Auth != nil,
		Logger:      logger,
	}
	jobs := &JobHandlers{Control: svc.Control, Renderer: svc.Renderer, Logger: logger}
	streams := &StreamHandlers{Renderer: svc.Renderer, Heartbeat: svc.Heartbeat, Logger: logger}
	dashboard := Dashboard(DashboardOptions{Sessions: svc.Sessions, CookieDomain: svc.CookieDomain, Logger: logger})

	guest := chain(RequireRole(domainauth.RoleGuest), dashboard)
	operator := chain(RequireRole(domainauth.RoleOperator), dashboard)
	admin := chain(RequireRole(domainauth.RoleAdmin), dashboard)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	if svc.StaticFS != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(svc.StaticFS)))
	}

	auth := &AuthHandlers{
		Svc:          svc.Auth,
		Sessions:     svc.Sessions,
		Renderer:     svc.Renderer,
		CookieDomain: svc.CookieDomain,
		Logger:       logger,
	}
	mux.HandleFunc("GET /auth/status", auth.Status)
	if svc.Auth != nil {
		mux.HandleFunc("GET /auth/login", auth.Login)
		mux.HandleFunc("GET /auth/callback", auth.Callback)
		mux.HandleFunc("POST /auth/logout", auth.Logout)
		mux.HandleFunc("GET /auth/signed-out", auth.SignedOut)
	}

	mux.Handle("GET /{$}", guest(http.HandlerFunc(pages.Home)))
	mux.Handle("GET /scraping", guest(http.HandlerFunc(pages.Scraping)))
	mux.Handle("GET /embedding", guest(http.HandlerFunc(pages.Embedding)))
	mux.Handle("GET /filter", guest(http.HandlerFunc(pages.Filter)))
	mux.Handle("POST /filter", admin(http.HandlerFunc(pages.SubmitFilter)))
	mux.Handle("GET /audit", admin(http.HandlerFunc(pages.AuditLog)))

	mux.Handle("POST /jobs/{kind}/start", operator(http.HandlerFunc(jobs.Start)))
	mux.Handle("POST /jobs/{kind}/stop", operator(http.HandlerFunc(jobs.Stop)))
	mux.Handle("POST /jobs/{kind}/status", operator(http.HandlerFunc(jobs.Status)))
	mux.Handle("POST /jobs/{kind}/logs/clear", operator(http.HandlerFunc(jobs.ClearLogs)))
	mux.Handle("GET /jobs/{kind}/events", guest(http.HandlerFunc(streams.Events)))
	mux.Handle("GET /jobs/{kind}/ws", guest(http.HandlerFunc(streams.WebSocket)))
	mux.Handle("GET /api/jobs/{kind}", guest(http.HandlerFunc(jobs.Snapshot)))

	mux.HandleFunc("/", pages.NotFound)

	var h http.Handler = mux
	h = CSRF(svc.CookieDomain)(h)
	h = Authenticate(svc.Auth)(h)
	return h, nil
}

// chain composes middleware so the first runs outermost.
func chain(mw ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		return h
	}
}
