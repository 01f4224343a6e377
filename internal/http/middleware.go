package httpx

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/grailed-admin/internal/domain/audit"
	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/service"
)

// Logging logs one line per request.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *respWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijack not supported")
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover turns a handler panic into a 500 and logs the stack.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// localSession stands in for a signed-in user when authentication is disabled.
var localSession = domainauth.Session{ID: "local", UserID: "local", FirstName: "Local", LastName: "Operator",
	Role: domainauth.RoleAdmin}

// Authenticate resolves the session cookie and attaches the session to the request context.
// A nil auth service means authentication is disabled and every request acts as a local admin.
// Requests without a valid session continue anonymously.
func Authenticate(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session *domainauth.Session
			if authSvc == nil {
				s := localSession
				session = &s
			} else if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
				if s, err := authSvc.GetSession(r.Context(), c.Value); err == nil {
					session = &s
				}
			}
			ctx := r.Context()
			if session != nil {
				ctx = SetSessionInContext(ctx, session)
				ctx = audit.WithActor(ctx, session.Actor())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose session does not satisfy role. Browsers are sent to the
// login page; API clients get a JSON 401 or 403.
func RequireRole(role domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if session == nil {
				if IsBrowserRequest(r) {
					redirectToLogin(w, r)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			if !session.Role.Allows(role) {
				if IsBrowserRequest(r) && !IsHTMX(r) {
					http.Error(w, "Access Denied: You don't have permission to access this resource", http.StatusForbidden)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DashboardOptions configures the Dashboard middleware.
type DashboardOptions struct {
	Sessions     *service.SessionManager
	CookieDomain string
	Logger       *slog.Logger
}

// Dashboard attaches the caller's dashboard session, which owns the per-job stores, creating
// one and setting its cookie on first visit.
func Dashboard(opts DashboardOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(dashboardCookie); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     dashboardCookie,
					Value:    id,
					Path:     "/",
					Domain:   opts.CookieDomain,
					HttpOnly: true,
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(dashboardCookieLife.Seconds()),
				})
			}
			d, err := opts.Sessions.Get(id)
			if err != nil {
				opts.Logger.ErrorContext(r.Context(), "dashboard session unavailable", "error", err)
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r.WithContext(withDashboard(r.Context(), d)))
		})
	}
}

// IsBrowserRequest reports whether the caller expects HTML rather than JSON.
func IsBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := safeRedirectPath(r.URL.RequestURI())
	if IsHTMX(r) {
		if cur := r.Header.Get("Hx-Current-Url"); cur != "" {
			if u, err := url.Parse(cur); err == nil {
				target = safeRedirectPath(u.RequestURI())
			}
		}
		SetHXRedirect(w, "/auth/signed-out?redirect_uri="+url.QueryEscape(target))
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/auth/login?redirect_uri="+url.QueryEscape(target), http.StatusSeeOther)
}

// safeRedirectPath returns candidate when it is a same-origin path, otherwise "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return candidate
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
