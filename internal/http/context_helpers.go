package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/service"
)

type sessionKey struct{}

type dashboardKey struct{}

// SetSessionInContext returns a child context carrying the signed-in user's session.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the signed-in user's session, or nil.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	s, _ := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s
}

func withDashboard(ctx context.Context, d *service.Session) context.Context {
	return context.WithValue(ctx, dashboardKey{}, d)
}

// DashboardFromRequest returns the dashboard session attached by the Dashboard middleware.
func DashboardFromRequest(r *http.Request) *service.Session {
	d, _ := r.Context().Value(dashboardKey{}).(*service.Session)
	return d
}
