// Package httpx serves the dashboard: server-rendered pages, htmx job actions, the live log
// relays and the login flow.
package httpx

import "time"

// Cookie names.
const (
	sessionCookie       = "session_id"
	dashboardCookie     = "dashboard_id"
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginRedirect   = "post_login_redirect"
	dashboardCookieLife = 7 * 24 * time.Hour
)

// Page identifiers. Each page renders the "<page>-content" template.
const (
	PageScraping  = "scraping"
	PageEmbedding = "embedding"
	PageFilter    = "filter"
	PageAudit     = "audit"
	PageSignedOut = "signed-out"
	PageError     = "error"
)

// SSE event names consumed by the htmx sse extension.
const (
	eventStatus  = "status"
	eventLog     = "log"
	eventConsole = "console"
)

// ContentTemplateFor returns the template that renders page's main content.
func ContentTemplateFor(page string) string {
	return page + "-content"
}
