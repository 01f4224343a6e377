package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/service"
)

// AuthServiceInterface is the login surface the auth handlers and middleware use.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (domainauth.Session, error)
	GetSession(ctx context.Context, id string) (domainauth.Session, error)
	Logout(ctx context.Context, id string) error
	LogoutURL() string
}

const oauthCookieMaxAge = 600

// AuthHandlers serves the login flow.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Sessions     *service.SessionManager
	Renderer     *Renderer
	CookieDomain string
	Logger       *slog.Logger
}

// Login handles GET /auth/login?redirect_uri=<path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}
	h.setCookie(w, r, oauthStateCookie, result.State, oauthCookieMaxAge)
	h.setCookie(w, r, oauthNonceCookie, result.Nonce, oauthCookieMaxAge)
	h.setCookie(w, r, postLoginRedirect, redirectURI, oauthCookieMaxAge)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_code",
			Err: errors.New("authorization code and state are required")})
		return
	}
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_state",
			Err: errors.New("invalid or missing state parameter")})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_nonce",
			Err: errors.New("missing nonce parameter")})
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.Logger.WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "login_completion_failed", Err: err})
		return
	}

	maxAge := 0
	if !sess.ExpiresAt.IsZero() {
		maxAge = max(int(time.Until(sess.ExpiresAt).Seconds()), 1)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	h.clearCookie(w, r, oauthStateCookie)
	h.clearCookie(w, r, oauthNonceCookie)

	redirectURI := "/"
	if c, err := r.Cookie(postLoginRedirect); err == nil {
		redirectURI = safeRedirectPath(c.Value)
	}
	h.clearCookie(w, r, postLoginRedirect)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout handles POST /auth/logout. It ends the login session and the dashboard session
// with its log subscriptions, then sends the browser to the provider's logout page when
// there is one.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.Svc.Logout(r.Context(), c.Value); err != nil {
			h.Logger.WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	if c, err := r.Cookie(dashboardCookie); err == nil && h.Sessions != nil {
		h.Sessions.Drop(c.Value)
	}
	h.clearCookie(w, r, sessionCookie)
	h.clearCookie(w, r, dashboardCookie)

	target := h.Svc.LogoutURL()
	if target == "" {
		u := url.URL{Path: "/auth/signed-out"}
		q := url.Values{}
		q.Set("redirect_uri", safeRedirectPath(r.FormValue("redirect_uri")))
		u.RawQuery = q.Encode()
		target = u.String()
	}
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SignedOut renders the signed-out page with a link back to login.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	h.Renderer.RenderPage(w, r, http.StatusOK, PageData{
		Title:       "Signed out",
		Page:        PageSignedOut,
		AuthEnabled: true,
		CSRFToken:   CSRFToken(r.Context()),
		Data:        map[string]string{"RedirectURI": safeRedirectPath(r.URL.Query().Get("redirect_uri"))},
	})
}

// Status handles GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	s := GetSessionFromContext(r.Context())
	if s == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    s.UserID,
			"name":  s.DisplayName(),
			"email": s.Email,
			"role":  s.Role,
		},
		"expires_at": s.ExpiresAt,
	})
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	h.setCookie(w, r, name, "", -1)
}
