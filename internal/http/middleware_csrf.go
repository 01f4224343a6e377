package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
)

const (
	csrfCookieName  = "csrf_token"
	csrfHeaderName  = "X-Csrf-Token"
	csrfFormField   = "csrf_token"
	csrfTokenLength = 32
)

type csrfCtxKey struct{}

// CSRF guards state-changing requests with a double-submit cookie. The token is readable by
// scripts so htmx can echo it in the X-Csrf-Token header; plain forms post it as csrf_token.
func CSRF(cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(csrfCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					Domain:   cookieDomain,
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteStrictMode,
				})
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfCtxKey{}, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			default:
				submitted := r.Header.Get(csrfHeaderName)
				if submitted == "" {
					submitted = r.PostFormValue(csrfFormField)
				}
				if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
					http.Error(w, "CSRF token validation failed", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token attached by the CSRF middleware.
func CSRFToken(ctx context.Context) string {
	s, _ := ctx.Value(csrfCtxKey{}).(string)
	return s
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
