package httpx

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
)

func authRouter(t *testing.T, role domainauth.Role) *testRouter {
	t.Helper()
	return newTestRouter(t, withAuth(&fakeAuth{sessions: map[string]domainauth.Session{
		"sess": {ID: "sess", UserID: "u", Email: "u@example.com", Role: role},
	}}))
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess"})
	return req
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       domainauth.Role
		signedIn   bool
		method     string
		path       string
		accept     string
		htmx       bool
		wantStatus int
		wantHeader map[string]string
	}{
		{name: "browser without session goes to login", method: http.MethodGet, path: "/scraping",
			accept: "text/html", wantStatus: http.StatusSeeOther,
			wantHeader: map[string]string{"Location": "/auth/login?redirect_uri=%2Fscraping"}},
		{name: "htmx without session gets HX-Redirect", method: http.MethodPost, path: "/jobs/scraping/start",
			htmx: true, wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Hx-Redirect": "/auth/signed-out?redirect_uri=%2Fjobs%2Fscraping%2Fstart"}},
		{name: "api without session is 401", method: http.MethodGet, path: "/api/jobs/scraping",
			accept: "application/json", wantStatus: http.StatusUnauthorized},
		{name: "guest may view pages", role: domainauth.RoleGuest, signedIn: true, method: http.MethodGet,
			path: "/scraping", wantStatus: http.StatusOK},
		{name: "guest may not start jobs", role: domainauth.RoleGuest, signedIn: true, method: http.MethodPost,
			path: "/jobs/scraping/start", accept: "application/json", wantStatus: http.StatusForbidden},
		{name: "operator may start jobs", role: domainauth.RoleOperator, signedIn: true, method: http.MethodPost,
			path: "/jobs/scraping/start", wantStatus: http.StatusSeeOther},
		{name: "operator may not run the filter", role: domainauth.RoleOperator, signedIn: true,
			method: http.MethodPost, path: "/filter", accept: "application/json", wantStatus: http.StatusForbidden},
		{name: "admin reads the audit trail", role: domainauth.RoleAdmin, signedIn: true, method: http.MethodGet,
			path: "/audit", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := authRouter(t, tt.role)
			req := request(tt.method, tt.path, "")
			if tt.signedIn {
				withSession(req)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.htmx {
				req.Header.Set("Hx-Request", "true")
			}

			rec := tr.serve(req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for k, v := range tt.wantHeader {
				assert.Equal(t, v, rec.Header().Get(k), k)
			}
		})
	}
}

func TestAuthDisabled_ActsAsLocalAdmin(t *testing.T) {
	tr := newTestRouter(t)

	rec := tr.serve(request(http.MethodGet, "/auth/status", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
}

func TestDashboard_IssuesCookieOnFirstVisit(t *testing.T) {
	tr := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/scraping", nil)

	rec := tr.serve(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == dashboardCookie {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.HttpOnly)
	assert.Equal(t, 1, tr.sessions.Len())
}

func TestSafeRedirectPath(t *testing.T) {
	cases := map[string]string{
		"":                        "/",
		"/filter":                 "/filter",
		"/audit?kind=scraping":    "/audit?kind=scraping",
		"https://evil.example/":   "/",
		"//evil.example/path":     "/",
		"relative":                "/",
		"javascript:alert(1)":     "/",
		"/embedding#text-console": "/embedding#text-console",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeRedirectPath(in), in)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCompression(t *testing.T) {
	body := func(ct string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", ct)
			_, _ = io.WriteString(w, "<p>hello hello hello</p>")
		})
	}
	mw := Compression(6, nil)

	t.Run("gzips html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/scraping", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := httptest.NewRecorder()
		mw(body("text/html; charset=utf-8")).ServeHTTP(rec, req)

		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, "<p>hello hello hello</p>", string(plain))
	})

	t.Run("leaves event streams alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs/scraping/events", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("Accept", "text/event-stream")
		rec := httptest.NewRecorder()
		mw(body("text/event-stream")).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
	})

	t.Run("respects q=0", func(t *testing.T) {
		assert.False(t, acceptsGzip("gzip;q=0"))
		assert.True(t, acceptsGzip("br, gzip;q=0.8"))
		assert.False(t, acceptsGzip(""))
	})
}
