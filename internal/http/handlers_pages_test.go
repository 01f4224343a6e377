package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/grailed-admin/internal/domain/audit"
	domainauth "github.com/target/grailed-admin/internal/domain/auth"
)

func TestHome_RedirectsToScraping(t *testing.T) {
	tr := newTestRouter(t)

	rec := tr.serve(request(http.MethodGet, "/", ""))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/scraping", rec.Header().Get("Location"))
}

func TestPages_RenderFullAndPartial(t *testing.T) {
	tr := newTestRouter(t)

	full := tr.serve(request(http.MethodGet, "/embedding", ""))
	require.Equal(t, http.StatusOK, full.Code)
	assert.Contains(t, full.Body.String(), "<!doctype html>")
	assert.Contains(t, full.Body.String(), `sse-connect="/jobs/image-embedding/events"`)
	assert.Contains(t, full.Body.String(), `sse-connect="/jobs/text-embedding/events"`)

	req := request(http.MethodGet, "/scraping", "")
	req.Header.Set("Hx-Request", "true")
	partial := tr.serve(req)
	require.Equal(t, http.StatusOK, partial.Code)
	assert.NotContains(t, partial.Body.String(), "<!doctype html>")
	assert.Contains(t, partial.Body.String(), "Last brand scraped")
}

func TestPages_OperatorPanelsFetchStatusOnLoad(t *testing.T) {
	tests := []struct {
		name  string
		role  domainauth.Role
		path  string
		kinds []string
		want  bool
	}{
		{name: "operator scraping", role: domainauth.RoleOperator, path: "/scraping", kinds: []string{"scraping"}, want: true},
		{name: "admin embedding", role: domainauth.RoleAdmin, path: "/embedding",
			kinds: []string{"image-embedding", "text-embedding"}, want: true},
		{name: "guest scraping", role: domainauth.RoleGuest, path: "/scraping", kinds: []string{"scraping"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := authRouter(t, tt.role)
			rec := tr.serve(withSession(request(http.MethodGet, tt.path, "")))
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, k := range tt.kinds {
				trigger := `hx-post="/jobs/` + k + `/status" hx-trigger="load"`
				if tt.want {
					assert.Equal(t, 1, strings.Count(body, trigger), k)
				} else {
					assert.NotContains(t, body, trigger)
				}
			}
		})
	}
}

func TestPages_StatusFragmentHasNoLoadTrigger(t *testing.T) {
	tr := newTestRouter(t)
	req := request(http.MethodPost, "/jobs/scraping/status", "")
	req.Header.Set("Hx-Request", "true")

	rec := tr.serve(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="status-scraping"`)
	assert.NotContains(t, rec.Body.String(), `hx-trigger="load"`, "swapped status must not refetch itself")
	assert.Equal(t, []string{"status:scraping"}, tr.control.Calls())
}

func TestPages_UnknownPathRendersNotFound(t *testing.T) {
	tr := newTestRouter(t)

	rec := tr.serve(request(http.MethodGet, "/nope", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}

func TestSubmitFilter(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   string
		wantRun    bool
	}{
		{
			name:       "runs selected deletes",
			form:       url.Values{"substrings": {"fake\n  \nreplica"}, "threshold": {"5"}},
			wantStatus: http.StatusOK,
			wantBody:   "Filter submitted",
			wantRun:    true,
		},
		{
			name:       "non numeric threshold",
			form:       url.Values{"threshold": {"five"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Threshold must be a whole number.",
		},
		{
			name:       "negative threshold",
			form:       url.Values{"threshold": {"-1"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Threshold must be at least 0.",
		},
		{
			name:       "nothing selected",
			form:       url.Values{"ignore_sellers": {"someone"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Choose at least one filter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			req := request(http.MethodPost, "/filter", tt.form.Encode())
			req.Header.Set("Hx-Request", "true")

			rec := tr.serve(req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if !tt.wantRun {
				assert.Empty(t, tr.control.Calls())
				return
			}
			assert.Equal(t, []string{"filter:scraping"}, tr.control.Calls())
			require.Len(t, tr.control.filters, 1)
			got := tr.control.filters[0]
			assert.Equal(t, []string{"fake", "replica"}, got.Substrings)
			require.NotNil(t, got.Threshold)
			assert.Equal(t, 5, *got.Threshold)
		})
	}
}

type stubAudit struct {
	entries []audit.Entry
	err     error
	opts    audit.ListOptions
}

func (s *stubAudit) Record(context.Context, audit.Entry) error { return nil }

func (s *stubAudit) List(_ context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	s.opts = opts
	return s.entries, s.err
}

func TestAuditPage(t *testing.T) {
	t.Run("disabled without a database", func(t *testing.T) {
		tr := newTestRouter(t)
		rec := tr.serve(request(http.MethodGet, "/audit", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "audit trail is disabled")
	})

	t.Run("lists entries with filters", func(t *testing.T) {
		log := &stubAudit{entries: []audit.Entry{{
			ID: "1", Actor: "ops@example.com", Kind: "scraping", Action: audit.ActionStart,
			Outcome: audit.OutcomeSuccess, Message: "Scraping started", OccurredAt: time.Now(),
		}}}
		tr := newTestRouter(t, withAudit(log))
		rec := tr.serve(request(http.MethodGet, "/audit?kind=scraping&action=start", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ops@example.com")
		assert.Equal(t, "scraping", log.opts.Kind)
		assert.Equal(t, audit.ActionStart, log.opts.Action)
	})

	t.Run("list failure is shown inline", func(t *testing.T) {
		tr := newTestRouter(t, withAudit(&stubAudit{err: errors.New("db down")}))
		rec := tr.serve(request(http.MethodGet, "/audit", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "could not be loaded")
	})
}
