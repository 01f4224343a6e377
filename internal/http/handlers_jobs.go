package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/service"
	"github.com/target/grailed-admin/internal/store"
)

// JobController is the control surface the job and filter handlers drive.
// service.ControlService implements it.
type JobController interface {
	Start(ctx context.Context, st service.StatusStore) error
	Stop(ctx context.Context, st service.StatusStore) error
	FetchStatus(ctx context.Context, st service.StatusStore) error
	ClearLogs(st service.StatusStore)
	RunFilter(ctx context.Context, st service.StatusStore, req service.FilterRequest) error
}

// JobHandlers serves the per-job control actions and the JSON snapshot.
type JobHandlers struct {
	Control  JobController
	Renderer *Renderer
	Logger   *slog.Logger
}

// Start handles POST /jobs/{kind}/start.
func (h *JobHandlers) Start(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, st *store.Store) { _ = h.Control.Start(ctx, st) })
}

// Stop handles POST /jobs/{kind}/stop.
func (h *JobHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, st *store.Store) { _ = h.Control.Stop(ctx, st) })
}

// Status handles POST /jobs/{kind}/status.
func (h *JobHandlers) Status(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, st *store.Store) { _ = h.Control.FetchStatus(ctx, st) })
}

// ClearLogs handles POST /jobs/{kind}/logs/clear and answers with the emptied console.
func (h *JobHandlers) ClearLogs(w http.ResponseWriter, r *http.Request) {
	st, ok := storeForRequest(w, r)
	if !ok {
		return
	}
	h.Control.ClearLogs(st)
	if !IsHTMX(r) {
		http.Redirect(w, r, pageForKind(st.Kind()), http.StatusSeeOther)
		return
	}
	h.Renderer.RenderFragment(w, http.StatusOK, "job-console", newJobView(st.Snapshot(), isOperator(r)))
}

// Snapshot handles GET /api/jobs/{kind}.
func (h *JobHandlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	st, ok := storeForRequest(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, snapshotMessage(st.Snapshot()))
}

// act runs a control call and answers with the refreshed status panel. Control failures are
// already on the job console, so the response is the same either way.
func (h *JobHandlers) act(w http.ResponseWriter, r *http.Request, call func(context.Context, *store.Store)) {
	st, ok := storeForRequest(w, r)
	if !ok {
		return
	}
	call(r.Context(), st)
	if !IsHTMX(r) {
		http.Redirect(w, r, pageForKind(st.Kind()), http.StatusSeeOther)
		return
	}
	h.Renderer.RenderFragment(w, http.StatusOK, "job-status", newJobView(st.Snapshot(), isOperator(r)))
}

// storeForRequest returns the caller's store for the {kind} path value, writing the error
// response when there is none.
func storeForRequest(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	kind, err := job.ParseKind(r.PathValue("kind"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "unknown_job", Err: err})
		return nil, false
	}
	d := DashboardFromRequest(r)
	if d == nil {
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "no_dashboard", Err: service.ErrSessionClosed})
		return nil, false
	}
	st, err := d.Store(kind)
	if err != nil {
		writeAppError(w, err)
		return nil, false
	}
	d.Touch()
	return st, true
}

func isOperator(r *http.Request) bool {
	s := GetSessionFromContext(r.Context())
	return s != nil && s.Role.Allows(domainauth.RoleOperator)
}
