package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/target/grailed-admin/internal/domain/audit"
	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/ports"
	"github.com/target/grailed-admin/internal/service"
)

// PageHandlers serves the server-rendered pages.
type PageHandlers struct {
	Renderer    *Renderer
	Control     JobController
	Audit       ports.AuditLog // nil when the audit trail is disabled
	AuthEnabled bool
	Logger      *slog.Logger
}

func (h *PageHandlers) page(r *http.Request, page, title string, data any) PageData {
	return PageData{
		Title:       title,
		Page:        page,
		User:        GetSessionFromContext(r.Context()),
		AuthEnabled: h.AuthEnabled,
		CSRFToken:   CSRFToken(r.Context()),
		Data:        data,
	}
}

// Home redirects to the scraping page.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+PageScraping, http.StatusFound)
}

// Scraping renders the scraping job page.
func (h *PageHandlers) Scraping(w http.ResponseWriter, r *http.Request) {
	h.jobs(w, r, PageScraping, "Scraping", job.KindScraping)
}

// Embedding renders both embedding jobs on one page.
func (h *PageHandlers) Embedding(w http.ResponseWriter, r *http.Request) {
	h.jobs(w, r, PageEmbedding, "Embedding", job.KindImageEmbedding, job.KindTextEmbedding)
}

func (h *PageHandlers) jobs(w http.ResponseWriter, r *http.Request, page, title string, kinds ...job.Kind) {
	d := DashboardFromRequest(r)
	operator := isOperator(r)
	views := make([]JobView, 0, len(kinds))
	for _, k := range kinds {
		st, err := d.Store(k)
		if err != nil {
			h.Error(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		views = append(views, newJobView(st.Snapshot(), operator))
	}
	d.Touch()
	h.Renderer.RenderPage(w, r, http.StatusOK, h.page(r, page, title, jobsPage{Jobs: views}))
}

// Filter renders the filter form next to the scraping console the filter reports to.
func (h *PageHandlers) Filter(w http.ResponseWriter, r *http.Request) {
	h.renderFilter(w, r, http.StatusOK, filterPage{})
}

// SubmitFilter validates the filter form and runs the selected deletes.
func (h *PageHandlers) SubmitFilter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Error(w, r, http.StatusBadRequest, "Malformed form submission.")
		return
	}
	form := filterForm{
		Substrings:    r.PostFormValue("substrings"),
		Designers:     r.PostFormValue("designers"),
		IgnoreSellers: r.PostFormValue("ignore_sellers"),
		Threshold:     strings.TrimSpace(r.PostFormValue("threshold")),
		RepeatedTitle: r.PostFormValue("repeated_title") != "",
	}
	req, fieldErrs := form.request()
	if len(fieldErrs) == 0 {
		req.Normalize()
		if err := req.Validate(); err != nil {
			fieldErrs = validationMessages(err)
		} else if req.Empty() {
			fieldErrs = map[string]string{"form": "Choose at least one filter to run."}
		}
	}
	if len(fieldErrs) > 0 {
		h.renderFilter(w, r, http.StatusUnprocessableEntity, filterPage{Form: form, Errors: fieldErrs})
		return
	}

	d := DashboardFromRequest(r)
	st, err := d.Store(job.KindScraping)
	if err != nil {
		h.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.Control.RunFilter(r.Context(), st, req); err != nil {
		// Per-delete failures are on the console already.
		h.Logger.WarnContext(r.Context(), "filter finished with errors", "error", err)
	}
	h.renderFilter(w, r, http.StatusOK, filterPage{Submitted: true})
}

func (h *PageHandlers) renderFilter(w http.ResponseWriter, r *http.Request, status int, data filterPage) {
	d := DashboardFromRequest(r)
	st, err := d.Store(job.KindScraping)
	if err != nil {
		h.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	data.Console = newJobView(st.Snapshot(), isOperator(r))
	s := GetSessionFromContext(r.Context())
	data.Admin = s != nil && s.Role.Allows(domainauth.RoleAdmin)
	if r.Method == http.MethodPost && IsHTMX(r) {
		h.Renderer.RenderFragment(w, status, "filter-form", h.page(r, PageFilter, "Filter", data))
		return
	}
	h.Renderer.RenderPage(w, r, status, h.page(r, PageFilter, "Filter", data))
}

// request converts the form into a FilterRequest, reporting unparsable fields.
func (f filterForm) request() (service.FilterRequest, map[string]string) {
	req := service.FilterRequest{
		Substrings:    splitLines(f.Substrings),
		Designers:     splitLines(f.Designers),
		IgnoreSellers: splitLines(f.IgnoreSellers),
		RepeatedTitle: f.RepeatedTitle,
	}
	if f.Threshold != "" {
		n, err := strconv.Atoi(f.Threshold)
		if err != nil {
			return req, map[string]string{"threshold": "Threshold must be a whole number."}
		}
		req.Threshold = &n
	}
	return req, nil
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
}

var filterFieldNames = map[string]string{
	"Substrings":    "substrings",
	"Designers":     "designers",
	"IgnoreSellers": "ignore_sellers",
	"Threshold":     "threshold",
}

// validationMessages maps validator failures onto form field names.
func validationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.StructField()
		name, ok := filterFieldNames[field]
		if !ok {
			// dive errors name the element, e.g. Substrings[3]
			if i := strings.IndexByte(field, '['); i > 0 {
				name = filterFieldNames[field[:i]]
			}
		}
		if name == "" {
			name = "form"
		}
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		if fe.Kind().String() == "slice" {
			return "Too many entries (at most " + fe.Param() + ")."
		}
		if fe.Field() == "Threshold" {
			return "Threshold must be at most " + fe.Param() + "."
		}
		return "Entries must be at most " + fe.Param() + " characters."
	case "min":
		return "Threshold must be at least " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}

// AuditLog renders the latest audit entries, optionally filtered by kind and action.
func (h *PageHandlers) AuditLog(w http.ResponseWriter, r *http.Request) {
	data := auditPage{
		Enabled: h.Audit != nil,
		Kind:    r.URL.Query().Get("kind"),
		Action:  r.URL.Query().Get("action"),
	}
	if h.Audit != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := h.Audit.List(r.Context(), audit.ListOptions{
			Kind:   data.Kind,
			Action: audit.Action(data.Action),
			Limit:  limit,
		})
		if err != nil {
			h.Logger.ErrorContext(r.Context(), "audit list failed", "error", err)
			data.Error = "The audit trail could not be loaded."
		}
		data.Entries = entries
	}
	h.Renderer.RenderPage(w, r, http.StatusOK, h.page(r, PageAudit, "Audit trail", data))
}

// NotFound renders the 404 page.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Error(w, r, http.StatusNotFound, "The page you requested does not exist.")
}

// Error renders the error page with status.
func (h *PageHandlers) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: status, ErrCode: strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
			Err: errors.New(message)})
		return
	}
	h.Renderer.RenderPage(w, r, status, h.page(r, PageError, http.StatusText(status), errorPage{Status: status, Message: message}))
}
