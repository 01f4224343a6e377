package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/domain/job"
)

// Renderer executes the dashboard's html/template set.
type Renderer struct {
	t      *template.Template
	logger *slog.Logger
}

// NewRenderer parses the layout, pages and partials found in fsys.
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if fsys == nil {
		return nil, errors.New("template filesystem is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{logger: logger}
	t, err := template.New("root").Funcs(r.funcs()).ParseFS(fsys, "*.tmpl", "pages/*.tmpl", "partials/*.tmpl")
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err))
		return nil, err
	}
	r.t = t
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"renderSection": func(page string, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if err := r.t.ExecuteTemplate(&buf, ContentTemplateFor(page), data); err != nil {
				return "", err
			}
			//nolint:gosec // output of html/template is already escaped
			return template.HTML(buf.String()), nil
		},
		"allows": func(s *domainauth.Session, role string) bool {
			return s != nil && s.Role.Allows(domainauth.Role(role))
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.UTC().Format("2006-01-02 15:04:05 MST")
		},
		"jobKinds": job.Kinds,
	}
}

// PageData is the model every full page receives.
type PageData struct {
	Title       string
	Page        string
	User        *domainauth.Session
	AuthEnabled bool
	CSRFToken   string
	Data        any
}

// RenderPage writes a full page, or only its content section for htmx navigation.
func (r *Renderer) RenderPage(w http.ResponseWriter, req *http.Request, status int, data PageData) {
	name := "layout"
	if WantsPartial(req) {
		name = ContentTemplateFor(data.Page)
	}
	r.write(w, status, name, data)
}

// RenderFragment writes the named template on its own.
func (r *Renderer) RenderFragment(w http.ResponseWriter, status int, name string, data any) {
	r.write(w, status, name, data)
}

// Fragment executes the named template into a string.
func (r *Renderer) Fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", slog.String("template", name), slog.Any("error", err))
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) write(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write rendered template", slog.String("template", name), slog.Any("error", err))
	}
}
