package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	grailedadmin "github.com/target/grailed-admin"
	"github.com/target/grailed-admin/config"
	httpx "github.com/target/grailed-admin/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router and the outer middleware.
// Order: Recover -> Logging -> Compression -> Router.
func BuildHTTPHandler(cfg HTTPServerConfig) (http.Handler, error) {
	templates, static, err := frontendFS(cfg.Config.IsDev)
	if err != nil {
		return nil, err
	}
	renderer, err := httpx.NewRenderer(templates, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	svc := httpx.RouterServices{
		Control:      cfg.Services.Control,
		Sessions:     cfg.Services.Sessions,
		Renderer:     renderer,
		StaticFS:     static,
		CookieDomain: cfg.Config.HTTP.CookieDomain,
		Heartbeat:    cfg.Config.Stream.Heartbeat,
		Logger:       cfg.Logger,
	}
	// Assign only non-nil values so the interfaces stay nil when a feature is off.
	if cfg.Services.Auth != nil {
		svc.Auth = cfg.Services.Auth
	}
	if cfg.Services.Audit != nil {
		svc.Audit = cfg.Services.Audit
	}

	h, err := httpx.NewRouter(svc)
	if err != nil {
		return nil, err
	}
	if cfg.Config.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.Config.HTTP.CompressionLevel)
		h = httpx.Compression(cfg.Config.HTTP.CompressionLevel, cfg.Logger)(h)
	}
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)
	return h, nil
}

// frontendFS reads templates and static files from disk in dev mode, otherwise from the
// embedded copies.
func frontendFS(dev bool) (fs.FS, fs.FS, error) {
	if dev {
		return os.DirFS("frontend/templates"), os.DirFS("frontend/static"), nil
	}
	templates, err := fs.Sub(grailedadmin.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, nil, err
	}
	static, err := fs.Sub(grailedadmin.StaticFS, "frontend/static")
	if err != nil {
		return nil, nil, err
	}
	return templates, static, nil
}

// StartHTTPServer builds the handler and serves it in the background.
func StartHTTPServer(cfg HTTPServerConfig) (*http.Server, error) {
	h, err := BuildHTTPHandler(cfg)
	if err != nil {
		return nil, err
	}
	addr := cfg.Config.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Event streams and WebSockets stay open, so there is no write timeout.
		IdleTimeout: 120 * time.Second,
	}
	go func() {
		cfg.Logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Logger.Error("HTTP server failed", "error", err)
		}
	}()
	return server, nil
}

// ShutdownHTTPServer stops accepting requests and waits up to timeout for in-flight ones.
// Open event streams end when their dashboard sessions close.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
