package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`

	// BaseURL is the externally visible URL, linked from failure notifications.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	// CookieDomain is the domain for session cookies. Empty uses the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CompressionEnabled gzips text responses. Event streams are never compressed.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`
	CompressionLevel   int  `env:"HTTP_COMPRESSION_LEVEL"   envDefault:"6"`

	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize clamps compression to the gzip range.
func (h *HTTPConfig) Sanitize() {
	h.CompressionLevel = min(max(h.CompressionLevel, 1), 9)
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}
