package config

import (
	"strings"
	"time"
)

// BackendConfig points the dashboard at the job backend.
type BackendConfig struct {
	BaseURL   string        `env:"BASE_URL"   envDefault:"http://127.0.0.1:8000/api/" validate:"required,url"`
	Timeout   time.Duration `env:"TIMEOUT"    envDefault:"15s"`
	UserAgent string        `env:"USER_AGENT" envDefault:"grailed-admin"`

	// CheckpointJSONPaths overrides the JMESPath expression used to read a checkpoint field from
	// JSON payloads, as field=expression pairs separated by ';'.
	CheckpointJSONPaths map[string]string `env:"CHECKPOINT_JSON_PATHS" envSeparator:";" envKeyValSeparator:"="`
}

// Sanitize normalises the base URL and timeout.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimSpace(b.BaseURL)
	if b.BaseURL != "" && !strings.HasSuffix(b.BaseURL, "/") {
		b.BaseURL += "/"
	}
	if b.Timeout <= 0 {
		b.Timeout = 15 * time.Second
	}
}
