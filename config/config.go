// Package config holds the env-tagged configuration structs loaded at startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AppConfig composes the configuration groups. Each group documents its own variables:
//   - http.go: listener, cookies, compression
//   - backend.go: job backend URL and timeouts
//   - database.go: Postgres audit store and Redis session store
//   - auth.go: login mode and role groups
//   - stream.go: log stream supervision and dashboard session lifetime
//   - observability.go: logging, metrics and failure notifications
type AppConfig struct {
	// IsDev relaxes cookie security and enables template reloading.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP          HTTPConfig
	Backend       BackendConfig `envPrefix:"BACKEND_"`
	Postgres      DBConfig      `envPrefix:"DB_"`
	Redis         RedisConfig   `envPrefix:"REDIS_"`
	Auth          AuthConfig
	Stream        StreamConfig `envPrefix:"STREAM_"`
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to values loaded from env.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Auth.Sanitize()
	c.Stream.Sanitize()
	c.Observability.Sanitize()

	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules that Sanitize cannot repair.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Auth.Mode == AuthModeOIDC && c.Auth.OIDC.Issuer == "" {
		return fmt.Errorf("invalid configuration: OIDC_ISSUER is required when AUTH_MODE=%s", c.Auth.Mode)
	}
	if c.Auth.Mode == AuthModeNone && !c.IsDev {
		return fmt.Errorf("invalid configuration: AUTH_MODE=%s is only allowed with DEV=true", c.Auth.Mode)
	}
	return nil
}
