package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, vars map[string]string) AppConfig {
	t.Helper()
	var cfg AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: vars}))
	cfg.Sanitize()
	return cfg
}

func TestDefaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	cfg := parse(t, map[string]string{"OIDC_ISSUER": "https://idp.example.com"})

	assert.Equal(t, "http://127.0.0.1:8000/api/", cfg.Backend.BaseURL)
	assert.Equal(t, AuthModeOIDC, cfg.Auth.Mode)
	assert.Equal(t, []string{"grailed-admins"}, cfg.Auth.AdminGroups)
	assert.Equal(t, 2*time.Second, cfg.Stream.ReconnectInterval)
	assert.Equal(t, 30*time.Minute, cfg.Stream.IdleTTL)
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, slog.LevelInfo, cfg.Observability.SlogLevel())
	require.NoError(t, cfg.Validate())
}

func TestBackendBaseURLGetsTrailingSlash(t *testing.T) {
	cfg := parse(t, map[string]string{"BACKEND_BASE_URL": " http://backend:9000/api ", "OIDC_ISSUER": "https://x"})
	assert.Equal(t, "http://backend:9000/api/", cfg.Backend.BaseURL)
}

func TestCheckpointJSONPaths(t *testing.T) {
	cfg := parse(t, map[string]string{
		"BACKEND_CHECKPOINT_JSON_PATHS": "designer_slug=progress.slug;timestamp=meta.at",
	})
	assert.Equal(t, map[string]string{
		"designer_slug": "progress.slug",
		"timestamp":     "meta.at",
	}, cfg.Backend.CheckpointJSONPaths)
}

func TestAuthModeRejectsUnknown(t *testing.T) {
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{"AUTH_MODE": "ldap"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid options: oidc, dev, none")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{name: "oidc needs issuer", vars: map[string]string{}, wantErr: "OIDC_ISSUER"},
		{name: "none needs dev", vars: map[string]string{"AUTH_MODE": "none"}, wantErr: "only allowed with DEV=true"},
		{name: "none in dev", vars: map[string]string{"AUTH_MODE": "none", "DEV": "true"}},
		{name: "dev mode", vars: map[string]string{"AUTH_MODE": "dev"}},
		{
			name:    "bad backend url",
			vars:    map[string]string{"AUTH_MODE": "dev", "BACKEND_BASE_URL": "not a url"},
			wantErr: "BaseURL",
		},
		{name: "bad log level", vars: map[string]string{"AUTH_MODE": "dev", "LOG_LEVEL": "loud"}, wantErr: "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NODE_ENV", "")
			cfg := parse(t, tt.vars)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := parse(t, map[string]string{
		"HTTP_COMPRESSION_LEVEL":                    "42",
		"STREAM_RECONNECT_BURST":                    "0",
		"ADMIN_GROUPS":                              " a ; ;b",
		"LOG_LEVEL":                                 "WARNING",
		"OBSERVABILITY_METRICS_ENABLED":             "true",
		"OBSERVABILITY_METRICS_STATSD_ADDRESS":      " ",
		"OBSERVABILITY_NOTIFICATIONS_ENABLED":       "true",
		"OBSERVABILITY_NOTIFICATIONS_SLACK_ENABLED": "true",
	})
	assert.Equal(t, 9, cfg.HTTP.CompressionLevel)
	assert.Equal(t, 1, cfg.Stream.ReconnectBurst)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.AdminGroups)
	assert.Equal(t, slog.LevelWarn, cfg.Observability.SlogLevel())
	assert.False(t, cfg.Observability.Metrics.Enabled)
	assert.False(t, cfg.Observability.Notifications.Slack.Enabled, "slack without webhook is disabled")
}
