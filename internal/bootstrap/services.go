package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/grailed-admin/config"
	"github.com/target/grailed-admin/internal/adapters/backend"
	"github.com/target/grailed-admin/internal/checkpoint"
	"github.com/target/grailed-admin/internal/data"
	"github.com/target/grailed-admin/internal/observability/notify/pagerduty"
	"github.com/target/grailed-admin/internal/observability/notify/slack"
	"github.com/target/grailed-admin/internal/observability/statsd"
	"github.com/target/grailed-admin/internal/ports"
	"github.com/target/grailed-admin/internal/service"
	"github.com/target/grailed-admin/internal/service/failurenotifier"
)

// ServiceContainer holds every long-lived service the server and CLI use.
type ServiceContainer struct {
	Backend  *backend.Client
	Metrics  *statsd.Client
	Faults   *failurenotifier.Service
	Control  *service.ControlService
	Consumer *service.StreamConsumer
	Sessions *service.SessionManager
	Auth     *service.AuthService // nil when authentication is disabled
	Audit    *data.AuditRepo      // nil when no database is configured
}

// ServicesConfig contains the inputs for BuildServices.
type ServicesConfig struct {
	Config *config.AppConfig
	DB     *sql.DB               // Optional
	Redis  redis.UniversalClient // Optional
	Logger *slog.Logger
}

// BuildServices wires the backend client, observability sinks and dashboard services.
func BuildServices(ctx context.Context, cfg ServicesConfig) (*ServiceContainer, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := cfg.Config
	c := &ServiceContainer{}

	var err error
	c.Metrics, err = statsd.NewClient(statsd.Config{
		Enabled: app.Observability.Metrics.Enabled,
		Address: app.Observability.Metrics.StatsdAddress,
		Prefix:  app.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		// Metrics are best effort; run without them.
		logger.Warn("statsd unavailable, metrics disabled", "error", err)
		c.Metrics, _ = statsd.NewClient(statsd.Config{Logger: logger})
	}

	c.Backend, err = backend.NewClient(backend.Config{
		BaseURL:   app.Backend.BaseURL,
		Timeout:   app.Backend.Timeout,
		UserAgent: app.Backend.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	c.Faults = failurenotifier.NewService(failurenotifier.Options{
		Logger:   logger,
		Sinks:    buildFaultSinks(app, logger),
		Timeout:  app.Observability.Notifications.Timeout,
		Cooldown: app.Observability.Notifications.Cooldown,
	})

	var auditLog ports.AuditLog
	if cfg.DB != nil {
		c.Audit = data.NewAuditRepo(cfg.DB)
		auditLog = c.Audit
	}

	c.Control, err = service.NewControlService(service.ControlServiceOptions{
		Backend: c.Backend,
		Audit:   auditLog,
		Faults:  c.Faults,
		Metrics: c.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	jp, err := checkpoint.NewJSONParser(app.Backend.CheckpointJSONPaths)
	if err != nil {
		return nil, fmt.Errorf("checkpoint json paths: %w", err)
	}
	c.Consumer, err = service.NewStreamConsumer(service.StreamConsumerOptions{
		Streamer: c.Backend,
		Parser:   checkpoint.NewParser(jp),
		Stopper:  c.Control,
		Metrics:  c.Metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	c.Sessions, err = service.NewSessionManager(service.SessionManagerOptions{
		Session: service.SessionOptions{
			Consumer:          c.Consumer,
			Metrics:           c.Metrics,
			ReconnectInterval: app.Stream.ReconnectInterval,
			ReconnectBurst:    app.Stream.ReconnectBurst,
		},
		IdleTTL: app.Stream.IdleTTL,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	c.Auth, err = BuildAuthService(ctx, AuthConfig{Auth: app.Auth, RedisClient: cfg.Redis, Logger: logger})
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func buildFaultSinks(app *config.AppConfig, logger *slog.Logger) []failurenotifier.SinkRegistration {
	n := app.Observability.Notifications
	var sinks []failurenotifier.SinkRegistration
	if n.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:   n.Slack.WebhookURL,
			Channel:      n.Slack.Channel,
			Username:     n.Slack.Username,
			Timeout:      n.Timeout,
			RetryLimit:   n.RetryLimit,
			DashboardURL: app.HTTP.BaseURL,
		})
		if err != nil {
			logger.Warn("slack notifications disabled", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}
	if n.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: n.PagerDuty.RoutingKey,
			Source:     n.PagerDuty.Source,
			Component:  n.PagerDuty.Component,
			Timeout:    n.Timeout,
			RetryLimit: n.RetryLimit,
		})
		if err != nil {
			logger.Warn("pagerduty notifications disabled", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}
	return sinks
}

// Close stops the dashboard sessions, waits for pending notifications and closes the
// metrics socket.
func (c *ServiceContainer) Close() {
	if c == nil {
		return
	}
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	if c.Faults != nil {
		c.Faults.Wait()
	}
	if c.Metrics != nil {
		_ = c.Metrics.Close()
	}
}
