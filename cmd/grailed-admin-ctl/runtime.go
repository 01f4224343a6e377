package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/target/grailed-admin/config"
	"github.com/target/grailed-admin/internal/bootstrap"
	"github.com/target/grailed-admin/internal/domain/audit"
	"github.com/target/grailed-admin/internal/domain/job"
)

var errNoDatabase = errors.New("no database configured (set DB_HOST)")

// runtime is the per-invocation wiring: config, optional audit database and services.
type runtime struct {
	cfg      config.AppConfig
	logger   *slog.Logger
	db       *sql.DB
	services *bootstrap.ServiceContainer
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := bootstrap.InitLogger(cfg.Observability.SlogLevel())
	// The CLI never serves browser sessions.
	cfg.Auth.Mode = config.AuthModeNone

	rt := &runtime{cfg: cfg, logger: logger}
	if cfg.Postgres.Enabled() {
		rt.db, err = bootstrap.ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
	}
	rt.services, err = bootstrap.BuildServices(ctx, bootstrap.ServicesConfig{
		Config: &rt.cfg,
		DB:     rt.db,
		Logger: logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (r *runtime) Close() {
	r.services.Close()
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Error("close database failed", "error", err)
		}
	}
}

// actorContext tags ctx with the --actor flag so audit entries name the operator.
func actorContext(ctx context.Context, cmd *cli.Command) context.Context {
	return audit.WithActor(ctx, cmd.String("actor"))
}

func kindFrom(cmd *cli.Command) (job.Kind, error) {
	k, err := job.ParseKind(cmd.String("kind"))
	if err != nil {
		return "", fmt.Errorf("--kind: %w", err)
	}
	return k, nil
}
