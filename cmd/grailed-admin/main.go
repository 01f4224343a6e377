// Command grailed-admin serves the job-control dashboard for the Grailed scraping and
// embedding backend.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/target/grailed-admin/config"
	"github.com/target/grailed-admin/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger := bootstrap.InitLogger(cfg.Observability.SlogLevel())
	logger.InfoContext(ctx, "starting grailed-admin",
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Backend.BaseURL,
		"auth_mode", cfg.Auth.Mode,
		"audit", cfg.Postgres.Enabled(),
		"redis", cfg.Redis.Enabled())

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer closeInfrastructure(ctx, db, redisClient, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.BuildServices(ctx, bootstrap.ServicesConfig{
		Config: &cfg,
		DB:     db,
		Redis:  redisClient,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer services.Close()

	go func() {
		if rerr := services.Sessions.Run(ctx); rerr != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "session reaper stopped", "error", rerr)
		}
	}()

	server, err := bootstrap.StartHTTPServer(bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Closing the sessions ends open event streams so Shutdown does not wait on them.
	services.Sessions.Close()
	return bootstrap.ShutdownHTTPServer(context.Background(), server, cfg.HTTP.ShutdownTimeout, logger)
}

// initInfrastructure connects the optional audit database and session Redis.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	var db *sql.DB
	if cfg.Postgres.Enabled() {
		var err error
		db, err = bootstrap.ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	} else {
		logger.InfoContext(ctx, "no database configured; audit trail disabled")
	}

	if !cfg.Redis.Enabled() {
		return db, nil, nil
	}
	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return db, redisClient, nil
}

func closeInfrastructure(ctx context.Context, db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) {
	if db != nil {
		if err := db.Close(); err != nil {
			logger.ErrorContext(ctx, "close database failed", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", err)
		}
	}
}
