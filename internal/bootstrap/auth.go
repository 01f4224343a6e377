package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/grailed-admin/config"
	"github.com/target/grailed-admin/internal/adapters/authroles"
	"github.com/target/grailed-admin/internal/adapters/devauth"
	"github.com/target/grailed-admin/internal/adapters/memory"
	"github.com/target/grailed-admin/internal/adapters/oidc"
	redisadapter "github.com/target/grailed-admin/internal/adapters/redis"
	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
	"github.com/target/grailed-admin/internal/service"
)

// AuthConfig contains what the auth service is built from.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient // nil keeps sessions in memory
	Logger      *slog.Logger
}

// BuildAuthService creates the auth service for the configured mode. AUTH_MODE=none returns
// nil, which the router treats as authentication disabled.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var provider ports.AuthProvider
	switch cfg.Auth.Mode {
	case config.AuthModeNone:
		logger.Warn("authentication disabled; every request acts as a local admin")
		return nil, nil
	case config.AuthModeDev:
		p, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			Email:           cfg.Auth.DevAuth.Email,
			FirstName:       cfg.Auth.DevAuth.FirstName,
			LastName:        cfg.Auth.DevAuth.LastName,
			Groups:          cfg.Auth.DevAuth.Groups,
			SessionDuration: cfg.Auth.SessionMaxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		provider = p
	case config.AuthModeOIDC:
		o := cfg.Auth.OIDC
		p, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scope:        o.Scope,
			Issuer:       o.Issuer,
			LogoutURL:    o.LogoutURL,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}

	var sessions ports.SessionStore
	if cfg.RedisClient != nil {
		sessions = redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.SessionStoreOptions{
			MaxTTL: cfg.Auth.SessionMaxAge,
		})
	} else {
		logger.Info("redis not configured; auth sessions are kept in memory")
		sessions = memory.NewSessionStore()
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Roles: authroles.GroupMapper{
			AdminGroups:    cfg.Auth.AdminGroups,
			OperatorGroups: cfg.Auth.OperatorGroups,
			Default:        domainauth.RoleGuest,
		},
		MaxSessionAge: cfg.Auth.SessionMaxAge,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	logger.Info("authentication enabled", "mode", cfg.Auth.Mode)
	return svc, nil
}
