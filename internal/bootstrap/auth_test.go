package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/grailed-admin/config"
	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/service"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBuildAuthService_NoneDisablesAuth(t *testing.T) {
	svc, err := BuildAuthService(context.Background(), AuthConfig{
		Auth:   config.AuthConfig{Mode: config.AuthModeNone},
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestBuildAuthService_DevModeUsesMemorySessions(t *testing.T) {
	ctx := context.Background()
	svc, err := BuildAuthService(ctx, AuthConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeDev,
			DevAuth: config.DevAuthConfig{
				UserID: "dev", Email: "dev@example.com", Groups: []string{"scraper-ops"},
			},
			AdminGroups:    []string{"grailed-admins"},
			OperatorGroups: []string{"scraper-ops"},
		},
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, svc)

	begin, err := svc.BeginLogin(ctx, "/scraping")
	require.NoError(t, err)
	u, err := url.Parse(begin.AuthURL)
	require.NoError(t, err)

	sess, err := svc.CompleteLogin(ctx, service.CompleteLoginInput{
		Code:  u.Query().Get("code"),
		State: begin.State,
		Nonce: begin.Nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleOperator, sess.Role)

	got, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", got.Email)
}

func TestBuildAuthService_OIDCRequiresReachableIssuer(t *testing.T) {
	_, err := BuildAuthService(context.Background(), AuthConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeOIDC,
			OIDC: config.OIDCConfig{Issuer: "http://127.0.0.1:1", ClientID: "id", ClientSecret: "s",
				RedirectURL: "http://localhost/auth/callback", Scope: "openid"},
		},
		Logger: quietLogger(),
	})
	require.Error(t, err)
}
