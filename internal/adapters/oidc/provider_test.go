package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/grailed-admin/internal/ports"
)

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"userinfo_endpoint":      srv.URL + "/userinfo",
			"jwks_uri":               srv.URL + "/jwks",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProvider_Discovery(t *testing.T) {
	srv := newDiscoveryServer(t)

	p, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "dashboard",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "profile email",
		Issuer:       srv.URL + "/.well-known/openid-configuration",
		LogoutURL:    srv.URL + "/logout",
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/authorize", p.oauth.Endpoint.AuthURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, p.oauth.Scopes)
	assert.Equal(t, srv.URL+"/logout", p.LogoutURL())
}

func TestNewProvider_Validation(t *testing.T) {
	base := ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb", Issuer: "http://x"}
	tests := map[string]func(*ProviderConfig){
		"client id":    func(c *ProviderConfig) { c.ClientID = "" },
		"secret":       func(c *ProviderConfig) { c.ClientSecret = "" },
		"redirect url": func(c *ProviderConfig) { c.RedirectURL = "" },
		"issuer":       func(c *ProviderConfig) { c.Issuer = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			_, err := NewProvider(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	srv := newDiscoveryServer(t)
	p, err := NewProvider(context.Background(), ProviderConfig{
		ClientID: "dashboard", ClientSecret: "secret", RedirectURL: "http://localhost/cb", Issuer: srv.URL,
	})
	require.NoError(t, err)

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/scraping"})
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "dashboard", q.Get("client_id"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	assert.Error(t, err)
}

func TestProvider_ExchangeValidation(t *testing.T) {
	p := &Provider{}
	for _, in := range []ports.ExchangeInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	} {
		_, err := p.Exchange(context.Background(), in)
		assert.Error(t, err)
	}
}

func TestClaimNames_Identity(t *testing.T) {
	c := DefaultClaimNames()

	standard := c.identity(map[string]any{
		"sub":                "abc",
		"preferred_username": "ada",
		"email":              "ada@example.com",
		"given_name":         "Ada",
		"groups":             []any{"grailed-admins", 7, ""},
	})
	assert.Equal(t, "ada", standard.UserID)
	assert.Equal(t, "ada@example.com", standard.Email)
	assert.Equal(t, []string{"grailed-admins"}, standard.Groups)

	adfs := c.identity(map[string]any{
		"samaccountname": "z123",
		"mail":           "z@example.com",
		"firstname":      "Zed",
		"memberof":       "CN=Ops,OU=Groups",
	})
	assert.Equal(t, "z123", adfs.UserID)
	assert.Equal(t, "Zed", adfs.FirstName)
	assert.Equal(t, []string{"CN=Ops,OU=Groups"}, adfs.Groups)

	merged := mergeIdentity(standard, adfs)
	assert.Equal(t, "ada", merged.UserID)
	assert.Equal(t, "Ada", merged.FirstName)
	assert.Equal(t, "", merged.LastName)
	assert.Equal(t, []string{"grailed-admins"}, merged.Groups)

	filled := mergeIdentity(c.identity(map[string]any{"sub": "only-sub"}), adfs)
	assert.Equal(t, "only-sub", filled.UserID)
	assert.Equal(t, "z@example.com", filled.Email)
	assert.Equal(t, []string{"CN=Ops,OU=Groups"}, filled.Groups)
}
