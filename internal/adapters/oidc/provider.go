// Package oidc signs operators in through an OpenID Connect identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

// ClaimNames lists, per identity field, the claims to try in order. Both standard OIDC names and
// the ADFS shape are covered by DefaultClaimNames.
type ClaimNames struct {
	UserID    []string
	Email     []string
	FirstName []string
	LastName  []string
	Groups    []string
}

// DefaultClaimNames returns the claim precedence used when none is configured.
func DefaultClaimNames() ClaimNames {
	return ClaimNames{
		UserID:    []string{"preferred_username", "samaccountname", "sub"},
		Email:     []string{"email", "mail"},
		FirstName: []string{"given_name", "firstname"},
		LastName:  []string{"family_name", "lastname"},
		Groups:    []string{"groups", "memberof"},
	}
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// Issuer is the provider URL; a trailing /.well-known/openid-configuration is accepted.
	Issuer     string
	LogoutURL  string
	Claims     *ClaimNames
	HTTPClient *http.Client
}

// Provider implements ports.AuthProvider with the authorization code flow and nonce check.
type Provider struct {
	oauth     *oauth2.Config
	op        *gooidc.Provider
	verifier  *gooidc.IDTokenVerifier
	claims    ClaimNames
	logoutURL string
	client    *http.Client
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider performs discovery against the issuer and returns a ready Provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.Issuer == "":
		return nil, errors.New("issuer is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	claims := DefaultClaimNames()
	if cfg.Claims != nil {
		claims = *cfg.Claims
	}

	issuer := strings.TrimSuffix(cfg.Issuer, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, client), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if !slices.Contains(scopes, gooidc.ScopeOpenID) {
		scopes = append([]string{gooidc.ScopeOpenID}, scopes...)
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		op:        op,
		verifier:  op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		claims:    claims,
		logoutURL: cfg.LogoutURL,
		client:    client,
	}, nil
}

// LogoutURL returns the provider's end-session URL, if configured.
func (p *Provider) LogoutURL() string { return p.logoutURL }

// Begin implements ports.AuthProvider.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := p.oauth.AuthCodeURL(state, gooidc.Nonce(nonce), oauth2.SetAuthURLParam("prompt", "select_account"))
	return authURL, state, nonce, nil
}

// Exchange implements ports.AuthProvider. The ID token is verified and its nonce must match;
// fields it lacks are filled from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domainauth.Identity{}, errors.New("missing id_token in token response")
	}
	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idToken.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode id_token claims: %w", err)
	}
	id := p.claims.identity(raw)

	if id.UserID == "" || id.Email == "" {
		info, uiErr := p.op.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("fetch userinfo: %w", uiErr)
		}
		var extra map[string]any
		if err := info.Claims(&extra); err != nil {
			return domainauth.Identity{}, fmt.Errorf("decode userinfo: %w", err)
		}
		id = mergeIdentity(id, p.claims.identity(extra))
	}
	if id.UserID == "" {
		return domainauth.Identity{}, errors.New("identity has no user id")
	}

	id.ExpiresAt = idToken.Expiry
	if !token.Expiry.IsZero() {
		id.ExpiresAt = token.Expiry
	}
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = time.Now().Add(time.Hour)
	}
	return id, nil
}

func (c ClaimNames) identity(raw map[string]any) domainauth.Identity {
	return domainauth.Identity{
		UserID:    firstString(raw, c.UserID),
		Email:     firstString(raw, c.Email),
		FirstName: firstString(raw, c.FirstName),
		LastName:  firstString(raw, c.LastName),
		Groups:    firstStrings(raw, c.Groups),
	}
}

func mergeIdentity(base, fill domainauth.Identity) domainauth.Identity {
	if base.UserID == "" {
		base.UserID = fill.UserID
	}
	if base.Email == "" {
		base.Email = fill.Email
	}
	if base.FirstName == "" {
		base.FirstName = fill.FirstName
	}
	if base.LastName == "" {
		base.LastName = fill.LastName
	}
	if len(base.Groups) == 0 {
		base.Groups = fill.Groups
	}
	return base
}

func firstString(raw map[string]any, names []string) string {
	for _, n := range names {
		if s, ok := raw[n].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstStrings accepts both a JSON array and a single string claim.
func firstStrings(raw map[string]any, names []string) []string {
	for _, n := range names {
		switch v := raw[n].(type) {
		case string:
			if v != "" {
				return []string{v}
			}
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
