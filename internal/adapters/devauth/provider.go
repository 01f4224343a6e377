// Package devauth provides a config-driven AuthProvider for local development. It skips the
// identity provider and signs every login in as the configured user.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

// Config describes the development identity.
type Config struct {
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
	CallbackPath    string        // default /auth/callback
}

// Provider implements ports.AuthProvider by redirecting straight to our own callback.
type Provider struct {
	cfg Config
	now func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	if cfg.CallbackPath == "" {
		cfg.CallbackPath = "/auth/callback"
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	return &Provider{cfg: cfg, now: time.Now}, nil
}

// Begin returns the local callback URL with a fresh state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.cfg.CallbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity. State and nonce are checked by the HTTP handler.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	return domainauth.Identity{
		UserID:    p.cfg.UserID,
		FirstName: p.cfg.FirstName,
		LastName:  p.cfg.LastName,
		Email:     p.cfg.Email,
		Groups:    append([]string(nil), p.cfg.Groups...),
		ExpiresAt: p.now().Add(p.cfg.SessionDuration),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
