package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

// ErrSessionExpired is returned for a session that exists but is past its expiry.
var ErrSessionExpired = errors.New("session expired")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider // Required: identity provider
	Sessions ports.SessionStore // Required: session persistence
	Roles    ports.RoleMapper   // Required: group to role mapping
	// MaxSessionAge caps a session's lifetime below the provider's token expiry. Zero means no cap.
	MaxSessionAge time.Duration
	Logger        *slog.Logger
}

// AuthService runs the login flow and resolves the signed-in operator for each request.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	switch {
	case opts.Provider == nil:
		return nil, errors.New("AuthProvider is required")
	case opts.Sessions == nil:
		return nil, errors.New("SessionStore is required")
	case opts.Roles == nil:
		return nil, errors.New("RoleMapper is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		maxAge:   opts.MaxSessionAge,
		logger:   logger.With("component", "auth_service"),
		now:      time.Now,
	}, nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin starts a login flow that returns to redirectURL.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code, maps the operator's role and persists a new session.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (domainauth.Session, error) {
	if in.Code == "" || in.State == "" || in.Nonce == "" {
		return domainauth.Session{}, errors.New("code, state and nonce are required")
	}
	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput(in))
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	expires := identity.ExpiresAt
	if s.maxAge > 0 {
		if limit := s.now().Add(s.maxAge); expires.IsZero() || expires.After(limit) {
			expires = limit
		}
	}
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      s.roles.Map(identity.Groups),
		ExpiresAt: expires,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.InfoContext(ctx, "operator signed in", "user", sess.UserID, "role", sess.Role)
	return sess, nil
}

// GetSession returns the live session for id. Unknown ids yield ports.ErrSessionNotFound.
func (s *AuthService) GetSession(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get session: %w", err)
	}
	if sess.Expired(s.now()) {
		if delErr := s.sessions.Delete(ctx, id); delErr != nil {
			return domainauth.Session{}, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", delErr))
		}
		return domainauth.Session{}, ErrSessionExpired
	}
	return sess, nil
}

// Logout removes the session. An empty id is a no-op.
func (s *AuthService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LogoutURL returns the provider's end-session URL when the provider exposes one.
func (s *AuthService) LogoutURL() string {
	if lp, ok := s.provider.(interface{ LogoutURL() string }); ok {
		return lp.LogoutURL()
	}
	return ""
}
