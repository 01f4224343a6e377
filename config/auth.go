package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects how operators sign in.
type AuthMode string

const (
	AuthModeOIDC AuthMode = "oidc"
	AuthModeDev  AuthMode = "dev"
	AuthModeNone AuthMode = "none"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch AuthMode(v) {
	case AuthModeOIDC, AuthModeDev, AuthModeNone:
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev, none)", v)
	}
}

// OIDCConfig contains the OpenID Connect client settings.
type OIDCConfig struct {
	Issuer       string `env:"ISSUER"`
	ClientID     string `env:"CLIENT_ID"     envDefault:"grailed-admin"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig is the identity used when AUTH_MODE=dev.
type DevAuthConfig struct {
	UserID    string   `env:"USER_ID"    envDefault:"dev-user"`
	Email     string   `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string   `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string   `env:"LAST_NAME"  envDefault:"Operator"`
	Groups    []string `env:"GROUPS"     envDefault:"grailed-admins" envSeparator:";"`
}

// AuthConfig groups authentication and authorization settings.
type AuthConfig struct {
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	OIDC    OIDCConfig    `envPrefix:"OIDC_"`
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroups may run deletes and read the audit trail.
	AdminGroups []string `env:"ADMIN_GROUPS" envDefault:"grailed-admins" envSeparator:";"`
	// OperatorGroups may start, stop and poll jobs.
	OperatorGroups []string `env:"OPERATOR_GROUPS" envDefault:"scraper-ops" envSeparator:";"`

	SessionMaxAge time.Duration `env:"AUTH_SESSION_MAX_AGE" envDefault:"12h"`
}

// Sanitize drops blank group entries.
func (a *AuthConfig) Sanitize() {
	a.AdminGroups = trimAll(a.AdminGroups)
	a.OperatorGroups = trimAll(a.OperatorGroups)
	a.DevAuth.Groups = trimAll(a.DevAuth.Groups)
	a.OIDC.Issuer = strings.TrimSpace(a.OIDC.Issuer)
	if a.SessionMaxAge <= 0 {
		a.SessionMaxAge = 12 * time.Hour
	}
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
