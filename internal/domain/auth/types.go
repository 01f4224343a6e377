// Package auth holds the identity, role and session types shared by the login flow and the
// access checks in front of job control actions.
package auth

import (
	"strings"
	"time"
)

// Role is an authorization level. Its string form is persisted in sessions.
type Role string

const (
	// RoleAdmin may run destructive deletes and read the audit trail.
	RoleAdmin Role = "admin"
	// RoleOperator may start, stop and query jobs.
	RoleOperator Role = "operator"
	// RoleGuest may only view pages.
	RoleGuest Role = "guest"
)

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleOperator:
		return 2
	case RoleGuest:
		return 1
	default:
		return 0
	}
}

// Allows reports whether r satisfies required.
func (r Role) Allows(required Role) bool {
	return r.rank() >= required.rank() && required.rank() > 0
}

// Identity is the authenticated principal returned by an identity provider.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time
}

// Session is the server-side record kept for a signed-in user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) }

// DisplayName prefers the full name, then the email, then the user ID.
func (s Session) DisplayName() string {
	if name := strings.TrimSpace(s.FirstName + " " + s.LastName); name != "" {
		return name
	}
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}

// Actor identifies the session owner in audit records.
func (s Session) Actor() string {
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}
