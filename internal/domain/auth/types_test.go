package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleAllows(t *testing.T) {
	assert.True(t, RoleAdmin.Allows(RoleOperator))
	assert.True(t, RoleOperator.Allows(RoleOperator))
	assert.False(t, RoleOperator.Allows(RoleAdmin))
	assert.False(t, RoleGuest.Allows(RoleOperator))
	assert.False(t, Role("").Allows(RoleGuest))
	assert.False(t, RoleAdmin.Allows(Role("superuser")))
}

func TestSessionHelpers(t *testing.T) {
	now := time.Now()
	s := Session{UserID: "u1", Email: "ops@example.com", ExpiresAt: now.Add(-time.Minute)}

	assert.True(t, s.Expired(now))
	assert.Equal(t, "ops@example.com", s.DisplayName())
	assert.Equal(t, "ops@example.com", s.Actor())

	s.FirstName, s.LastName = "Ada", "Lovelace"
	assert.Equal(t, "Ada Lovelace", s.DisplayName())

	assert.False(t, Session{}.Expired(now))
}
