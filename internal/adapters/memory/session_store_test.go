package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

func TestSessionStore(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "a", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "b", ExpiresAt: now.Add(time.Minute)}))
	assert.Error(t, s.Save(ctx, domainauth.Session{ID: "c", ExpiresAt: now.Add(-time.Minute)}))
	assert.Error(t, s.Save(ctx, domainauth.Session{}))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "b")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, s.Sweep())

	require.NoError(t, s.Delete(ctx, "missing"))
}
