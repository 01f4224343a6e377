package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

func TestFakeProvider_Defaults(t *testing.T) {
	p := NewFakeProvider()
	ctx := context.Background()

	_, state, nonce, err := p.Begin(ctx, ports.BeginInput{RedirectURL: "/cb"})
	require.NoError(t, err)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state, _, err = p.Begin(ctx, ports.BeginInput{RedirectURL: "/cb"})
	require.NoError(t, err)
	assert.Equal(t, "state-2", state)

	id, err := p.Exchange(ctx, ports.ExchangeInput{Code: "c", State: state, Nonce: "nonce-2"})
	require.NoError(t, err)
	assert.Equal(t, "fake-user", id.UserID)
	assert.Len(t, p.Exchanges(), 1)
}

func TestFakeProvider_Overrides(t *testing.T) {
	p := NewFakeProvider()
	p.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("denied")
	}
	_, err := p.Exchange(context.Background(), ports.ExchangeInput{})
	assert.Error(t, err)
}
