// Package auth contains hand-written test doubles for the auth ports.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

var _ ports.AuthProvider = (*FakeProvider)(nil)

// FakeProvider simulates an identity provider with deterministic state and nonce values.
// BeginFunc and ExchangeFunc override the defaults when set.
type FakeProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	Identity domainauth.Identity

	mu        sync.Mutex
	begins    int
	exchanges []ports.ExchangeInput
}

// NewFakeProvider returns a provider that signs everyone in as an operator-group member.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Identity: domainauth.Identity{
			UserID:    "fake-user",
			FirstName: "Fake",
			LastName:  "Operator",
			Email:     "fake.operator@example.com",
			Groups:    []string{"scraper-ops"},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

// Begin implements ports.AuthProvider. State and nonce are "state-N" and "nonce-N".
func (f *FakeProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if f.BeginFunc != nil {
		return f.BeginFunc(ctx, in)
	}
	f.mu.Lock()
	f.begins++
	n := f.begins
	f.mu.Unlock()
	return "https://idp.example/authorize", fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

// Exchange implements ports.AuthProvider.
func (f *FakeProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	f.mu.Lock()
	f.exchanges = append(f.exchanges, in)
	f.mu.Unlock()
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, in)
	}
	return f.Identity, nil
}

// Exchanges returns the inputs Exchange was called with.
func (f *FakeProvider) Exchanges() []ports.ExchangeInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.ExchangeInput(nil), f.exchanges...)
}
