package devauth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/target/grailed-admin/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", Groups: []string{"grailed-admins"}})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse authURL: %v", err)
	}
	if u.Path != "/auth/callback" || u.Query().Get("state") != state || u.Query().Get("code") != "dev" {
		t.Fatalf("unexpected authURL: %s", authURL)
	}
	if state == "" || nonce == "" || state == nonce {
		t.Fatal("state and nonce should be distinct random values")
	}

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.UserID != "dev-user" || id.Email != "dev@example.com" || len(id.Groups) != 1 {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if time.Until(id.ExpiresAt) < 7*time.Hour {
		t.Fatalf("expected default 8h session, got expiry %v", id.ExpiresAt)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	if _, err := NewProvider(Config{Email: "x@example.com"}); err == nil {
		t.Fatal("expected error for missing UserID")
	}
	if _, err := NewProvider(Config{UserID: "x"}); err == nil {
		t.Fatal("expected error for missing Email")
	}
}

func TestProvider_ExchangeRequiresCode(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "u", Email: "e@example.com", CallbackPath: "/cb"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := prov.Exchange(context.Background(), ports.ExchangeInput{}); err == nil {
		t.Fatal("expected error for empty code")
	}
}
