// Package redis provides the Redis-backed session store used when the dashboard runs behind
// more than one replica.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/grailed-admin/internal/domain/auth"
	"github.com/target/grailed-admin/internal/ports"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "grailed-admin:session:"

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix string
	// MaxTTL caps the key lifetime regardless of the session expiry. Zero means no cap.
	MaxTTL time.Duration
}

// SessionStore keeps sessions as JSON values whose key TTL tracks the session expiry.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	maxTTL time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix, maxTTL: opts.MaxTTL}
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// Save implements ports.SessionStore.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	if s.maxTTL > 0 && ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get implements ports.SessionStore.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Expired(time.Now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

// Delete implements ports.SessionStore.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
