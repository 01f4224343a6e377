package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis returns a client on a flushed Redis database. The address comes from REDIS_ADDR,
// then the usual CI names, then the local test port 56379. TEST_REDIS_DB picks the DB index.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	candidates := []string{"redis:6379", "localhost:6379", "localhost:56379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}

	db := 1
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			db = i
		}
	}

	for _, addr := range candidates {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		if err == nil {
			client.FlushDB(ctx)
			cancel()
			t.Cleanup(func() { _ = client.Close() })
			return client
		}
		cancel()
		t.Logf("redis not available at %s: %v", addr, err)
		_ = client.Close()
	}
	skipOrFail(t, requireRedis(), "redis not available for testing")
	return nil
}
