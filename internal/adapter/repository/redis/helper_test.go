package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestStore returns an IdempotencyStore backed by an in-process Redis.
// Both are shut down when the test ends.
func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewIdempotencyStore(client), mr
}

// storedKey is the Redis key a cached response for key lives under.
func storedKey(store *IdempotencyStore, key string) string {
	return store.prefix + key
}
