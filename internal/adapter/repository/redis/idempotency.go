package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client redis.Cmdable
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "txledger:idempotency:",
	}
}

// Get returns the cached response for key.
func (s *IdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cached, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return cached, true, nil
}

// Save stores response for key. The first saved response is kept.
func (s *IdempotencyStore) Save(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.SetNX(ctx, s.prefix+key, response, ttl).Err()
}
