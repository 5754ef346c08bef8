package vault

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "vault:v2:"

// RedisStore keeps blobs in Redis without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get fetches the blob stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return blob, err
}

// Put overwrites the blob stored under key.
func (s *RedisStore) Put(ctx context.Context, key string, blob []byte) error {
	return s.client.Set(ctx, redisPrefix+key, blob, 0).Err()
}
