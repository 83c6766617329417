package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/swiftkit/cache"
)

// Store is a cache.Store backed by Redis. Keys are written without a TTL.
type Store struct {
	client    *Client
	keyPrefix string
}

var _ cache.Store = (*Store)(nil)

// NewStore creates a Store backed by the given client. All keys are prefixed
// with keyPrefix followed by a colon separator.
func NewStore(client *Client, keyPrefix string) *Store {
	return &Store{client: client, keyPrefix: keyPrefix}
}

func (s *Store) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.rdb.Get(ctx, s.fullKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis store get %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key with no expiration.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.rdb.Set(ctx, s.fullKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis store set %q: %w", key, err)
	}
	return nil
}
