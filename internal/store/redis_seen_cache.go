package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSeenCache remembers audiobook paths already committed to the graph.
// It only ever answers "seen"; an absent key says nothing.
type RedisSeenCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSeenCache builds a cache storing keys as prefix+path. A zero ttl
// keeps keys forever.
func NewRedisSeenCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSeenCache {
	return &RedisSeenCache{client: client, prefix: prefix, ttl: ttl}
}

// Seen reports whether path was marked.
func (c *RedisSeenCache) Seen(ctx context.Context, path string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+path).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark records path, returning false when it was already present.
func (c *RedisSeenCache) Mark(ctx context.Context, path string) (bool, error) {
	return c.client.SetNX(ctx, c.prefix+path, "1", c.ttl).Result()
}
