package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client and verifies connectivity.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// JSONCache stores JSON-encoded values with a fixed TTL. Used for the
// admin dashboard counts, which are expensive to recompute on every request.
type JSONCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJSONCache constructs a JSONCache.
func NewJSONCache(client *redis.Client, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, ttl: ttl}
}

// Get unmarshals the cached value for key into target. The boolean reports
// whether a value was present.
func (c *JSONCache) Get(ctx context.Context, key string, target any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key for the configured TTL.
func (c *JSONCache) Set(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops the cached value for key.
func (c *JSONCache) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
