package redis

import (
	"context"
	"time"
)

// Cache adapts the Redis client to the common cache.Cache interface so
// content payload caching can be shared across replicas. Keys are
// namespaced to keep cache entries apart from rate-limit counters.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a Redis-backed cache with the given key prefix
func NewCache(client *Client, prefix string) *Cache {
	if prefix == "" {
		prefix = "cache:"
	}
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.client.Get(ctx, c.prefix+key)
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.SetWithExpiry(ctx, c.prefix+key, value, ttl)
}

// Delete removes a value from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Delete(ctx, c.prefix+key)
}

// Close is a no-op; the wrapped client's lifetime is owned by the container
func (c *Cache) Close() error {
	return nil
}
