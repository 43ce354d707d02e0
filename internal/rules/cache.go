package rules

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "pricing:rules:v1"

// Cache stores the assembled rule set as JSON in Redis so every quote does
// not hit Postgres.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func (c *Cache) ttl() time.Duration {
	if c == nil || c.TTL <= 0 {
		return 5 * time.Minute
	}
	return c.TTL
}

// Get unmarshals the cached rules into dst. It reports whether the key existed.
func (c *Cache) Get(ctx context.Context, dst any) (bool, error) {
	if c == nil || c.Client == nil {
		return false, nil
	}
	data, err := c.Client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set serialises v and stores it with the configured TTL.
func (c *Cache) Set(ctx context.Context, v any) error {
	if c == nil || c.Client == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, cacheKey, data, c.ttl()).Err()
}

// Invalidate drops the cached rules so the next load reads the store.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, cacheKey).Err()
}
