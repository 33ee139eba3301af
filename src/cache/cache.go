// Package cache is a small JSON read-through cache on redis. Entries
// expire on TTL; callers treat every miss or redis failure as a plain
// miss and fall back to the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "janawaaz.cache."

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// GetJSON loads key into dest. Returns false on miss or any redis
// problem; the caller goes to the source of truth.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key for the cache TTL. Best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, keyPrefix+key, raw, c.ttl)
}

// Invalidate drops a key ahead of its TTL.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, keyPrefix+key)
}
