// Package cache is a Redis-backed read-through cache of whole grade
// results, keyed by content digest and rubric identity. Grading is
// deterministic for identical bytes and rubric, so a hit is always safe
// to serve.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docuscore/docuscore/internal/engine"
)

type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache wraps a Redis client. A nil client disables the cache:
// every Get misses and Set is a no-op, so callers never branch on
// whether caching is configured.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{client: client, ttl: ttl}
}

var _ engine.ResultCache = (*ResultCache)(nil)

func (c *ResultCache) Get(ctx context.Context, key string) (*engine.GradeResult, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		// redis.Nil and transport errors both read as a miss.
		return nil, false
	}
	var res engine.GradeResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *ResultCache) Set(ctx context.Context, key string, res *engine.GradeResult) {
	if c == nil || c.client == nil || res == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}
