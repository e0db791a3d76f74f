// Package cache holds the rendered-fragment cache used by the index feed.
// Entries are keyed by rendered-output identity (page number), not by data
// version: within the TTL a hit is served even if the underlying posts
// changed.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/pkg/logger"
)

// FragmentCache stores rendered HTML fragments in redis with a fixed TTL.
type FragmentCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFragmentCache(rdb *redis.Client, ttl time.Duration) *FragmentCache {
	return &FragmentCache{rdb: rdb, ttl: ttl}
}

// IndexPageKey is the cache key for page n of the index feed.
func IndexPageKey(page int) string {
	return fmt.Sprintf("index_page:%d", page)
}

// Get returns the cached fragment and whether it was present. Cache errors
// degrade to a miss; the page is simply re-rendered.
func (c *FragmentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("fragment cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores the fragment for the configured TTL. Failures are logged and
// swallowed; caching is best effort.
func (c *FragmentCache) Set(ctx context.Context, key string, fragment []byte) {
	if err := c.rdb.Set(ctx, key, fragment, c.ttl).Err(); err != nil {
		logger.Warn("fragment cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops a cached fragment. No request path calls this today;
// it exists for operators and tests, so the staleness window stays the
// documented TTL.
func (c *FragmentCache) Invalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
