// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio_backend/internal/feature/symbollist/domain/entity"
	"portfolio_backend/internal/feature/symbollist/usecase"
)

// CachingListingSource decorates a ListingSource with Redis caching.
// Exchange listings change at most once a day, so the server can restart
// without hitting the upstream rate limit again.
type CachingListingSource struct {
	inner     usecase.ListingSource
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
	logger    *zap.Logger
}

var _ usecase.ListingSource = (*CachingListingSource)(nil)

// NewCachingListingSource decorates a ListingSource with Redis caching.
// If ttl is nil, entries live for 24 hours. If namespace is empty, it uses "listings".
// A nil rdb bypasses the cache entirely.
func NewCachingListingSource(rdb *redis.Client, ttl func() time.Duration, inner usecase.ListingSource, namespace string, logger *zap.Logger) *CachingListingSource {
	if ttl == nil {
		ttl = func() time.Duration { return 24 * time.Hour }
	}
	if namespace == "" {
		namespace = "listings"
	}
	return &CachingListingSource{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		logger:    logger,
	}
}

// ListStocks returns the listing of exchange, checking the cache first.
func (c *CachingListingSource) ListStocks(ctx context.Context, exchange string) ([]entity.Symbol, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.ListStocks(ctx, exchange)
	}

	key := c.cacheKey(exchange)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Symbol
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to upstream
	out, err := c.inner.ListStocks(ctx, exchange)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	c.store(ctx, key, out)
	return out, nil
}

// Refresh fetches the listing of exchange from upstream and overwrites the cached entry.
func (c *CachingListingSource) Refresh(ctx context.Context, exchange string) (int, error) {
	out, err := c.inner.ListStocks(ctx, exchange)
	if err != nil {
		return 0, fmt.Errorf("refresh %s: %w", exchange, err)
	}
	if c.rdb == nil {
		return len(out), nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", exchange, err)
	}
	if err := c.rdb.Set(ctx, c.cacheKey(exchange), b, c.ttl()).Err(); err != nil {
		return 0, fmt.Errorf("cache %s: %w", exchange, err)
	}
	return len(out), nil
}

// Purge deletes every cached listing under the namespace using SCAN.
func (c *CachingListingSource) Purge(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, c.namespace+":*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (c *CachingListingSource) store(ctx context.Context, key string, out []entity.Symbol) {
	b, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl()).Err(); err != nil {
		c.logger.Warn("failed to cache listing", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey generates a cache key for an exchange listing.
func (c *CachingListingSource) cacheKey(exchange string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(exchange))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
