package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/types"
)

// historicQuoteTTL covers quotes for a fixed past day, which never
// change once published.
const historicQuoteTTL = 7 * 24 * time.Hour

// CachedQuoteSource layers a Redis cache over the price client. Cache
// failures degrade to a direct fetch, never to an error.
type CachedQuoteSource struct {
	source   pricing.Fetcher
	cache    *RedisCache
	todayTTL time.Duration
}

// NewCachedQuoteSource wraps a quote source with a cache. todayTTL
// bounds how stale a same-day quote may get.
func NewCachedQuoteSource(source pricing.Fetcher, cache *RedisCache, todayTTL time.Duration) *CachedQuoteSource {
	if todayTTL <= 0 {
		todayTTL = 6 * time.Hour
	}
	return &CachedQuoteSource{source: source, cache: cache, todayTTL: todayTTL}
}

// ProductByEAN serves the product from cache when present, fetching
// and filling on a miss. Unknown products are cached as an explicit
// tombstone so repeated lookups don't hammer the source.
func (c *CachedQuoteSource) ProductByEAN(ctx context.Context, ean string, date string) (*types.Product, error) {
	logger := logging.FromContext(ctx)
	key := quoteKey(ean, date)

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		if cached == tombstone {
			return nil, nil
		}
		var product types.Product
		if unmarshalErr := json.Unmarshal([]byte(cached), &product); unmarshalErr == nil {
			return &product, nil
		}
		// Corrupt entry, fall through to a fresh fetch.
		logger.WithField("key", key).Warn("dropping corrupt quote cache entry")
		_ = c.cache.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		logger.WithField("key", key).WithError(err).Warn("quote cache read failed")
	}

	product, err := c.source.ProductByEAN(ctx, ean, date)
	if err != nil {
		return nil, err
	}

	ttl := c.todayTTL
	if date != "" {
		ttl = historicQuoteTTL
	}

	if product == nil {
		if setErr := c.cache.Set(ctx, key, tombstone, ttl); setErr != nil {
			logger.WithField("key", key).WithError(setErr).Warn("quote cache write failed")
		}
		return nil, nil
	}

	payload, marshalErr := json.Marshal(product)
	if marshalErr == nil {
		if setErr := c.cache.Set(ctx, key, payload, ttl); setErr != nil {
			logger.WithField("key", key).WithError(setErr).Warn("quote cache write failed")
		}
	}
	return product, nil
}

// Invalidate drops the cached quotes of one product for today.
func (c *CachedQuoteSource) Invalidate(ctx context.Context, ean string) error {
	return c.cache.Del(ctx, quoteKey(ean, ""))
}

const tombstone = "__absent__"

func quoteKey(ean string, date string) string {
	if date == "" {
		date = "today"
	}
	return fmt.Sprintf("quote:%s:%s", ean, date)
}
