package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/kofuk/dnssync/internal/record"
)

// DefaultLifetime is how long a fetched result is served from cache.
const DefaultLifetime = 20 * time.Second

// Cache wraps a Fetcher and serves its last result while it is fresh.
// A result is fresh while it is non-empty and younger than the lifetime.
// Concurrent callers serialize on one lock, held across the freshness
// check and, when stale, the live fetch. A failed fetch leaves the cached
// result in place.
type Cache struct {
	mu        sync.Mutex
	fetcher   Fetcher
	lifetime  time.Duration
	result    record.FetcherRecordSet
	lastFetch time.Time
}

var _ Fetcher = (*Cache)(nil)

type CacheOption func(c *Cache)

func WithLifetime(lifetime time.Duration) CacheOption {
	return func(c *Cache) {
		c.lifetime = lifetime
	}
}

func NewCache(fetcher Fetcher, options ...CacheOption) *Cache {
	cache := &Cache{
		fetcher:  fetcher,
		lifetime: DefaultLifetime,
	}

	for _, opt := range options {
		opt(cache)
	}

	return cache
}

func (c *Cache) Fetch(ctx context.Context) (record.FetcherRecordSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh() {
		return c.result, nil
	}

	result, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.result = result
	c.lastFetch = time.Now()

	return result, nil
}

func (c *Cache) fresh() bool {
	return time.Since(c.lastFetch) < c.lifetime && !c.result.Empty()
}
