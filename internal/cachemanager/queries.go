package cachemanager

import (
	"context"
	"strings"
	"time"

	"github.com/zjrosen/cardkit/internal/finder"
)

// QueryCache memoizes finder.Parse by query text. Entries are refreshed on
// every hit, so a query in active use never expires.
type QueryCache struct {
	rt  *ReadThroughCache[string, finder.Query, string]
	ttl time.Duration
}

// NewQueryCache returns a cache that keeps parsed queries for ttl. A zero ttl
// disables caching.
func NewQueryCache(ttl time.Duration) *QueryCache {
	store := NewInMemoryCacheManager[string, finder.Query]("queries", ttl, DefaultCleanupInterval)
	return newQueryCache(store, ttl)
}

func newQueryCache(store CacheManager[string, finder.Query], ttl time.Duration) *QueryCache {
	parse := func(_ context.Context, text string) (finder.Query, error) {
		return finder.Parse(text)
	}
	return &QueryCache{
		rt:  NewReadThroughCache(store, parse, ttl <= 0),
		ttl: ttl,
	}
}

// Parse returns the parsed form of text, parsing it at most once per ttl.
// Surrounding whitespace does not affect the cache key.
func (q *QueryCache) Parse(ctx context.Context, text string) (finder.Query, error) {
	text = strings.TrimSpace(text)
	return q.rt.GetWithRefresh(ctx, text, text, q.ttl)
}
