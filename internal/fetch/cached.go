package fetch

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// DefaultTTL is how long a fetched snapshot stays fresh. Re-reading every
// session file on each 3-second refresh would be wasteful when nothing
// changed.
const DefaultTTL = 10 * time.Second

const cacheKey = "snapshot"

// Cached wraps a Source with TTL memoization. Failed fetches (nil) are
// never cached, so recovery is picked up on the next call.
type Cached struct {
	inner Source
	lru   *expirable.LRU[string, *model.UsageData]
}

// NewCached returns a Cached source with the given TTL; ttl <= 0 uses
// DefaultTTL.
func NewCached(inner Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{
		inner: inner,
		lru:   expirable.NewLRU[string, *model.UsageData](1, nil, ttl),
	}
}

// Fetch implements Source.
func (c *Cached) Fetch(now time.Time) *model.UsageData {
	if data, ok := c.lru.Get(cacheKey); ok {
		return data
	}

	data := c.inner.Fetch(now)
	if data != nil {
		c.lru.Add(cacheKey, data)
	}
	return data
}

// Invalidate drops the memoized snapshot so the next Fetch reloads.
func (c *Cached) Invalidate() {
	c.lru.Remove(cacheKey)
}
