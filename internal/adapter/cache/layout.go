// Package cache memoizes dial layouts per measured diameter.
package cache

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v2"

	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
)

// DefaultIdleTTL evicts layouts for diameters nobody has shown for a while.
const DefaultIdleTTL = 10 * time.Minute

// CachedLayouter wraps a Layouter with a size-bounded cache. Every hit
// extends the entry's lifetime, so the least recently used diameter is the
// first to go when the cache is full.
type CachedLayouter struct {
	inner   domain.Layouter
	cache   *ttlcache.Cache
	metrics *observability.Metrics
}

// NewCachedLayouter creates a cache decorator around a layouter.
func NewCachedLayouter(inner domain.Layouter, maxEntries int, idleTTL time.Duration, metrics *observability.Metrics) (*CachedLayouter, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("layout cache size must be positive, got %d", maxEntries)
	}
	c := ttlcache.NewCache()
	if err := c.SetTTL(idleTTL); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set layout cache ttl: %w", err)
	}
	c.SetCacheSizeLimit(maxEntries)

	return &CachedLayouter{inner: inner, cache: c, metrics: metrics}, nil
}

// LayoutDial returns the layout for diameter, computing it on a miss. Keys
// are the exact normalized diameter, so a cached layout is always the one
// the inner layouter would return for the same input.
func (c *CachedLayouter) LayoutDial(diameter float64) domain.DialLayout {
	diameter = domain.NormalizeDiameter(diameter)
	key := strconv.FormatFloat(diameter, 'g', -1, 64)

	if v, err := c.cache.Get(key); err == nil {
		if layout, ok := v.(domain.DialLayout); ok {
			c.metrics.LayoutCache.WithLabelValues("hit").Inc()
			return layout
		}
	} else if !errors.Is(err, ttlcache.ErrNotFound) {
		// A closed cache still answers from the inner layouter.
		c.metrics.LayoutCache.WithLabelValues("error").Inc()
		return c.inner.LayoutDial(diameter)
	}

	c.metrics.LayoutCache.WithLabelValues("miss").Inc()
	layout := c.inner.LayoutDial(diameter)
	// Unmeasured containers are transient; keep them out of the cache.
	if !layout.Degenerate() {
		_ = c.cache.Set(key, layout)
	}
	return layout
}

// Len reports the number of cached layouts.
func (c *CachedLayouter) Len() int {
	return c.cache.Count()
}

// Close stops the cache's expiry goroutine.
func (c *CachedLayouter) Close() error {
	return c.cache.Close()
}
