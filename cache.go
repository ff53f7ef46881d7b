package pulseboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eringen/pulseboard/analytics"
	"github.com/eringen/pulseboard/console"
)

type cachedStats struct {
	result  *analytics.StatsResult
	fetched time.Time
}

// StatsCache is an in-memory TTL cache of stats responses keyed by query.
// It wraps another console.API; events pass straight through and drop the
// cached entries of their site.
type StatsCache struct {
	mu      sync.RWMutex
	entries map[string]cachedStats
	ttl     time.Duration
	next    console.API
}

// NewStatsCache creates a StatsCache in front of next.
func NewStatsCache(next console.API, ttl time.Duration) *StatsCache {
	return &StatsCache{
		entries: make(map[string]cachedStats),
		ttl:     ttl,
		next:    next,
	}
}

func (c *StatsCache) lookup(key string) (*analytics.StatsResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.result, true
}

// Stats returns a cached result while it is fresh, otherwise asks next.
// Failures are never cached.
func (c *StatsCache) Stats(ctx context.Context, q analytics.StatsQuery) (*analytics.StatsResult, error) {
	key := q.Key()
	if res, ok := c.lookup(key); ok {
		return res, nil
	}

	res, err := c.next.Stats(ctx, q)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cachedStats{result: res, fetched: time.Now()}
	c.mu.Unlock()
	return res, nil
}

// SendEvent forwards ev and invalidates the cached results of its site.
func (c *StatsCache) SendEvent(ctx context.Context, ev analytics.EventSubmission) error {
	if err := c.next.SendEvent(ctx, ev); err != nil {
		return err
	}
	c.InvalidateSite(ev.SiteID)
	return nil
}

// InvalidateSite drops every cached result for siteID.
func (c *StatsCache) InvalidateSite(siteID string) {
	c.mu.Lock()
	for key := range c.entries {
		if siteOf(key) == siteID {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func siteOf(key string) string {
	if i := strings.LastIndex(key, "|"); i >= 0 {
		return key[:i]
	}
	return key
}
