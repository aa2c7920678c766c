package generator

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// resultCache holds generated SQL keyed by the trimmed user prompt. Pure cost
// control on the free generation tier: identical prompts within the TTL never
// hit the generation service twice.
type cacheEntry struct {
	sql       string
	expiresAt time.Time
}

type resultCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	sf    singleflight.Group // deduplicate concurrent generations for the same prompt
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
	}
}

func (c *resultCache) get(prompt string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[prompt]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.sql, true
}

func (c *resultCache) set(prompt, sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[prompt] = cacheEntry{
		sql:       sql,
		expiresAt: time.Now().Add(c.ttl),
	}
}
