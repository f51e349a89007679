package server

import (
	"net/http"
	"sync"
	"time"
)

// responseCache stores rendered page bodies keyed by request method,
// path, and query string. Caching is off in dev mode or when the
// configured TTL is zero; the template watcher clears it when a template
// changes.
type responseCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	ttl      time.Duration
	disabled bool
}

// cacheEntry is one cached page with its expiration time.
type cacheEntry struct {
	status    int
	body      []byte
	expiresAt time.Time
}

func newResponseCache(devMode bool, ttl time.Duration) *responseCache {
	return &responseCache{
		entries:  make(map[string]*cacheEntry),
		ttl:      ttl,
		disabled: devMode || ttl <= 0,
	}
}

func cacheKey(r *http.Request) string {
	return r.Method + ":" + r.URL.Path + "?" + r.URL.RawQuery
}

// Get retrieves a cached page if available and not expired.
func (c *responseCache) Get(r *http.Request) *cacheEntry {
	if c.disabled {
		return nil
	}

	key := cacheKey(r)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil
	}
	return entry
}

// Set stores a rendered page.
func (c *responseCache) Set(r *http.Request, status int, body []byte) {
	if c.disabled {
		return
	}

	entry := &cacheEntry{
		status:    status,
		body:      body,
		expiresAt: time.Now().Add(c.ttl),
	}

	c.mu.Lock()
	c.entries[cacheKey(r)] = entry
	c.mu.Unlock()
}

// Clear removes all entries from the cache.
func (c *responseCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Prune removes expired entries and reports how many were dropped.
func (c *responseCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	pruned := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			pruned++
		}
	}
	return pruned
}

// Size returns the number of cached pages.
func (c *responseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
