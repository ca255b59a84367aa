// Package cache provides the in-memory TTL cache for model answers.
// Expiration is checked at lookup time; there is no background sweeper.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	createdAt time.Time
	ttl       time.Duration
}

// Cache is a thread-safe key/value store with per-entry TTL.
// Absence is a normal result, never an error.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if it has not expired.
// An expired entry is evicted on lookup and reported absent.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if c.now().Sub(e.createdAt) < e.ttl {
		return e.value, true
	}

	delete(c.entries, key)
	return "", false
}

// Set stores value under key with the given TTL, replacing any previous
// entry and restarting its lifetime.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len reports the number of stored entries, expired ones included until
// a lookup evicts them.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
