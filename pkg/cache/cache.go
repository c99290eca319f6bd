package cache

import (
	"sync"
	"time"
)

// Entry is a cached value along with the time it was stored
type Entry[V any] struct {
	Value    V
	StoredAt time.Time
}

// Cache is a keyed map where every entry remembers when it was written.
// Expiry is never driven by a background timer: callers sweep explicitly,
// usually as part of a mutation, which keeps behavior deterministic.
type Cache[K comparable, V any] struct {
	entries map[K]Entry[V]
	mu      sync.RWMutex
	now     func() time.Time
}

// Option configures a Cache
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used to stamp entries
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[K, V]{
		mu:      sync.RWMutex{},
		entries: make(map[K]Entry[V]),
		now:     o.now,
	}
	return c
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Value: value, StoredAt: c.now()}
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry.Value, ok
}

// Entry returns the value and the time it was stored
func (c *Cache[K, V]) Entry(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Claim stores value under key unless a live entry younger than ttl already exists.
// Expired entries are swept before the check. It reports whether the claim succeeded
// and, if not, returns the entry that blocked it.
func (c *Cache[K, V]) Claim(key K, value V, ttl time.Duration) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now, ttl)

	if existing, ok := c.entries[key]; ok {
		return existing, false
	}

	entry := Entry[V]{Value: value, StoredAt: now}
	c.entries[key] = entry
	return entry, true
}

// Sweep removes entries older than maxAge and returns how many were removed
func (c *Cache[K, V]) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now(), maxAge)
}

func (c *Cache[K, V]) sweepLocked(now time.Time, maxAge time.Duration) int {
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.StoredAt) > maxAge {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
