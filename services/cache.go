package services

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a screen's data is served without refetching.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry[V any] struct {
	value     V
	fetchedAt time.Time
}

// TTLCache is a memoized read with time-based expiry. Writers are expected
// to Invalidate the keys they affect; the TTL only bounds staleness for
// writes that happen outside this process.
//
// Loaders that read outside the lock take a Version before reading and store
// with SetAt, so a result read before an Invalidate is dropped.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[K]cacheEntry[V]

	seq      uint64
	versions map[K]uint64
	purgedAt uint64
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TTLCache[K, V]{
		ttl:     ttl,
		now:     time.Now,
		entries:  make(map[K]cacheEntry[V]),
		versions: make(map[K]uint64),
	}
}

// SetClock replaces the time source.
func (c *TTLCache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns the cached value while now - fetchedAt < ttl.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// peek returns the entry regardless of age.
func (c *TTLCache[K, V]) peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Version changes every time key is invalidated or the cache is purged.
func (c *TTLCache[K, V]) Version(key K) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version(key)
}

func (c *TTLCache[K, V]) version(key K) uint64 {
	if v := c.versions[key]; v > c.purgedAt {
		return v
	}
	return c.purgedAt
}

// SetAt stores value only if key has not been invalidated since version was
// taken. It reports whether the value was stored.
func (c *TTLCache[K, V]) SetAt(key K, value V, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version(key) != version {
		return false
	}
	c.entries[key] = cacheEntry[V]{value: value, fetchedAt: c.now()}
	return true
}

func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.seq++
	c.versions[key] = c.seq
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *TTLCache[K, V]) Purge() {
	c.mu.Lock()
	c.entries = make(map[K]cacheEntry[V])
	c.versions = make(map[K]uint64)
	c.seq++
	c.purgedAt = c.seq
	c.mu.Unlock()
}

// Sweep removes expired entries and reports how many were dropped.
func (c *TTLCache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
