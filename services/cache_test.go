package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTTLCacheExpiry(t *testing.T) {
	clock := newFakeClock()
	cache := NewTTLCache[string, *int](30 * time.Second)
	cache.SetClock(clock.Now)

	v := 42
	cache.Set("k", &v)

	got, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Same(t, &v, got)

	clock.Advance(29 * time.Second)
	_, ok = cache.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.Get("k")
	assert.False(t, ok, "entry must expire exactly at the ttl")
}

func TestTTLCacheInvalidateAndPurge(t *testing.T) {
	cache := NewTTLCache[int, string](time.Minute)
	cache.Set(1, "a")
	cache.Set(2, "b")

	cache.Invalidate(1)
	_, ok := cache.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestTTLCacheSweep(t *testing.T) {
	clock := newFakeClock()
	cache := NewTTLCache[int, string](10 * time.Second)
	cache.SetClock(clock.Now)

	cache.Set(1, "old")
	clock.Advance(6 * time.Second)
	cache.Set(2, "new")
	clock.Advance(5 * time.Second)

	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())
	v, ok := cache.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestNewTTLCacheDefaultTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewTTLCache[int, int](0)
	cache.SetClock(clock.Now)
	cache.Set(1, 1)

	clock.Advance(DefaultCacheTTL - time.Millisecond)
	_, ok := cache.Get(1)
	assert.True(t, ok)
}

func TestTTLCacheSetAtVersion(t *testing.T) {
	cache := NewTTLCache[int, string](time.Minute)

	v := cache.Version(1)
	assert.True(t, cache.SetAt(1, "a", v))

	v = cache.Version(1)
	cache.Invalidate(1)
	assert.False(t, cache.SetAt(1, "stale", v), "invalidated since the version was taken")
	_, ok := cache.Get(1)
	assert.False(t, ok)

	v1, v2 := cache.Version(1), cache.Version(2)
	cache.Invalidate(2)
	assert.True(t, cache.SetAt(1, "b", v1), "other keys are unaffected")

	cache.Purge()
	assert.False(t, cache.SetAt(1, "c", v1))
	assert.False(t, cache.SetAt(2, "c", v2))
	assert.True(t, cache.SetAt(2, "d", cache.Version(2)))
}
