package cache

import (
	"sync"
	"time"
)

// entry stores a cached value and the instant it stops being served.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// SimpleCache is a map-backed cache with per-item TTL and an injected clock.
// Expired entries are treated as misses and removed lazily by PurgeExpired.
type SimpleCache[K comparable, V any] struct {
	mu    sync.RWMutex
	clock Clock
	items map[K]entry[V]
}

// Options controls construction of a SimpleCache.
type Options struct {
	// Clock overrides time.Now. Nil means the wall clock.
	Clock Clock
}

// NewSimpleCache constructs a new SimpleCache with the given options.
func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SimpleCache[K, V]{
		clock: clock,
		items: make(map[K]entry[V]),
	}
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Get implements Cache.Get.
func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok || e.expired(c.clock()) {
		return zero, false
	}
	return e.value, true
}

// Set implements Cache.Set. The TTL is measured from the moment of the write.
func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = c.clock().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: exp}
	c.mu.Unlock()
}

// Delete implements Cache.Delete.
func (c *SimpleCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len implements Cache.Len. It counts only non-expired entries.
func (c *SimpleCache[K, V]) Len() int {
	now := c.clock()

	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, e := range c.items {
		if !e.expired(now) {
			count++
		}
	}
	return count
}

// Stored returns the number of entries held, expired ones included.
func (c *SimpleCache[K, V]) Stored() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *SimpleCache[K, V]) PurgeExpired() int {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

var _ Cache[string, any] = (*SimpleCache[string, any])(nil)
