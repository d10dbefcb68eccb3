// Package cache provides a small in-process TTL cache. The provider client
// keeps credential material and JWT sessions here between invocations.
package cache

import (
	"sync"
	"time"
)

// Cache is the minimal interface consumers depend on.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

type entry[V any] struct {
	value     V
	fetchedAt time.Time
	ttl       time.Duration
}

// TTLCache stores values in memory with per-entry TTLs. The time source is
// injectable so expiry can be tested without sleeping.
type TTLCache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]entry[V]
	now   func() time.Time
}

// New constructs a TTLCache using the wall clock.
func New[K comparable, V any]() *TTLCache[K, V] {
	return NewWithNow[K, V](time.Now)
}

// NewWithNow constructs a TTLCache with an explicit time source.
func NewWithNow[K comparable, V any](now func() time.Time) *TTLCache[K, V] {
	return &TTLCache[K, V]{items: make(map[K]entry[V]), now: now}
}

// Get returns a cached value if present and younger than its TTL.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if e.ttl > 0 && c.now().Sub(e.fetchedAt) >= e.ttl {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

// Set stores a value and stamps it with the current time. A ttl of zero
// means the entry never expires.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, fetchedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
