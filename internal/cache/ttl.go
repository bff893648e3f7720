// Package cache provides a small in-process TTL cache with tag-based
// invalidation. It is a performance optimization only: entries may be stale
// by at most their TTL and callers must never rely on it for correctness.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Injectable for tests.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
	tags      []string
}

// TTL is a concurrency-safe cache whose entries expire after a fixed
// duration and can be invalidated eagerly by tag.
type TTL[V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   Clock
	items map[string]entry[V]
}

// NewTTL returns a cache with the given entry lifetime. A nil clock defaults
// to time.Now.
func NewTTL[V any](ttl time.Duration, now Clock) *TTL[V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[V]{
		ttl:   ttl,
		now:   now,
		items: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's TTL, associated with tags.
func (c *TTL[V]) Set(key string, value V, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
		tags:      tags,
	}
}

// InvalidateTag removes every entry associated with the tag.
func (c *TTL[V]) InvalidateTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.items {
		for _, t := range e.tags {
			if t == tag {
				delete(c.items, key)
				break
			}
		}
	}
}
