// Package cache provides a bounded, TTL-evicting in-memory cache shared by
// the dedup store and the identity resolvers. Instances are explicit and
// injectable; there are no package-level singletons.
package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 16

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
}

// Cache is a sharded key-value store with per-entry TTL and a capacity
// bound. Sharding keeps concurrent upserts from unrelated tenants from
// serializing on one lock; mutation within a shard is add-if-absent or
// overwrite, never read-modify-write across the lock boundary.
type Cache[V any] struct {
	shards   [shardCount]*shard[V]
	ttl      time.Duration
	capacity int // per shard
	now      func() time.Time
}

// New creates a cache holding up to capacity entries with the given TTL.
// A zero TTL means entries never expire by age; capacity is still enforced.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	c := &Cache[V]{ttl: ttl, capacity: capacityPerShard(capacity), now: time.Now}
	for i := range c.shards {
		c.shards[i] = &shard[V]{entries: make(map[string]entry[V])}
	}
	return c
}

func capacityPerShard(total int) int {
	per := total / shardCount
	if per < 1 {
		per = 1
	}
	return per
}

func (c *Cache[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

func (c *Cache[V]) expiry() time.Time {
	if c.ttl == 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *Cache[V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any prior entry.
func (c *Cache[V]) Set(key string, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		c.evictLocked(s)
	}
	s.entries[key] = entry[V]{value: value, expiresAt: c.expiry()}
}

// Add stores value under key only if no live entry exists. Returns true
// when the value was stored. This is the atomic check-and-set the dedup
// store relies on: two concurrent deliveries of the same key see exactly
// one true.
func (c *Cache[V]) Add(key string, value V) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && !c.expired(e) {
		return false
	}
	c.evictLocked(s)
	s.entries[key] = entry[V]{value: value, expiresAt: c.expiry()}
	return true
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len counts live entries.
func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for _, e := range s.entries {
			if !c.expired(e) {
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}

// Purge drops expired entries. Called periodically by the janitor so a
// quiet cache does not pin memory until the next insert.
func (c *Cache[V]) Purge() int {
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if c.expired(e) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// evictLocked makes room in a full shard: expired entries first, then the
// entry closest to expiry. Caller holds the shard lock.
func (c *Cache[V]) evictLocked(s *shard[V]) {
	if len(s.entries) < c.capacity {
		return
	}
	for k, e := range s.entries {
		if c.expired(e) {
			delete(s.entries, k)
		}
	}
	for len(s.entries) >= c.capacity {
		var oldestKey string
		var oldest time.Time
		first := true
		for k, e := range s.entries {
			if first || e.expiresAt.Before(oldest) {
				oldestKey, oldest = k, e.expiresAt
				first = false
			}
		}
		delete(s.entries, oldestKey)
	}
}
