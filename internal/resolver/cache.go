package resolver

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry holds a cached document with expiration and LRU tracking.
type cacheEntry[V any] struct {
	value     V
	cachedAt  time.Time
	expiresAt time.Time
	elem      *list.Element
}

// DocumentCache is a thread-safe, TTL-aware LRU cache mapping did_hash to a
// resolved document. Unlike a DNS cache it never stores errors: a failed
// resolution simply never reaches Set, so there is no negative-cache
// entry type to track.
//
// Eviction: once the cache holds maxEntries items, inserting a new key
// evicts the least recently used one. "Recently used" is refreshed on both
// Get and Set.
type DocumentCache[K comparable, V any] struct {
	mu sync.Mutex

	ttl        time.Duration
	maxEntries int

	lru  *list.List
	data map[K]*cacheEntry[V]

	hits   int
	misses int
}

// NewDocumentCache creates a cache with the given capacity and default TTL.
func NewDocumentCache[K comparable, V any](maxEntries int, ttl time.Duration) *DocumentCache[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &DocumentCache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		lru:        list.New(),
		data:       map[K]*cacheEntry[V]{},
	}
}

// Get returns the cached value for key, if present and unexpired.
// Expired entries are removed lazily and count as a miss.
func (c *DocumentCache[K, V]) Get(key K) (V, bool) {
	var zero V
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.data[key]
	if e == nil {
		c.misses++
		return zero, false
	}
	if !e.expiresAt.After(now) {
		c.lru.Remove(e.elem)
		delete(c.data, key)
		c.misses++
		return zero, false
	}

	c.lru.MoveToBack(e.elem)
	c.hits++
	return e.value, true
}

// Set stores val under key with the cache's default TTL, evicting the
// least recently used entry if the cache is at capacity.
func (c *DocumentCache[K, V]) Set(key K, val V) {
	c.SetTTL(key, val, c.ttl)
}

// SetTTL stores val under key with an explicit TTL. A non-positive TTL is a
// no-op: the cache never stores entries that are already expired.
func (c *DocumentCache[K, V]) SetTTL(key K, val V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	expires := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing := c.data[key]; existing != nil {
		existing.value = val
		existing.cachedAt = time.Now()
		existing.expiresAt = expires
		c.lru.MoveToBack(existing.elem)
		return
	}

	e := &cacheEntry[V]{value: val, cachedAt: time.Now(), expiresAt: expires}
	e.elem = c.lru.PushBack(key)
	c.data[key] = e

	c.evictOldest()
}

// Remove deletes key from the cache, returning the value that was stored
// (if any) and whether it was present.
func (c *DocumentCache[K, V]) Remove(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.data[key]
	if e == nil {
		return zero, false
	}
	c.lru.Remove(e.elem)
	delete(c.data, key)
	return e.value, true
}

// Len returns the number of live entries (expired-but-not-yet-accessed
// entries are still counted until their next Get).
func (c *DocumentCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns the cumulative hit/miss counters.
func (c *DocumentCache[K, V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *DocumentCache[K, V]) evictOldest() {
	for len(c.data) > c.maxEntries {
		front := c.lru.Front()
		if front == nil {
			break
		}
		k := front.Value.(K)
		c.lru.Remove(front)
		delete(c.data, k)
	}
}
