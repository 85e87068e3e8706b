// Package lru provides thread-safe wrappers around the simplelru cache.
package lru

import (
	"iter"
	"log/slog"
	"sync"

	"github.com/bpowers/lru/simplelru"
)

// Cache serializes access to a single linked LRU with one lock. Reads that
// promote an entry relink the recency list, so Get takes the write lock;
// only the lookups that leave the order alone share the read lock.
type Cache[K comparable, V any] struct {
	lru  simplelru.LRUCache[K, V]
	lock sync.RWMutex
}

// New creates a cache holding at most size entries. A size of zero selects
// simplelru.DefaultSize.
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	return NewWithEvict[K, V](size, nil)
}

// NewWithEvict is New with a callback fired for every entry pushed out by
// capacity, Resize or Purge. The callback runs with the cache locked and
// must not call back into it.
func NewWithEvict[K comparable, V any](size int, onEvicted func(key K, value V)) (*Cache[K, V], error) {
	engine, err := simplelru.NewLRU[K, V](size, onEvicted)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: engine}, nil
}

// SetLogger forwards miss logging to the underlying engine.
func (c *Cache[K, V]) SetLogger(logger *slog.Logger) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if engine, ok := c.lru.(*simplelru.LRU[K, V]); ok {
		engine.SetLogger(logger)
	}
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lru.Purge()
}

// Add stores value under key as the newest entry, replacing any previous
// entry for key. It reports whether the oldest entry had to make room.
func (c *Cache[K, V]) Add(key K, value V) (evicted bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Add(key, value)
}

// Get returns the value for key and moves the entry to the front. A miss
// leaves the order untouched.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Get(key)
}

// Contains reports whether key is cached. The order is not changed.
func (c *Cache[K, V]) Contains(key K) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lru.Contains(key)
}

// Peek is Get without the move to the front.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lru.Peek(key)
}

// ContainsOrAdd adds the pair only when key is absent, as one atomic step.
// A present key is not promoted.
func (c *Cache[K, V]) ContainsOrAdd(key K, value V) (ok, evicted bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.lru.Contains(key) {
		return true, false
	}
	return false, c.lru.Add(key, value)
}

// PeekOrAdd is ContainsOrAdd that also hands back the value already
// stored under key.
func (c *Cache[K, V]) PeekOrAdd(key K, value V) (previous V, ok, evicted bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if previous, ok = c.lru.Peek(key); ok {
		return previous, true, false
	}
	return previous, false, c.lru.Add(key, value)
}

// Remove deletes key and reports whether it was cached. The eviction
// callback is not fired.
func (c *Cache[K, V]) Remove(key K) (present bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Remove(key)
}

// GetOldest returns the entry next in line for eviction.
func (c *Cache[K, V]) GetOldest() (key K, value V, ok bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lru.GetOldest()
}

// RemoveOldest evicts the entry at the back of the list.
func (c *Cache[K, V]) RemoveOldest() (key K, value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.RemoveOldest()
}

// Resize changes the capacity, evicting from the back until the cache
// fits, and returns how many entries went. Zero selects
// simplelru.DefaultSize; a negative size is rejected and changes nothing,
// the same sizes New refuses.
func (c *Cache[K, V]) Resize(size int) (evicted int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Resize(size)
}

// Cap returns the capacity.
func (c *Cache[K, V]) Cap() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lru.Cap()
}

// Keys returns the keys in the cache, from newest to oldest.
func (c *Cache[K, V]) Keys() []K {
	c.lock.RLock()
	keys := c.lru.Keys()
	c.lock.RUnlock()
	return keys
}

// snapshot copies the entries under the read lock so callers can range over
// them without holding it.
func (c *Cache[K, V]) snapshot() []simplelru.Entry[K, V] {
	c.lock.RLock()
	defer c.lock.RUnlock()

	entries := make([]simplelru.Entry[K, V], 0, c.lru.Len())
	for e := range c.lru.All() {
		entries = append(entries, e)
	}
	return entries
}

// ForEach calls fn for each entry, newest first, until fn returns false.
// The entries are those present when ForEach was called.
func (c *Cache[K, V]) ForEach(fn func(e simplelru.Entry[K, V]) bool) {
	for _, e := range c.snapshot() {
		if !fn(e) {
			return
		}
	}
}

// All returns an iterator over a snapshot of the entries, newest first.
// The snapshot is taken each time iteration starts.
func (c *Cache[K, V]) All() iter.Seq[simplelru.Entry[K, V]] {
	return func(yield func(simplelru.Entry[K, V]) bool) {
		c.ForEach(yield)
	}
}

// Len returns the number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.lock.RLock()
	length := c.lru.Len()
	c.lock.RUnlock()
	return length
}
