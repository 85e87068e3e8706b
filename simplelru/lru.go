package simplelru

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
)

// DefaultSize is the capacity used when NewLRU is given a size of zero.
const DefaultSize = 10

// ErrInvalidSize is returned when a cache is constructed with a negative size.
var ErrInvalidSize = errors.New("must provide a positive size")

// EvictCallback is used to get a callback when a cache entry is evicted
type EvictCallback[K comparable, V any] func(key K, value V)

// Entry is a read-only view of a cached pair handed out during traversal.
// Pos is the distance from the most recently used entry, starting at 0.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
	Pos   int
}

// LRU implements a non-thread safe fixed size LRU cache
type LRU[K comparable, V any] struct {
	list    *list[K, V]
	items   map[K]int
	size    int
	onEvict EvictCallback[K, V]
	logger  *slog.Logger
}

// NewLRU constructs an LRU of the given size. A size of zero selects
// DefaultSize.
func NewLRU[K comparable, V any](size int, onEvict EvictCallback[K, V]) (*LRU[K, V], error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		size = DefaultSize
	}
	c := &LRU[K, V]{
		list:    newList[K, V](size),
		items:   make(map[K]int, size),
		size:    size,
		onEvict: onEvict,
	}
	return c, nil
}

// SetLogger installs a logger that records cache misses at debug level.
// A nil logger disables miss logging.
func (c *LRU[K, V]) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Purge is used to completely clear the cache.
func (c *LRU[K, V]) Purge() {
	if c.onEvict != nil {
		for h := c.list.head; h != nilHandle; h = c.list.data[h].next {
			ent := &c.list.data[h]
			c.onEvict(ent.key, ent.value)
		}
	}
	c.list.reset()
	c.items = make(map[K]int, c.size)
}

// Add adds a value to the cache as the most recently used entry. An existing
// entry for key is replaced. Returns true if an eviction occurred.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	if h, ok := c.items[key]; ok {
		c.removeElement(h)
	}
	return c.write(key, value)
}

// Get looks up a key's value from the cache and marks it as the most
// recently used entry.
func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	if h, ok := c.items[key]; ok {
		ent := c.removeElement(h)
		c.write(ent.key, ent.value)
		return ent.value, true
	}
	if c.logger != nil {
		c.logger.Debug("Item not available in cache", "key", key)
	}
	return value, false
}

// Contains checks if a key is in the cache, without updating the recent-ness
// or deleting it for being stale.
func (c *LRU[K, V]) Contains(key K) (ok bool) {
	_, ok = c.items[key]
	return ok
}

// Peek returns the key value (or undefined if not found) without updating
// the "recently used"-ness of the key.
func (c *LRU[K, V]) Peek(key K) (value V, ok bool) {
	if h, ok := c.items[key]; ok {
		return c.list.data[h].value, true
	}
	return value, false
}

// Remove removes the provided key from the cache, returning if the
// key was contained.
func (c *LRU[K, V]) Remove(key K) (present bool) {
	if h, ok := c.items[key]; ok {
		c.removeElement(h)
		return true
	}
	return false
}

// RemoveOldest removes the least recently used entry from the cache.
func (c *LRU[K, V]) RemoveOldest() (key K, value V, ok bool) {
	return c.removeOldest()
}

// GetOldest returns the least recently used entry without promoting it.
func (c *LRU[K, V]) GetOldest() (key K, value V, ok bool) {
	if c.list.tail == nilHandle {
		return key, value, false
	}
	ent := &c.list.data[c.list.tail]
	return ent.key, ent.value, true
}

// Keys returns the keys in the cache, from newest to oldest.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.list.size)
	for h := c.list.head; h != nilHandle; h = c.list.data[h].next {
		keys = append(keys, c.list.data[h].key)
	}
	return keys
}

// ForEach calls fn for every entry from newest to oldest until fn returns
// false. fn must not modify the cache.
func (c *LRU[K, V]) ForEach(fn func(e Entry[K, V]) bool) {
	pos := 0
	for h := c.list.head; h != nilHandle; h = c.list.data[h].next {
		ent := &c.list.data[h]
		if !fn(Entry[K, V]{Key: ent.key, Value: ent.value, Pos: pos}) {
			return
		}
		pos++
	}
}

// All returns an iterator over the entries from newest to oldest. Each call
// starts a fresh walk from the most recently used entry. The cache must not
// be modified while the iterator is running.
func (c *LRU[K, V]) All() iter.Seq[Entry[K, V]] {
	return func(yield func(Entry[K, V]) bool) {
		c.ForEach(yield)
	}
}

// Len returns the number of items in the cache.
func (c *LRU[K, V]) Len() int {
	return c.list.size
}

// Cap returns the maximum number of items the cache holds.
func (c *LRU[K, V]) Cap() int {
	return c.size
}

// Resize changes the cache size, evicting the oldest entries that no longer
// fit. Sizes are validated like NewLRU: zero selects DefaultSize and a
// negative size is rejected, leaving the cache unchanged and returning 0.
func (c *LRU[K, V]) Resize(size int) (evicted int) {
	if size < 0 {
		return 0
	}
	if size == 0 {
		size = DefaultSize
	}
	for c.list.size > size {
		c.removeOldest()
		evicted++
	}
	c.size = size

	// Rebuild the arena so a shrunk cache releases its slots.
	old := c.list
	c.list = newList[K, V](size)
	for h := old.tail; h != nilHandle; h = old.data[h].prev {
		ent := &old.data[h]
		c.items[ent.key] = c.list.pushFront(ent.key, ent.value)
	}
	return evicted
}

// write places a new entry at the head, evicting the oldest entry first when
// the cache is full.
func (c *LRU[K, V]) write(key K, value V) (evicted bool) {
	if c.list.size >= c.size {
		_, _, evicted = c.removeOldest()
	}
	c.items[key] = c.list.pushFront(key, value)
	return evicted
}

// removeOldest evicts the tail entry, looked up by its key.
func (c *LRU[K, V]) removeOldest() (key K, value V, ok bool) {
	if c.list.tail == nilHandle {
		return key, value, false
	}
	h, ok := c.items[c.list.data[c.list.tail].key]
	if !ok || h != c.list.tail {
		panic("simplelru: index out of sync with recency list")
	}
	ent := c.removeElement(h)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
	return ent.key, ent.value, true
}

// removeElement is used to remove a given list element from the cache
func (c *LRU[K, V]) removeElement(h int) entry[K, V] {
	ent := c.list.remove(h)
	delete(c.items, ent.key)
	return ent
}
