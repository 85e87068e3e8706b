// Package simplelru provides a simple, non-thread safe LRU cache built on a
// doubly linked list stored in a slice and indexed by key.
package simplelru

import "iter"

// LRUCache is the interface for simple LRU cache.
type LRUCache[K comparable, V any] interface {
	// Adds a value to the cache, returns true if an eviction occurred and
	// updates the "recently used"-ness of the key.
	Add(key K, value V) bool

	// Returns key's value from the cache and
	// updates the "recently used"-ness of the key. #value, isFound
	Get(key K) (value V, ok bool)

	// Checks if a key exists in cache without updating the recent-ness.
	Contains(key K) (ok bool)

	// Returns key's value without updating the "recently used"-ness of the key.
	Peek(key K) (value V, ok bool)

	// Removes a key from the cache.
	Remove(key K) bool

	// Removes the oldest entry from cache.
	RemoveOldest() (K, V, bool)

	// Returns the oldest entry from the cache. #key, value, isFound
	GetOldest() (K, V, bool)

	// Returns a slice of the keys in the cache, from newest to oldest.
	Keys() []K

	// Calls fn for each entry from newest to oldest until fn returns false.
	ForEach(fn func(e Entry[K, V]) bool)

	// Iterates over the entries from newest to oldest.
	All() iter.Seq[Entry[K, V]]

	// Returns the number of items in the cache.
	Len() int

	// Returns the capacity of the cache.
	Cap() int

	// Clears all cache entries.
	Purge()

	// Resizes cache, returning number evicted. Negative sizes are ignored.
	Resize(int) int
}
