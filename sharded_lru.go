package lru

import (
	"context"
	"hash/maphash"
	"sync"

	"github.com/bpowers/lru/simplelru"
	"golang.org/x/sync/singleflight"
)

const defaultShardCount = 256

type shard[V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, V]
}

// ShardedCache is a thread-safe fixed size LRU cache that spreads keys over
// independently locked shards. Recency is tracked per shard.
type ShardedCache[V any] struct {
	seed   maphash.Seed
	shards []shard[V]
	size   int
	loads  singleflight.Group
}

// NewSharded creates a sharded LRU of the given total size.
func NewSharded[V any](size, shardCount int) (*ShardedCache[V], error) {
	return NewShardedWithEvict[V](size, shardCount, nil)
}

// NewShardedWithEvict constructs a sharded cache with the given eviction
// callback. The size is rounded down to a multiple of the shard count, and
// every shard holds at least one entry.
func NewShardedWithEvict[V any](size, shardCount int, onEvicted func(key string, value V)) (*ShardedCache[V], error) {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	if size < shardCount {
		size = shardCount
	}
	perShardSize := size / shardCount
	size = perShardSize * shardCount
	c := &ShardedCache[V]{
		seed:   maphash.MakeSeed(),
		shards: make([]shard[V], shardCount),
		size:   size,
	}
	for i := 0; i < shardCount; i++ {
		lru, err := simplelru.NewLRU[string, V](perShardSize, onEvicted)
		if err != nil {
			return nil, err
		}
		c.shards[i].lru = lru
	}
	return c, nil
}

// Purge is used to completely clear the cache.
func (c *ShardedCache[V]) Purge() {
	for i := 0; i < len(c.shards); i++ {
		shard := &c.shards[i]
		shard.mu.Lock()
		shard.lru.Purge()
		shard.mu.Unlock()
	}
}

func (c *ShardedCache[V]) getShard(key string) *shard[V] {
	shardId := maphash.String(c.seed, key) % uint64(len(c.shards))
	return &c.shards[shardId]
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *ShardedCache[V]) Add(key string, value V) (evicted bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.lru.Add(key, value)
}

// Get looks up a key's value from the cache.
func (c *ShardedCache[V]) Get(key string) (value V, ok bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.lru.Get(key)
}

// Contains checks if a key is in the cache, without updating the
// recent-ness or deleting it for being stale.
func (c *ShardedCache[V]) Contains(key string) bool {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.lru.Contains(key)
}

// Peek returns the key value (or undefined if not found) without updating
// the "recently used"-ness of the key.
func (c *ShardedCache[V]) Peek(key string) (value V, ok bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.lru.Peek(key)
}

// ContainsOrAdd checks if a key is in the cache without updating the
// recent-ness or deleting it for being stale, and if not, adds the value.
// Returns whether found and whether an eviction occurred.
func (c *ShardedCache[V]) ContainsOrAdd(key string, value V) (ok, evicted bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if shard.lru.Contains(key) {
		return true, false
	}
	evicted = shard.lru.Add(key, value)
	return false, evicted
}

// Remove removes the provided key from the cache.
func (c *ShardedCache[V]) Remove(key string) (present bool) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.lru.Remove(key)
}

// GetOrLoad returns the cached value for key, calling load to fill it on a
// miss. Concurrent callers missing on the same key share a single load,
// which runs detached from any one caller's cancellation; each caller stops
// waiting when its own ctx is done. Load errors are returned and nothing is
// cached.
func (c *ShardedCache[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	ch := c.loads.DoChan(key, func() (interface{}, error) {
		// Another caller may have finished loading while we waited.
		if value, ok := c.Peek(key); ok {
			return value, nil
		}
		value, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Add(key, value)
		return value, nil
	})
	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		// A nil interface value comes back untyped.
		value, _ := res.Val.(V)
		return value, nil
	}
}

// we don't support resize

// Len returns the number of items in the cache.
func (c *ShardedCache[V]) Len() int {
	size := 0
	for i := 0; i < len(c.shards); i++ {
		shard := &c.shards[i]
		shard.mu.Lock()
		size += shard.lru.Len()
		shard.mu.Unlock()
	}
	return size
}

// Cap returns the total number of entries the cache can hold.
func (c *ShardedCache[V]) Cap() int {
	return c.size
}
