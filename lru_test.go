package lru

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/bpowers/lru/simplelru"
	"github.com/stretchr/testify/require"
)

type traceEntry struct {
	k string
	v int
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(rand.Int63()))
}

func makeTrace(n int) []traceEntry {
	rng := newRand()
	trace := make([]traceEntry, n)
	for i := range trace {
		k := rng.Intn(n/2 + 1)
		trace[i] = traceEntry{k: fmt.Sprintf("key-%d", k), v: k}
	}
	return trace
}

func TestCache(t *testing.T) {
	var evicted []int
	l, err := NewWithEvict(2, func(k, v int) {
		evicted = append(evicted, k)
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	l.Add(1, 10)
	l.Add(2, 20)
	if v, ok := l.Get(1); !ok || v != 10 {
		t.Fatalf("1 should be 10: %v, %v", v, ok)
	}
	if !l.Add(3, 30) {
		t.Fatalf("should have an eviction")
	}
	if len(evicted) != 1 || evicted[0] != 2 {
		t.Fatalf("2 should have been evicted: %v", evicted)
	}
	if keys := l.Keys(); len(keys) != 2 || keys[0] != 3 || keys[1] != 1 {
		t.Fatalf("bad order: %v", keys)
	}

	if ok, _ := l.ContainsOrAdd(1, 11); !ok {
		t.Errorf("1 should be contained")
	}
	if prev, ok, evict := l.PeekOrAdd(4, 40); ok || !evict || prev != 0 {
		t.Errorf("4 should have been added with an eviction: %v %v %v", prev, ok, evict)
	}
	if !l.Remove(4) || l.Remove(4) {
		t.Errorf("Remove should report presence once")
	}

	l.Purge()
	if l.Len() != 0 {
		t.Fatalf("bad len: %v", l.Len())
	}
}

func TestCacheInvalidSize(t *testing.T) {
	_, err := New[string, string](-3)
	require.ErrorIs(t, err, simplelru.ErrInvalidSize)
}

func TestCacheSnapshotIteration(t *testing.T) {
	l, err := New[string, int](0)
	require.NoError(t, err)

	for i, k := range []string{"a", "b", "c"} {
		l.Add(k, i)
	}

	var keys []string
	for e := range l.All() {
		keys = append(keys, e.Key)
		// Mutating while ranging over a snapshot is allowed.
		l.Add(e.Key+e.Key, e.Value)
	}
	require.Equal(t, []string{"c", "b", "a"}, keys)
	require.Equal(t, 6, l.Len())

	var first simplelru.Entry[string, int]
	l.ForEach(func(e simplelru.Entry[string, int]) bool {
		first = e
		return false
	})
	require.Equal(t, "aa", first.Key)
	require.Equal(t, 0, first.Pos)
}

func TestCacheResize(t *testing.T) {
	l, err := New[int, int](4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		l.Add(i, i)
	}

	require.Zero(t, l.Resize(-2))
	require.Equal(t, 4, l.Cap())
	require.Equal(t, 4, l.Len())

	require.Equal(t, 2, l.Resize(2))
	require.Equal(t, []int{3, 2}, l.Keys())

	k, _, ok := l.GetOldest()
	require.True(t, ok)
	require.Equal(t, 2, k)
	k, _, ok = l.RemoveOldest()
	require.True(t, ok)
	require.Equal(t, 2, k)
	require.Equal(t, []int{3}, l.Keys())

	var logs bytes.Buffer
	l.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	_, ok = l.Get(99)
	require.False(t, ok)
	require.Contains(t, logs.String(), "key=99")
}

func TestCacheConcurrent(t *testing.T) {
	l, err := New[int, int](64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				k := (g*1000 + i) % 200
				l.Add(k, k)
				if v, ok := l.Get(k); ok && v != k {
					t.Errorf("bad value for %d: %d", k, v)
				}
			}
		}(g)
	}
	wg.Wait()

	require.LessOrEqual(t, l.Len(), 64)
	require.Len(t, l.Keys(), l.Len())
}

func BenchmarkLRU_Big(b *testing.B) {
	l, err := New[string, int](128 * 1024)
	if err != nil {
		b.Fatalf("err: %v", err)
	}

	trace := makeTrace(b.N * 2)

	b.ResetTimer()

	b.ReportAllocs()
	var hit, miss int
	for i := 0; i < 2*b.N; i++ {
		t := trace[i]
		if i%2 == 0 {
			l.Add(t.k, t.v)
		} else {
			if _, ok := l.Get(t.k); ok {
				hit++
			} else {
				miss++
			}
		}
	}
	b.Logf("hit: %d miss: %d ratio: %f", hit, miss, float64(hit)/float64(miss))
}
