package simplelru

import "golang.org/x/exp/slices"

// nilHandle marks a missing link or an empty end of the list.
const nilHandle = -1

// entry is a single slot of the arena. prev points toward the head (newer),
// next toward the tail (older).
type entry[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
	live  bool
}

// list is a doubly linked recency list whose nodes live in a slice and
// refer to each other by index. Vacated slots are recycled through free.
// head is the most recently used entry, tail the least recently used.
type list[K comparable, V any] struct {
	data []entry[K, V]
	free []int
	head int
	tail int
	size int
}

func newList[K comparable, V any](capacity int) *list[K, V] {
	return &list[K, V]{
		data: slices.Grow([]entry[K, V](nil), capacity),
		head: nilHandle,
		tail: nilHandle,
	}
}

// pushFront stores a new entry at the head and returns its handle.
func (l *list[K, V]) pushFront(key K, value V) int {
	ent := entry[K, V]{
		key:   key,
		value: value,
		prev:  nilHandle,
		next:  l.head,
		live:  true,
	}
	var h int
	if n := len(l.free); n > 0 {
		h = l.free[n-1]
		l.free = l.free[:n-1]
		l.data[h] = ent
	} else {
		h = len(l.data)
		l.data = append(l.data, ent)
	}
	if l.head == nilHandle {
		l.tail = h
	} else {
		l.data[l.head].prev = h
	}
	l.head = h
	l.size++
	return h
}

// remove splices the entry at h out of the list and returns a copy of it.
// The slot is zeroed so the list no longer retains the key or value.
func (l *list[K, V]) remove(h int) entry[K, V] {
	if h < 0 || h >= len(l.data) || !l.data[h].live {
		panic("simplelru: remove of unlinked entry")
	}
	ent := l.data[h]
	if ent.prev != nilHandle {
		l.data[ent.prev].next = ent.next
	} else {
		l.head = ent.next
	}
	if ent.next != nilHandle {
		l.data[ent.next].prev = ent.prev
	} else {
		l.tail = ent.prev
	}
	l.data[h] = entry[K, V]{}
	l.free = append(l.free, h)
	l.size--
	return ent
}

// reset drops every entry. The backing arrays are kept for reuse.
func (l *list[K, V]) reset() {
	clear(l.data)
	l.data = l.data[:0]
	l.free = l.free[:0]
	l.head = nilHandle
	l.tail = nilHandle
	l.size = 0
}
