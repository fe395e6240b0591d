// ABOUTME: Fixed-capacity ring of recent values for now-playing history
// ABOUTME: Overwrites the oldest entry once full
package ring

import "sync"

type Buffer[T any] struct {
	items []T
	start int // index of the oldest entry
	n     int // entries stored
	mu    sync.Mutex
}

// New returns a ring holding up to size entries. Sizes below one are
// raised to one.
func New[T any](size int) *Buffer[T] {
	if size < 1 {
		size = 1
	}
	return &Buffer[T]{items: make([]T, size)}
}

func (b *Buffer[T]) Push(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.n < len(b.items) {
		b.items[(b.start+b.n)%len(b.items)] = v
		b.n++
		return
	}

	b.items[b.start] = v
	b.start = (b.start + 1) % len(b.items)
}

// Last returns the newest entry.
func (b *Buffer[T]) Last() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if b.n == 0 {
		return zero, false
	}
	return b.items[(b.start+b.n-1)%len(b.items)], true
}

func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Snapshot copies the entries out, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]T, b.n)
	for i := 0; i < b.n; i++ {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}
