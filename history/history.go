// Package history provides the bounded FIFO buffers that hold recent
// feature frames and onset strengths. Eviction is strict FIFO and
// pushing is always valid; callers size the buffer once at creation.
package history

// Buffer is a fixed-capacity ring. Push is O(1); Snapshot copies the
// contents oldest-first so callers can never observe later mutation.
type Buffer[T any] struct {
	items []T
	head  int
	size  int
}

func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends item, evicting the oldest entry once capacity is exceeded.
func (b *Buffer[T]) Push(item T) {
	tail := (b.head + b.size) % len(b.items)
	b.items[tail] = item
	if b.size < len(b.items) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.items)
	}
}

func (b *Buffer[T]) Len() int {
	return b.size
}

func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Last returns the most recently pushed item, if any.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[(b.head+b.size-1)%len(b.items)], true
}

// Snapshot returns a copy of the contents, most-recent last.
func (b *Buffer[T]) Snapshot() []T {
	out := make([]T, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}
