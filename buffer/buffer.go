// Package buffer provides a blocking bounded FIFO shared by concurrent
// producers and consumers.
package buffer

import (
	"errors"
	"sync"
)

// ErrInvalidCapacity indicates a non-positive buffer capacity.
var ErrInvalidCapacity = errors.New("buffer capacity must be positive")

// Bounded is a thread-safe FIFO with a fixed capacity. Put blocks while the
// buffer is full and Take blocks while it is empty; neither call can be
// cancelled. Shutdown is signalled through the data itself (see the item
// package), never by interrupting a blocked call.
type Bounded[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    []T
	capacity int
}

// New creates a bounded buffer with the given capacity.
func New[T any](capacity int) (*Bounded[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	b := &Bounded[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)
	return b, nil
}

// Put appends v at the tail, blocking until space is available. Safe for
// concurrent use by any number of producers; a single caller's inserts are
// never reordered or dropped.
func (b *Bounded[T]) Put(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) == b.capacity {
		b.notFull.Wait()
	}

	b.items = append(b.items, v)
	b.notEmpty.Signal()
}

// Take removes and returns the head, blocking until an element is available.
func (b *Bounded[T]) Take() T {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) == 0 {
		b.notEmpty.Wait()
	}

	v := b.items[0]
	var zero T
	b.items[0] = zero
	b.items = b.items[1:]
	if len(b.items) == 0 {
		// Reclaim the backing array once the window has drained.
		b.items = make([]T, 0, b.capacity)
	}
	b.notFull.Signal()
	return v
}

// Len returns the current number of buffered elements.
func (b *Bounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Cap returns the fixed capacity.
func (b *Bounded[T]) Cap() int {
	return b.capacity
}
