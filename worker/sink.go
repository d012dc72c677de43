package worker

// Sink is an append-only destination for consumed items. Implementations
// are not required to be thread-safe; consumers sharing a sink serialize
// their appends through a mutex owned by the coordinator.
type Sink[T any] interface {
	Append(v T)
}

// SliceSink collects items into a slice. It is intentionally not
// thread-safe, mirroring a plain destination container whose writes must be
// externally synchronized.
type SliceSink[T any] struct {
	items []T
}

// NewSliceSink returns an empty SliceSink.
func NewSliceSink[T any]() *SliceSink[T] {
	return &SliceSink[T]{}
}

// Append adds v to the end of the slice.
func (s *SliceSink[T]) Append(v T) {
	s.items = append(s.items, v)
}

// Len returns the number of stored items.
func (s *SliceSink[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the stored items in append order. Only call it
// once the pipeline has completed, or while holding the same lock the
// consumers append under.
func (s *SliceSink[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
