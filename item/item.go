// Package item defines the element type that flows through a pipeline
// buffer: either a payload item or an explicit end-of-stream marker.
//
// The marker is a distinct tagged state rather than an overloaded payload
// value, so any payload — including zero values and nil pointers — remains
// a legitimate item.
package item

// Envelope wraps a single buffer element. The zero Envelope carries the
// zero payload and is not a marker; markers are created only by End.
type Envelope[T any] struct {
	value T
	end   bool
}

// Of wraps a payload item.
func Of[T any](v T) Envelope[T] {
	return Envelope[T]{value: v}
}

// End returns the end-of-stream marker. A consumer that receives it must
// terminate without re-inserting it.
func End[T any]() Envelope[T] {
	return Envelope[T]{end: true}
}

// Value returns the payload. For a marker it returns the zero value.
func (e Envelope[T]) Value() T {
	return e.value
}

// IsEnd reports whether the envelope is the end-of-stream marker.
func (e Envelope[T]) IsEnd() bool {
	return e.end
}
