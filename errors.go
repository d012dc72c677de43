package pipeline

import "errors"

// Configuration errors, surfaced synchronously at the violating call and
// always before any worker is launched.
var (
	// ErrInvalidCapacity indicates a non-positive buffer capacity.
	ErrInvalidCapacity = errors.New("capacity must be positive")
	// ErrEmptyWorkerID indicates a producer or consumer id was empty.
	ErrEmptyWorkerID = errors.New("worker id must not be empty")
	// ErrDuplicateProducer indicates the producer id is already registered.
	ErrDuplicateProducer = errors.New("duplicate producer id")
	// ErrDuplicateConsumer indicates the consumer id is already registered.
	ErrDuplicateConsumer = errors.New("duplicate consumer id")
)

// Lifecycle errors.
var (
	// ErrAlreadyStarted indicates Start was called twice, or a registration
	// arrived after Start.
	ErrAlreadyStarted = errors.New("pipeline already started")
	// ErrNotStarted indicates Wait was called before Start.
	ErrNotStarted = errors.New("pipeline not started")
)
