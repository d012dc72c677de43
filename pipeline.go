package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/a2y-d5l/go-pipeline/buffer"
	"github.com/a2y-d5l/go-pipeline/item"
	"github.com/a2y-d5l/go-pipeline/stats"
	"github.com/a2y-d5l/go-pipeline/worker"
)

// State is the coordinator lifecycle: NotStarted -> Running -> Completed.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type producerSpec[T any] struct {
	id     string
	source []T
}

type consumerSpec[T any] struct {
	id   string
	sink worker.Sink[T]
}

// Coordinator owns the shared buffer, registers producers and consumers,
// launches them concurrently, and aggregates run statistics. It is safe for
// concurrent use.
//
// Shutdown follows a single mechanism: every producer enqueues one
// termination marker after its source, and Start tops the markers up to the
// consumer count, so every consumer is guaranteed to take exactly one marker
// and no worker can block forever.
type Coordinator[T any] struct {
	mu        sync.Mutex
	cfg       config
	log       *slog.Logger
	capacity  int
	producers []producerSpec[T]
	consumers []consumerSpec[T]

	buf   *buffer.Bounded[item.Envelope[T]]
	stats *stats.Collector

	// destMu serializes every consumer append; sinks are not assumed to be
	// thread-safe. It is never held across a buffer call.
	destMu sync.Mutex

	wg    sync.WaitGroup
	state State
}

// New creates a Coordinator whose buffer will hold at most capacity
// elements.
func New[T any](capacity int, opts ...Option) (*Coordinator[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = slog.Default()
	}

	return &Coordinator[T]{
		cfg:      cfg,
		log:      cfg.log,
		capacity: capacity,
		stats:    stats.NewCollector(),
	}, nil
}

// AddProducer registers a producer with its ordered source. The source may
// be empty; such a producer still contributes one termination marker.
// Registration is only allowed before Start.
func (c *Coordinator[T]) AddProducer(id string, source []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNotStarted {
		return ErrAlreadyStarted
	}
	if id == "" {
		return ErrEmptyWorkerID
	}
	for _, p := range c.producers {
		if p.id == id {
			return ErrDuplicateProducer
		}
	}

	c.producers = append(c.producers, producerSpec[T]{id: id, source: source})
	c.stats.RegisterProducer(id)
	return nil
}

// AddConsumer registers a consumer writing into sink. Multiple consumers may
// share one sink; their appends are serialized by the coordinator.
// Registration is only allowed before Start.
func (c *Coordinator[T]) AddConsumer(id string, sink worker.Sink[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNotStarted {
		return ErrAlreadyStarted
	}
	if id == "" {
		return ErrEmptyWorkerID
	}
	for _, spec := range c.consumers {
		if spec.id == id {
			return ErrDuplicateConsumer
		}
	}

	c.consumers = append(c.consumers, consumerSpec[T]{id: id, sink: sink})
	c.stats.RegisterConsumer(id)
	return nil
}

// Start constructs the buffer and launches one goroutine per registered
// producer and consumer. It is allowed once per instance and returns
// immediately.
//
// When fewer producers than consumers are registered, Start also launches a
// synthetic producer contributing the missing termination markers, so the
// total marker count always reaches the consumer count. Surplus markers
// (more producers than consumers) simply remain in the buffer.
func (c *Coordinator[T]) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNotStarted {
		return ErrAlreadyStarted
	}

	buf, err := buffer.New[item.Envelope[T]](c.capacity)
	if err != nil {
		return err
	}
	c.buf = buf

	for _, spec := range c.producers {
		var limiter *rate.Limiter
		if c.cfg.ProducerRateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(c.cfg.ProducerRateLimit), c.cfg.ProducerRateBurst)
		}
		p := worker.NewProducer(spec.id, spec.source, buf, c.stats, limiter, c.cfg.Metrics, c.log)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			p.Run()
		}()
	}

	for _, spec := range c.consumers {
		cons := worker.NewConsumer(spec.id, spec.sink, &c.destMu, buf, c.stats, c.cfg.Metrics, c.log)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			cons.Run()
		}()
	}

	// Top up the marker count to the consumer count. The injector behaves
	// like a zero-item producer: it must block on a full buffer like any
	// other worker, so it cannot run inline under the lock.
	extra := len(c.consumers) - len(c.producers)
	if extra > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for i := 0; i < extra; i++ {
				buf.Put(item.End[T]())
			}
			c.log.Debug("synthetic termination markers enqueued", slog.Int("count", extra))
		}()
	}

	c.state = StateRunning

	c.log.Info("pipeline started",
		slog.String("run_id", uuid.NewString()),
		slog.Int("capacity", c.capacity),
		slog.Int("producers", len(c.producers)),
		slog.Int("consumers", len(c.consumers)),
	)

	return nil
}

// Wait blocks until every producer and consumer goroutine has terminated,
// or until ctx is cancelled. Cancellation abandons the join only; workers
// are unaffected and a later Wait can still succeed.
func (c *Coordinator[T]) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateNotStarted {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StateCompleted
		c.cfg.Metrics.RunCompleted()

		snap := c.stats.Snapshot(c.buf.Len())
		c.log.Info("pipeline completed",
			slog.Int("total_produced", snap.TotalProduced),
			slog.Int("total_consumed", snap.TotalConsumed),
			slog.Int("buffer_len", snap.BufferLen),
		)
	}
	return nil
}

// Stats returns a consistent snapshot of the run counters plus the current
// buffer length. After Wait returns, the snapshot is final.
func (c *Coordinator[T]) Stats() stats.Snapshot {
	c.mu.Lock()
	buf := c.buf
	c.mu.Unlock()

	bufLen := 0
	if buf != nil {
		bufLen = buf.Len()
	}
	return c.stats.Snapshot(bufLen)
}

// State returns the current lifecycle state.
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
