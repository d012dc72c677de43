package worker

import (
	"log/slog"
	"sync"

	"github.com/a2y-d5l/go-pipeline/buffer"
	"github.com/a2y-d5l/go-pipeline/item"
	"github.com/a2y-d5l/go-pipeline/metric"
	"github.com/a2y-d5l/go-pipeline/stats"
)

// Consumer drains the shared buffer into a sink until it takes exactly one
// termination marker, which it does not re-insert.
type Consumer[T any] struct {
	id      string
	sink    Sink[T]
	sinkMu  *sync.Mutex
	buf     *buffer.Bounded[item.Envelope[T]]
	stats   *stats.Collector
	metrics *metric.Metrics
	log     *slog.Logger
}

// NewConsumer creates a consumer. sinkMu is the lock shared by every
// consumer writing to a destination; metrics may be nil.
func NewConsumer[T any](
	id string,
	sink Sink[T],
	sinkMu *sync.Mutex,
	buf *buffer.Bounded[item.Envelope[T]],
	st *stats.Collector,
	metrics *metric.Metrics,
	log *slog.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		id:      id,
		sink:    sink,
		sinkMu:  sinkMu,
		buf:     buf,
		stats:   st,
		metrics: metrics,
		log:     log,
	}
}

// ID returns the consumer's identity.
func (c *Consumer[T]) ID() string { return c.id }

// Run blocks until a termination marker is consumed. The sink lock is never
// held across a buffer call.
func (c *Consumer[T]) Run() {
	c.metrics.WorkerStarted(metric.RoleConsumer)
	defer c.metrics.WorkerStopped(metric.RoleConsumer)

	consumed := 0
	for {
		env := c.buf.Take()
		c.metrics.SetBufferDepth(c.buf.Len())

		if env.IsEnd() {
			break
		}

		c.sinkMu.Lock()
		c.sink.Append(env.Value())
		c.sinkMu.Unlock()

		c.stats.AddConsumed(c.id)
		c.metrics.RecordConsumed(c.id)
		consumed++
	}

	c.log.Debug("consumer finished",
		slog.String("consumer_id", c.id),
		slog.Int("items", consumed),
	)
}
