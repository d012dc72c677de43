// Package worker contains the producer and consumer goroutine bodies that a
// coordinator launches around one shared bounded buffer.
package worker

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/a2y-d5l/go-pipeline/buffer"
	"github.com/a2y-d5l/go-pipeline/item"
	"github.com/a2y-d5l/go-pipeline/metric"
	"github.com/a2y-d5l/go-pipeline/stats"
)

// Producer drains a finite source into the shared buffer in source order,
// then emits exactly one termination marker. It never reads the buffer.
type Producer[T any] struct {
	id      string
	source  []T
	buf     *buffer.Bounded[item.Envelope[T]]
	stats   *stats.Collector
	limiter *rate.Limiter
	metrics *metric.Metrics
	log     *slog.Logger
}

// NewProducer creates a producer. limiter and metrics may be nil.
func NewProducer[T any](
	id string,
	source []T,
	buf *buffer.Bounded[item.Envelope[T]],
	st *stats.Collector,
	limiter *rate.Limiter,
	metrics *metric.Metrics,
	log *slog.Logger,
) *Producer[T] {
	return &Producer[T]{
		id:      id,
		source:  source,
		buf:     buf,
		stats:   st,
		limiter: limiter,
		metrics: metrics,
		log:     log,
	}
}

// ID returns the producer's identity.
func (p *Producer[T]) ID() string { return p.id }

// Run blocks until every source item and the trailing marker have been
// accepted by the buffer. An empty source still emits its marker.
func (p *Producer[T]) Run() {
	p.metrics.WorkerStarted(metric.RoleProducer)
	defer p.metrics.WorkerStopped(metric.RoleProducer)

	for _, v := range p.source {
		if p.limiter != nil {
			// Background context: producers have no cancellation path,
			// they terminate by exhausting their source.
			_ = p.limiter.Wait(context.Background())
		}
		p.buf.Put(item.Of(v))
		p.stats.AddProduced(p.id)
		p.metrics.RecordProduced(p.id)
		p.metrics.SetBufferDepth(p.buf.Len())
	}

	p.buf.Put(item.End[T]())
	p.metrics.SetBufferDepth(p.buf.Len())

	p.log.Debug("producer finished",
		slog.String("producer_id", p.id),
		slog.Int("items", len(p.source)),
	)
}
