package pipeline

import (
	"log/slog"

	"github.com/a2y-d5l/go-pipeline/metric"
)

// Option configures the Coordinator.
type Option func(*config)

// WithLogger injects a slog logger.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.log = l } }

// WithMetrics attaches Prometheus metrics. Without it, nothing is recorded.
func WithMetrics(m *metric.Metrics) Option { return func(c *config) { c.Metrics = m } }

// WithProducerRateLimit throttles each producer to perSecond sustained
// inserts with the given burst. Zero perSecond disables throttling; burst
// values below 1 are raised to 1.
func WithProducerRateLimit(perSecond float64, burst int) Option {
	return func(c *config) {
		c.ProducerRateLimit = perSecond
		if burst < 1 {
			burst = 1
		}
		c.ProducerRateBurst = burst
	}
}
