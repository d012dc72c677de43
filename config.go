package pipeline

import (
	"log/slog"

	"github.com/a2y-d5l/go-pipeline/metric"
)

// config holds all tunables for the Coordinator (via functional options).
type config struct {
	// Producer pacing. Zero disables throttling; each producer gets its
	// own token bucket so one slow producer cannot starve the others.
	ProducerRateLimit float64
	ProducerRateBurst int

	// Observability
	Metrics *metric.Metrics
	log     *slog.Logger
}

func defaultConfig() config {
	return config{
		ProducerRateLimit: 0, // unthrottled
		ProducerRateBurst: 1,
	}
}
