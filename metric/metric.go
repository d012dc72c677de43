// Package metric provides Prometheus instrumentation for pipeline runs.
//
// Metrics are optional: a nil *Metrics is a valid no-op recorder, so the
// coordinator and workers record unconditionally.
package metric

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Worker roles used as the "role" label on ActiveWorkers.
const (
	RoleProducer = "producer"
	RoleConsumer = "consumer"
)

// Metrics groups all pipeline-level Prometheus collectors.
type Metrics struct {
	ItemsProduced *prometheus.CounterVec
	ItemsConsumed *prometheus.CounterVec
	BufferDepth   prometheus.Gauge
	ActiveWorkers *prometheus.GaugeVec
	RunsCompleted prometheus.Counter
}

// NewMetrics creates all pipeline metrics. Call Register to attach them to
// a Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ItemsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline",
				Subsystem: "items",
				Name:      "produced_total",
				Help:      "Total number of items placed into the buffer",
			},
			[]string{"producer"},
		),

		ItemsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline",
				Subsystem: "items",
				Name:      "consumed_total",
				Help:      "Total number of items stored by consumers",
			},
			[]string{"consumer"},
		),

		BufferDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pipeline",
				Subsystem: "buffer",
				Name:      "depth",
				Help:      "Current number of elements in the shared buffer",
			},
		),

		ActiveWorkers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pipeline",
				Subsystem: "workers",
				Name:      "active",
				Help:      "Number of running worker goroutines",
			},
			[]string{"role"},
		),

		RunsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pipeline",
				Subsystem: "runs",
				Name:      "completed_total",
				Help:      "Total number of pipeline runs that reached completion",
			},
		),
	}
}

// Register attaches every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.ItemsProduced,
		m.ItemsConsumed,
		m.BufferDepth,
		m.ActiveWorkers,
		m.RunsCompleted,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register pipeline metric: %w", err)
		}
	}
	return nil
}

// RecordProduced counts one produced item for the given producer.
func (m *Metrics) RecordProduced(producer string) {
	if m == nil {
		return
	}
	m.ItemsProduced.WithLabelValues(producer).Inc()
}

// RecordConsumed counts one consumed item for the given consumer.
func (m *Metrics) RecordConsumed(consumer string) {
	if m == nil {
		return
	}
	m.ItemsConsumed.WithLabelValues(consumer).Inc()
}

// SetBufferDepth records the current buffer length.
func (m *Metrics) SetBufferDepth(n int) {
	if m == nil {
		return
	}
	m.BufferDepth.Set(float64(n))
}

// WorkerStarted increments the active gauge for the given role.
func (m *Metrics) WorkerStarted(role string) {
	if m == nil {
		return
	}
	m.ActiveWorkers.WithLabelValues(role).Inc()
}

// WorkerStopped decrements the active gauge for the given role.
func (m *Metrics) WorkerStopped(role string) {
	if m == nil {
		return
	}
	m.ActiveWorkers.WithLabelValues(role).Dec()
}

// RunCompleted counts one completed pipeline run.
func (m *Metrics) RunCompleted() {
	if m == nil {
		return
	}
	m.RunsCompleted.Inc()
}
