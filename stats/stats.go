// Package stats aggregates per-worker counters for a pipeline run.
package stats

import "sync"

// Collector accumulates produced/consumed counts across concurrent workers.
// All fields are guarded by one mutex; there is no package-level state.
type Collector struct {
	mu             sync.Mutex
	totalProduced  int
	totalConsumed  int
	perProducer    map[string]int
	perConsumer    map[string]int
	destinationLen int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		perProducer: make(map[string]int),
		perConsumer: make(map[string]int),
	}
}

// RegisterProducer ensures the producer appears in snapshots even when its
// source is empty.
func (c *Collector) RegisterProducer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.perProducer[id]; !ok {
		c.perProducer[id] = 0
	}
}

// RegisterConsumer ensures the consumer appears in snapshots even when it
// consumes nothing.
func (c *Collector) RegisterConsumer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.perConsumer[id]; !ok {
		c.perConsumer[id] = 0
	}
}

// AddProduced records one item emitted by the given producer. Termination
// markers are not counted.
func (c *Collector) AddProduced(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalProduced++
	c.perProducer[id]++
}

// AddConsumed records one item stored by the given consumer.
func (c *Collector) AddConsumed(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalConsumed++
	c.perConsumer[id]++
	c.destinationLen++
}

// Snapshot returns a consistent copy of all counters. bufferLen is supplied
// by the caller so the buffer's lock is never taken while holding ours.
func (c *Collector) Snapshot(bufferLen int) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		TotalProduced:  c.totalProduced,
		TotalConsumed:  c.totalConsumed,
		PerProducer:    make(map[string]int, len(c.perProducer)),
		PerConsumer:    make(map[string]int, len(c.perConsumer)),
		DestinationLen: c.destinationLen,
		BufferLen:      bufferLen,
	}
	for id, n := range c.perProducer {
		s.PerProducer[id] = n
	}
	for id, n := range c.perConsumer {
		s.PerConsumer[id] = n
	}
	return s
}

// Snapshot is an immutable view of the counters at one instant.
type Snapshot struct {
	TotalProduced  int
	TotalConsumed  int
	PerProducer    map[string]int
	PerConsumer    map[string]int
	DestinationLen int
	BufferLen      int
}
