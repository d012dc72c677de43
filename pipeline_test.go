package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/go-pipeline/metric"
	"github.com/a2y-d5l/go-pipeline/worker"
)

func items(from, to int) []string {
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, fmt.Sprintf("Item-%d", i))
	}
	return out
}

func runToCompletion[T any](t *testing.T, c *Coordinator[T]) {
	t.Helper()
	require.NoError(t, c.Start())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestCoordinator_TwoProducersTwoConsumers(t *testing.T) {
	coord, err := New[string](10)
	require.NoError(t, err)

	dest := worker.NewSliceSink[string]()
	require.NoError(t, coord.AddProducer("producer-a", items(0, 25)))
	require.NoError(t, coord.AddProducer("producer-b", items(25, 50)))
	require.NoError(t, coord.AddConsumer("consumer-1", dest))
	require.NoError(t, coord.AddConsumer("consumer-2", dest))

	runToCompletion(t, coord)

	snap := coord.Stats()
	assert.Equal(t, 50, snap.TotalProduced)
	assert.Equal(t, 50, snap.TotalConsumed)
	assert.Equal(t, 25, snap.PerProducer["producer-a"])
	assert.Equal(t, 25, snap.PerProducer["producer-b"])
	assert.Equal(t, 50, snap.PerConsumer["consumer-1"]+snap.PerConsumer["consumer-2"])
	assert.Equal(t, 50, snap.DestinationLen)
	assert.Equal(t, 0, snap.BufferLen)
	assert.Equal(t, 50, dest.Len())

	got := make(map[string]bool, 50)
	for _, v := range dest.Items() {
		assert.False(t, got[v], "duplicate item %s", v)
		got[v] = true
	}
	for _, v := range items(0, 50) {
		assert.True(t, got[v], "missing item %s", v)
	}
}

func TestCoordinator_EmptySource(t *testing.T) {
	coord, err := New[string](4)
	require.NoError(t, err)

	dest := worker.NewSliceSink[string]()
	require.NoError(t, coord.AddProducer("producer-a", nil))
	require.NoError(t, coord.AddConsumer("consumer-1", dest))

	runToCompletion(t, coord)

	snap := coord.Stats()
	assert.Equal(t, 0, snap.TotalProduced)
	assert.Equal(t, 0, snap.TotalConsumed)
	assert.Equal(t, 0, snap.PerProducer["producer-a"])
	assert.Equal(t, 0, dest.Len())
	assert.Equal(t, 0, snap.BufferLen)
}

func TestCoordinator_ZeroProducers(t *testing.T) {
	coord, err := New[int](2)
	require.NoError(t, err)

	dest := worker.NewSliceSink[int]()
	for i := 1; i <= 3; i++ {
		require.NoError(t, coord.AddConsumer(fmt.Sprintf("consumer-%d", i), dest))
	}

	// The coordinator must inject one marker per consumer so none blocks.
	runToCompletion(t, coord)

	snap := coord.Stats()
	assert.Equal(t, 0, snap.TotalProduced)
	assert.Equal(t, 0, snap.TotalConsumed)
	assert.Equal(t, 0, snap.BufferLen)
}

func TestCoordinator_MoreConsumersThanProducers(t *testing.T) {
	coord, err := New[string](3)
	require.NoError(t, err)

	dest := worker.NewSliceSink[string]()
	require.NoError(t, coord.AddProducer("producer-a", items(0, 20)))
	require.NoError(t, coord.AddConsumer("consumer-1", dest))
	require.NoError(t, coord.AddConsumer("consumer-2", dest))
	require.NoError(t, coord.AddConsumer("consumer-3", dest))

	runToCompletion(t, coord)

	snap := coord.Stats()
	assert.Equal(t, 20, snap.TotalProduced)
	assert.Equal(t, 20, snap.TotalConsumed)
	assert.Equal(t, 20, dest.Len())
	assert.Equal(t, 0, snap.BufferLen)
}

func TestCoordinator_SurplusProducerMarkersRemain(t *testing.T) {
	coord, err := New[string](10)
	require.NoError(t, err)

	dest := worker.NewSliceSink[string]()
	require.NoError(t, coord.AddProducer("producer-a", items(0, 3)))
	require.NoError(t, coord.AddProducer("producer-b", nil))
	require.NoError(t, coord.AddConsumer("consumer-1", dest))

	runToCompletion(t, coord)

	// The single consumer takes exactly one of the two markers. Whatever it
	// did not consume is still sitting in the buffer: one marker plus any
	// items enqueued after the marker it took. Nothing is lost.
	snap := coord.Stats()
	assert.Equal(t, 3, snap.TotalProduced)
	assert.Equal(t, 4-snap.TotalConsumed, snap.BufferLen)
	assert.Equal(t, snap.TotalConsumed, dest.Len())
}

func TestCoordinator_CapacityOneIsStrictFIFO(t *testing.T) {
	coord, err := New[string](1)
	require.NoError(t, err)

	source := items(0, 30)
	dest := worker.NewSliceSink[string]()
	require.NoError(t, coord.AddProducer("producer-a", source))
	require.NoError(t, coord.AddConsumer("consumer-1", dest))

	runToCompletion(t, coord)

	// One producer, one consumer, capacity one: no interleaving is
	// possible, so the destination must equal the source exactly.
	assert.Equal(t, source, dest.Items())
}

func TestCoordinator_ConfigurationErrors(t *testing.T) {
	_, err := New[int](0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
	_, err = New[int](-1)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	coord, err := New[int](1)
	require.NoError(t, err)
	dest := worker.NewSliceSink[int]()

	assert.ErrorIs(t, coord.AddProducer("", nil), ErrEmptyWorkerID)
	assert.ErrorIs(t, coord.AddConsumer("", dest), ErrEmptyWorkerID)

	require.NoError(t, coord.AddProducer("w1", nil))
	assert.ErrorIs(t, coord.AddProducer("w1", nil), ErrDuplicateProducer)

	require.NoError(t, coord.AddConsumer("w1", dest)) // ids are per-role
	assert.ErrorIs(t, coord.AddConsumer("w1", dest), ErrDuplicateConsumer)
}

func TestCoordinator_LifecycleErrors(t *testing.T) {
	coord, err := New[int](1)
	require.NoError(t, err)
	dest := worker.NewSliceSink[int]()

	assert.ErrorIs(t, coord.Wait(context.Background()), ErrNotStarted)
	assert.Equal(t, StateNotStarted, coord.State())

	require.NoError(t, coord.AddProducer("p", []int{1}))
	require.NoError(t, coord.AddConsumer("c", dest))
	require.NoError(t, coord.Start())

	assert.ErrorIs(t, coord.Start(), ErrAlreadyStarted)
	assert.ErrorIs(t, coord.AddProducer("late", nil), ErrAlreadyStarted)
	assert.ErrorIs(t, coord.AddConsumer("late", dest), ErrAlreadyStarted)

	require.NoError(t, coord.Wait(context.Background()))
	assert.Equal(t, StateCompleted, coord.State())
}

func TestCoordinator_WaitContextCancelled(t *testing.T) {
	// Throttle the producer so the run outlives the first Wait deadline.
	coord, err := New[int](2, WithProducerRateLimit(20, 1))
	require.NoError(t, err)

	source := make([]int, 10)
	dest := worker.NewSliceSink[int]()
	require.NoError(t, coord.AddProducer("slow", source))
	require.NoError(t, coord.AddConsumer("c", dest))
	require.NoError(t, coord.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, coord.Wait(ctx), context.DeadlineExceeded)
	assert.Equal(t, StateRunning, coord.State())

	// A later Wait still observes completion.
	require.NoError(t, coord.Wait(context.Background()))
	assert.Equal(t, StateCompleted, coord.State())
	assert.Equal(t, 10, coord.Stats().TotalConsumed)
}

func TestCoordinator_Metrics(t *testing.T) {
	m := metric.NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	coord, err := New[string](5, WithMetrics(m))
	require.NoError(t, err)

	dest := worker.NewSliceSink[string]()
	require.NoError(t, coord.AddProducer("producer-a", items(0, 8)))
	require.NoError(t, coord.AddConsumer("consumer-1", dest))

	runToCompletion(t, coord)

	assert.Equal(t, 8.0, testutil.ToFloat64(m.ItemsProduced.WithLabelValues("producer-a")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.ItemsConsumed.WithLabelValues("consumer-1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsCompleted))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveWorkers.WithLabelValues(metric.RoleProducer)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveWorkers.WithLabelValues(metric.RoleConsumer)))
}

func TestCoordinator_RandomizedStress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress run in short mode")
	}

	for round := 0; round < 5; round++ {
		capacity := rand.Intn(8) + 1
		producers := rand.Intn(4) + 1
		// At least as many consumers as producers, so FIFO guarantees
		// every item precedes the last marker and nothing is stranded.
		consumers := producers + rand.Intn(3)

		coord, err := New[string](capacity)
		require.NoError(t, err)

		want := make(map[string]int)
		total := 0
		for p := 0; p < producers; p++ {
			n := rand.Intn(60)
			source := make([]string, 0, n)
			for i := 0; i < n; i++ {
				v := fmt.Sprintf("p%d-%d", p, i)
				source = append(source, v)
				want[v]++
			}
			total += n
			require.NoError(t, coord.AddProducer(fmt.Sprintf("producer-%d", p), source))
		}

		dest := worker.NewSliceSink[string]()
		for c := 0; c < consumers; c++ {
			require.NoError(t, coord.AddConsumer(fmt.Sprintf("consumer-%d", c), dest))
		}

		require.NoError(t, coord.Start())

		// Sample the buffer length while the run is in flight.
		var monWG sync.WaitGroup
		stop := make(chan struct{})
		monWG.Add(1)
		go func() {
			defer monWG.Done()
			for {
				select {
				case <-stop:
					return
				default:
					n := coord.Stats().BufferLen
					assert.LessOrEqual(t, n, capacity)
					assert.GreaterOrEqual(t, n, 0)
					time.Sleep(time.Millisecond)
				}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		require.NoError(t, coord.Wait(ctx))
		cancel()
		close(stop)
		monWG.Wait()

		snap := coord.Stats()
		require.Equal(t, total, snap.TotalProduced)
		require.Equal(t, total, snap.TotalConsumed)
		require.Equal(t, 0, snap.BufferLen)

		got := make(map[string]int)
		for _, v := range dest.Items() {
			got[v]++
		}
		require.Equal(t, want, got, "destination multiset must equal the union of sources")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not-started", StateNotStarted.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "unknown", State(42).String())
}
