package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/record"
)

type gatedPipeline struct {
	gate    chan struct{}
	mu      sync.Mutex
	calls   map[string]int
	cycles  map[string]struct{}
	running atomic.Int32
	peak    atomic.Int32
}

func newGatedPipeline(open bool) *gatedPipeline {
	p := &gatedPipeline{gate: make(chan struct{}), calls: map[string]int{}, cycles: map[string]struct{}{}}
	if open {
		close(p.gate)
	}
	return p
}

func (p *gatedPipeline) Run(ctx context.Context, cycleID, key string) error {
	n := p.running.Add(1)
	defer p.running.Add(-1)
	for {
		m := p.peak.Load()
		if n <= m || p.peak.CompareAndSwap(m, n) {
			break
		}
	}
	p.mu.Lock()
	p.calls[key]++
	p.cycles[cycleID] = struct{}{}
	p.mu.Unlock()

	select {
	case <-p.gate:
	case <-ctx.Done():
	}
	return nil
}

func (p *gatedPipeline) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

type countingRotator struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (r *countingRotator) Rotate(ctx context.Context) error {
	r.calls.Add(1)
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
		}
	}
	return nil
}

func seedKeys(t *testing.T, s *memStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, s.Create(context.Background(), record.CollectionChecks, k, record.Record{}))
	}
}

func newTestRunner(store record.Store, p checkPipeline, rot streamRotator, maxInFlight int64) *Runner {
	cfg := config.SchedCfg{
		CheckInterval:    time.Hour,
		RotationInterval: time.Hour,
		MaxInFlight:      maxInFlight,
		ShutdownTimeout:  time.Second,
	}
	return NewRunner(zap.NewNop(), cfg, store, p, rot, NewMetrics(prometheus.NewRegistry()))
}

func TestRunner_RunsImmediatelyOnStart(t *testing.T) {
	store := newMemStore()
	seedKeys(t, store, "a", "b", "c")
	p := newGatedPipeline(true)
	rot := &countingRotator{}
	r := newTestRunner(store, p, rot, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return p.total() == 3 && rot.calls.Load() == 1 },
		2*time.Second, 10*time.Millisecond)
	require.Len(t, p.cycles, 1)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not stop")
	}
	require.Equal(t, 1.0, testutil.ToFloat64(r.m.Cycles))
	require.Equal(t, 3.0, testutil.ToFloat64(r.m.Dispatched))
}

func TestRunner_SkipsChecksStillInFlight(t *testing.T) {
	store := newMemStore()
	seedKeys(t, store, "a")
	p := newGatedPipeline(false)
	r := newTestRunner(store, p, &countingRotator{}, 4)
	ctx := context.Background()

	r.startCycle(ctx)
	require.Eventually(t, func() bool { return p.total() == 1 }, 2*time.Second, 10*time.Millisecond)

	r.startCycle(ctx)
	require.Eventually(t, func() bool { return testutil.ToFloat64(r.m.Skipped) == 1 }, 2*time.Second, 10*time.Millisecond)

	close(p.gate)
	r.wg.Wait()
	require.Equal(t, 1, p.total())

	r.startCycle(ctx)
	r.wg.Wait()
	require.Equal(t, 2, p.total())
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	store := newMemStore()
	seedKeys(t, store, "a", "b", "c", "d", "e", "f")
	p := newGatedPipeline(false)
	r := newTestRunner(store, p, &countingRotator{}, 2)

	r.startCycle(context.Background())
	require.Eventually(t, func() bool { return p.running.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(2), p.running.Load())

	close(p.gate)
	r.wg.Wait()
	require.Equal(t, 6, p.total())
	require.Equal(t, int32(2), p.peak.Load())
}

func TestRunner_SkipsOverlappingRotation(t *testing.T) {
	rot := &countingRotator{gate: make(chan struct{})}
	r := newTestRunner(newMemStore(), newGatedPipeline(true), rot, 1)
	ctx := context.Background()

	r.startRotation(ctx)
	require.Eventually(t, func() bool { return rot.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	r.startRotation(ctx)
	require.Equal(t, 1.0, testutil.ToFloat64(r.m.Rotations.WithLabelValues("skipped")))

	close(rot.gate)
	r.wg.Wait()
	r.startRotation(ctx)
	r.wg.Wait()
	require.Equal(t, int32(2), rot.calls.Load())
}

func TestRunner_ListFailureIsCounted(t *testing.T) {
	store := newMemStore()
	store.listErr = context.DeadlineExceeded
	p := newGatedPipeline(true)
	r := newTestRunner(store, p, &countingRotator{}, 1)

	r.startCycle(context.Background())
	r.wg.Wait()
	require.Zero(t, p.total())
	require.Equal(t, 1.0, testutil.ToFloat64(r.m.CycleErrors))
}
