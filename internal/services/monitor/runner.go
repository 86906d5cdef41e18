package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/record"
)

type checkPipeline interface {
	Run(ctx context.Context, cycleID, key string) error
}

type streamRotator interface {
	Rotate(ctx context.Context) error
}

// Runner drives the check loop and the rotation loop. Both run once at start, then on their own tickers.
type Runner struct {
	log      *zap.Logger
	cfg      config.SchedCfg
	store    record.Store
	pipeline checkPipeline
	rotator  streamRotator
	m        *Metrics

	sem      *semaphore.Weighted
	inFlight *inFlight
	rotating atomic.Bool
	wg       sync.WaitGroup
}

func NewRunner(log *zap.Logger, cfg config.SchedCfg, store record.Store, pipeline checkPipeline, rotator streamRotator, m *Metrics) *Runner {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 32
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.RotationInterval <= 0 {
		cfg.RotationInterval = 24 * time.Hour
	}
	return &Runner{
		log:      log,
		cfg:      cfg,
		store:    store,
		pipeline: pipeline,
		rotator:  rotator,
		m:        m,
		sem:      semaphore.NewWeighted(cfg.MaxInFlight),
		inFlight: newInFlight(),
	}
}

// Run blocks until ctx is cancelled, then waits up to the shutdown timeout for in-flight work.
func (r *Runner) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.loop(gctx, r.cfg.CheckInterval, r.startCycle) })
	g.Go(func() error { return r.loop(gctx, r.cfg.RotationInterval, r.startRotation) })
	err := g.Wait()

	r.drain()
	return err
}

func (r *Runner) loop(ctx context.Context, every time.Duration, fire func(context.Context)) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	fire(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fire(ctx)
		}
	}
}

func (r *Runner) drain() {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	timeout := r.cfg.ShutdownTimeout
	if timeout <= 0 {
		<-done
		return
	}
	select {
	case <-done:
		r.log.Info("in-flight work finished")
	case <-time.After(timeout):
		r.log.Warn("shutdown timeout, abandoning in-flight work", zap.Duration("timeout", timeout))
	}
}

func (r *Runner) startCycle(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.cycle(ctx, uuid.NewString())
	}()
}

func (r *Runner) cycle(ctx context.Context, cycleID string) {
	start := time.Now()
	ctx, span := otel.Tracer("monitor.runner").Start(ctx, "monitor.cycle")
	defer span.End()
	span.SetAttributes(attribute.String("cycle.id", cycleID))
	r.m.Cycles.Inc()
	log := r.log.With(zap.String("cycle_id", cycleID))

	keys, err := r.store.List(ctx, record.CollectionChecks)
	if err != nil {
		r.m.CycleErrors.Inc()
		span.RecordError(err)
		log.Error("list checks", zap.Error(err))
		return
	}

	var cycleWG sync.WaitGroup
	dispatched, skipped := 0, 0
	for _, key := range keys {
		if !r.inFlight.tryAdd(key) {
			skipped++
			r.m.Skipped.Inc()
			continue
		}
		if err := r.sem.Acquire(ctx, 1); err != nil {
			r.inFlight.remove(key)
			break
		}
		dispatched++
		r.m.Dispatched.Inc()
		r.wg.Add(1)
		cycleWG.Add(1)
		go func(key string) {
			defer r.wg.Done()
			defer cycleWG.Done()
			defer r.inFlight.remove(key)
			defer r.sem.Release(1)
			r.runOne(ctx, log, cycleID, key)
		}(key)
	}
	span.SetAttributes(attribute.Int("cycle.checks", len(keys)), attribute.Int("cycle.dispatched", dispatched), attribute.Int("cycle.skipped", skipped))

	cycleWG.Wait()
	r.m.CycleDuration.Observe(time.Since(start).Seconds())
	log.Debug("cycle finished", zap.Int("checks", len(keys)), zap.Int("dispatched", dispatched), zap.Int("skipped", skipped))
}

func (r *Runner) runOne(ctx context.Context, log *zap.Logger, cycleID, key string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.m.PipelineErrs.Inc()
			log.Error("check pipeline panicked", zap.String("check_key", key), zap.Any("panic", rec))
		}
	}()

	err := r.pipeline.Run(ctx, cycleID, key)
	switch {
	case err == nil, errors.Is(err, ErrDiscarded):
	case errors.Is(err, ErrRejected):
		log.Warn("check rejected", zap.String("check_key", key), zap.Error(err))
	default:
		log.Error("check pipeline failed", zap.String("check_key", key), zap.Error(err))
	}
}

func (r *Runner) startRotation(ctx context.Context) {
	if !r.rotating.CompareAndSwap(false, true) {
		r.m.Rotations.WithLabelValues("skipped").Inc()
		r.log.Warn("previous rotation still running, skipping")
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.rotating.Store(false)
		if err := r.rotator.Rotate(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Error("rotation finished with errors", zap.Error(err))
			return
		}
		r.log.Info("rotation finished")
	}()
}
