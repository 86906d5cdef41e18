package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	config "github.com/NordCoder/Uptimer/internal/config/monitor"
	"github.com/NordCoder/Uptimer/internal/domain/notification"
	"github.com/NordCoder/Uptimer/internal/obs"
	"github.com/NordCoder/Uptimer/internal/repository/file"
	"github.com/NordCoder/Uptimer/internal/services/monitor"
)

func main() {
	configPath := flag.String("config", os.Getenv("MONITOR_CONFIG"), "path to YAML config")
	flag.Parse()

	// init
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		App:    cfg.App.Name,
		Env:    cfg.App.Env,
		Ver:    cfg.App.Version,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting monitor",
		zap.String("store", cfg.Store.Driver),
		zap.Duration("check_interval", cfg.Scheduler.CheckInterval),
		zap.Duration("rotation_interval", cfg.Scheduler.RotationInterval),
		zap.Int64("max_in_flight", cfg.Scheduler.MaxInFlight),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, &obs.OTELConfig{
		Enable:      cfg.OTel.Enable,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		SampleRatio: cfg.OTel.SampleRatio,
	})
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// stores
	st, err := initStore(ctx, cfg.Store, l)
	if err != nil {
		l.Fatal("record store", zap.Error(err))
	}
	defer st.close()

	outcomes, err := file.NewOutcomeLog(cfg.OutcomeLog.Dir)
	if err != nil {
		l.Fatal("outcome log", zap.Error(err))
	}

	// notifier
	reg := prometheus.DefaultRegisterer
	sender, closers := initNotifier(cfg.Notifier, reg, l)
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	// metrics server
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, prometheus.DefaultGatherer, st.health, l)

	// wiring
	metrics := monitor.NewMetrics(reg)
	locks := monitor.NewStreamLocks()
	clock := notification.SystemClock{}

	pipeline := &monitor.Pipeline{
		Log:       l,
		Store:     st.store,
		Validator: monitor.NewValidator(cfg.Validator.MaxTimeoutSeconds),
		Prober:    monitor.NewHTTPProber(monitor.NewHTTPClient(cfg.HTTP), cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes),
		Outcomes:  outcomes,
		Notifier:  sender,
		Locks:     locks,
		Clock:     clock,
		Metrics:   metrics,
	}
	rotator := &monitor.Rotator{
		Log:      l,
		Outcomes: outcomes,
		Locks:    locks,
		Clock:    clock,
		Metrics:  metrics,
	}
	runner := monitor.NewRunner(l, cfg.Scheduler, st.store, pipeline, rotator, metrics)

	// run
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()
	l.Info("monitor started")

	// Run returns only after in-flight checks are drained.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		l.Error("runner error", zap.Error(err))
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
