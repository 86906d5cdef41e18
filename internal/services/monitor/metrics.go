package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Cycles        prometheus.Counter
	CycleErrors   prometheus.Counter
	CycleDuration prometheus.Histogram
	Dispatched    prometheus.Counter
	Skipped       prometheus.Counter
	Rejected      prometheus.Counter
	Outcomes      *prometheus.CounterVec
	ProbeLatency  prometheus.Histogram
	PipelineErrs  prometheus.Counter
	AlertsSent    prometheus.Counter
	AlertsFailed  prometheus.Counter
	Rotations     *prometheus.CounterVec
}

// NewMetrics registers the monitor metrics on reg; use a fresh registry per instance in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_cycles_total", Help: "Check cycles started",
		}),
		CycleErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_cycle_errors_total", Help: "Check cycles that could not list checks",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name: "monitor_cycle_duration_seconds", Help: "Time from cycle start until every dispatched check finished",
			Buckets: prometheus.DefBuckets,
		}),
		Dispatched: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_checks_dispatched_total", Help: "Per-check pipelines started",
		}),
		Skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_checks_skipped_total", Help: "Checks skipped because the previous run was still in flight",
		}),
		Rejected: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_checks_rejected_total", Help: "Stored check records that failed validation",
		}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_check_outcomes_total", Help: "Evaluated checks by resulting state",
		}, []string{"state"}),
		ProbeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name: "monitor_probe_duration_seconds", Help: "Probe latency",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		PipelineErrs: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_pipeline_errors_total", Help: "Per-check pipelines aborted by a read, persist or log failure",
		}),
		AlertsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_alerts_sent_total", Help: "State change alerts delivered",
		}),
		AlertsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_alerts_failed_total", Help: "State change alerts that failed to send",
		}),
		Rotations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_rotations_total", Help: "Stream rotations by result",
		}, []string{"result"}),
	}
}
