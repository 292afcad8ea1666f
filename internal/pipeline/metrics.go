package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JaimeStill/intake/internal/loan"
)

// Metrics holds Prometheus collectors for pipeline runs. A nil *Metrics
// records nothing.
type Metrics struct {
	Runs          *prometheus.CounterVec
	DegradedRuns  prometheus.Counter
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec
	ModelCalls    *prometheus.CounterVec
	ModelLatency  *prometheus.HistogramVec
}

// NewMetrics registers pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_runs_total",
			Help: "Total pipeline runs, labeled by outcome (passed, rejected, error)",
		}, []string{"status"}),
		DegradedRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_degraded_runs_total",
			Help: "Total pipeline runs that completed with recovered errors",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "intake_run_duration_seconds",
			Help:    "End-to-end duration of pipeline runs in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_model_calls_total",
			Help: "Total model calls, labeled by stage and outcome",
		}, []string{"stage", "outcome"}),
		ModelLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_model_call_duration_seconds",
			Help:    "Latency of model calls in seconds, labeled by stage",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"stage"}),
	}
}

// ObserveCall records a model call. It satisfies agents.Observer.
func (m *Metrics) ObserveCall(stage string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ModelCalls.WithLabelValues(stage, outcome).Inc()
	m.ModelLatency.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) observeStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRun(d *loan.FinalDecision, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(elapsed.Seconds())

	if err != nil {
		m.Runs.WithLabelValues("error").Inc()
		return
	}
	m.Runs.WithLabelValues(string(d.LoanApplicationStatus)).Inc()
	if len(d.Degraded) > 0 {
		m.DegradedRuns.Inc()
	}
}
