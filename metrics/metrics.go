package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RunsTotal counts finished pipeline runs by outcome.
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstory",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of story pipeline runs, labeled by outcome.",
	}, []string{"outcome"})

	// RunDurationSeconds is end-to-end time per run, trigger to completion.
	RunDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "carstory",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "End-to-end time to produce one story.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
	})

	// StageDurationSeconds is wall time per pipeline stage.
	StageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carstory",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall time of each pipeline stage.",
		Buckets:   []float64{0.05, 0.25, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	// RunsInFlight is the number of runs currently executing.
	RunsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "carstory",
		Subsystem: "pipeline",
		Name:      "runs_in_flight",
		Help:      "Current number of story runs being processed.",
	})

	// BadgeCollectorErrorsTotal counts certification collector failures.
	BadgeCollectorErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carstory",
		Subsystem: "badges",
		Name:      "collector_errors_total",
		Help:      "Total number of certification collector failures, labeled by collector.",
	}, []string{"collector"})

	// RabbitMQConnected is 1 when the event publisher considers itself connected.
	RabbitMQConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "carstory",
		Subsystem: "events",
		Name:      "rabbitmq_connected",
		Help:      "Whether the story event publisher is currently connected (best-effort).",
	})

	// PublishErrorTotal counts story event publish errors.
	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carstory",
		Subsystem: "events",
		Name:      "publish_error_total",
		Help:      "Total number of story event publish errors.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsTotal,
			RunDurationSeconds,
			StageDurationSeconds,
			RunsInFlight,
			BadgeCollectorErrorsTotal,
			RabbitMQConnected,
			PublishErrorTotal,
		)
	})
}

// RecordRunOutcome bumps the run counter for one finished run.
func RecordRunOutcome(outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
}

// RecordRunDuration observes one run's end-to-end wall time.
func RecordRunDuration(d time.Duration) {
	RunDurationSeconds.Observe(d.Seconds())
}

// RecordStageDuration observes one stage's wall time.
func RecordStageDuration(stage string, d time.Duration) {
	StageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}
