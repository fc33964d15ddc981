// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Screening metrics
	TargetsProcessed prometheus.Counter
	WalletsEvaluated *prometheus.CounterVec
	WalletsPassed    prometheus.Counter
	ThrottleStops    prometheus.Counter

	// Upstream metrics
	StatsRetries       *prometheus.CounterVec
	HoldersFetches     *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Database metrics
	DBQueryErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trader_screener"
	}

	return &Metrics{
		TargetsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "targets_processed_total",
			Help:      "Total number of target tokens finalized with a checkpoint",
		}),
		WalletsEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "wallets_evaluated_total",
			Help:      "Total number of wallet outcomes recorded by reason code",
		}, []string{"reason"}),
		WalletsPassed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "wallets_passed_total",
			Help:      "Total number of wallets that passed all filters",
		}),
		ThrottleStops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "throttle_stops_total",
			Help:      "Total number of runs stopped by upstream throttling",
		}),

		StatsRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "stats_retries_total",
			Help:      "Total number of stats API retries by cause",
		}, []string{"cause"}),
		HoldersFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "holders_fetches_total",
			Help:      "Total number of holders API fetches by status",
		}, []string{"status"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "evaluation_duration_seconds",
			Help:      "Single wallet evaluation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "total",
			Help:      "Total number of screening runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Screening run duration in seconds",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		}),

		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"store", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTargetProcessed increments the targets processed counter.
func RecordTargetProcessed() {
	DefaultMetrics.TargetsProcessed.Inc()
}

// RecordWalletEvaluated records one wallet outcome.
func RecordWalletEvaluated(reason string) {
	DefaultMetrics.WalletsEvaluated.WithLabelValues(reason).Inc()
	if reason == "PASS" {
		DefaultMetrics.WalletsPassed.Inc()
	}
}

// RecordThrottleStop increments the throttle stop counter.
func RecordThrottleStop() {
	DefaultMetrics.ThrottleStops.Inc()
}

// RecordStatsRetry records one stats API retry by cause.
func RecordStatsRetry(cause string) {
	DefaultMetrics.StatsRetries.WithLabelValues(cause).Inc()
}

// RecordHoldersFetch records one holders API fetch by status.
func RecordHoldersFetch(status string) {
	DefaultMetrics.HoldersFetches.WithLabelValues(status).Inc()
}

// RecordEvaluationDuration records a single wallet evaluation duration.
func RecordEvaluationDuration(seconds float64) {
	DefaultMetrics.EvaluationDuration.Observe(seconds)
}

// RecordRun records a completed screening run.
func RecordRun(status string, durationSeconds float64) {
	DefaultMetrics.RunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RunDuration.Observe(durationSeconds)
}

// RecordDBError records a database query error.
func RecordDBError(store, operation string) {
	DefaultMetrics.DBQueryErrors.WithLabelValues(store, operation).Inc()
}
