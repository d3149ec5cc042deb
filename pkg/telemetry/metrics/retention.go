package metrics

import (
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RetentionMetrics tracks metrics for retention pruning runs.
//
// Metrics:
//   - habits_api_retention_runs_total: Prune run count by outcome
//   - habits_api_retention_pruned_logs_total: Total log entries deleted
//   - habits_api_retention_archived_logs_total: Total log entries archived
//   - habits_api_retention_run_duration_seconds: Prune run duration histogram
type RetentionMetrics struct {
	// Prune run count by outcome
	runsTotal *prometheus.CounterVec

	// Total log entries deleted by pruning
	prunedTotal prometheus.Counter

	// Total log entries written to archives
	archivedTotal prometheus.Counter

	// Prune run duration histogram
	runDuration prometheus.Histogram
}

// NewRetentionMetrics creates and registers retention metrics with the provided registry.
func NewRetentionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RetentionMetrics {
	rm := &RetentionMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retention_runs_total",
				Help:      "Total number of retention pruning runs by outcome",
			},
			[]string{"status"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retention_pruned_logs_total",
				Help:      "Total number of log entries deleted by retention pruning",
			},
		),

		archivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retention_archived_logs_total",
				Help:      "Total number of log entries written to archive files",
			},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retention_run_duration_seconds",
				Help:      "Duration of retention pruning runs in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.prunedTotal,
		rm.archivedTotal,
		rm.runDuration,
	)

	return rm
}

// RecordRun records metrics for a completed retention run.
func (rm *RetentionMetrics) RecordRun(status string, deleted int64, duration time.Duration) {
	rm.runsTotal.WithLabelValues(status).Inc()
	rm.runDuration.Observe(duration.Seconds())

	if deleted > 0 {
		rm.prunedTotal.Add(float64(deleted))
	}
}

// RecordArchived records the number of log entries written to an archive.
func (rm *RetentionMetrics) RecordArchived(count int64) {
	if count > 0 {
		rm.archivedTotal.Add(float64(count))
	}
}
