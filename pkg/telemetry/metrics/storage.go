package metrics

import (
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics tracks metrics for storage backend operations.
//
// Metrics:
//   - habits_api_storage_operations_total: Operation count by backend, operation, status
//   - habits_api_storage_operation_duration_seconds: Operation duration histogram
type StorageMetrics struct {
	// Operation count
	operationsTotal *prometheus.CounterVec

	// Operation duration histogram
	operationDuration *prometheus.HistogramVec
}

// NewStorageMetrics creates and registers storage metrics with the provided registry.
func NewStorageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StorageMetrics {
	sm := &StorageMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "storage_operations_total",
				Help:      "Total number of storage operations by backend and outcome",
			},
			[]string{"backend", "operation", "status"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "storage_operation_duration_seconds",
				Help:      "Duration of storage operations in seconds",
				// In-memory operations finish in microseconds, SQLite in low milliseconds
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"backend", "operation"},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
	)

	return sm
}

// RecordOperation records metrics for a completed storage operation.
func (sm *StorageMetrics) RecordOperation(backend, operation, status string, duration time.Duration) {
	sm.operationsTotal.WithLabelValues(backend, operation, status).Inc()
	sm.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
