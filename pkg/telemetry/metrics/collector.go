package metrics

import (
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in the habits
// service. It manages metric registration and provides a unified interface
// for recording metrics across components.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Storage metrics
	storageMetrics *StorageMetrics

	// Retention metrics
	retentionMetrics *RetentionMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "habits",
//		Subsystem: "api",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// CRUD handlers respond in the low-millisecond range
		cfg.RequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.storageMetrics = NewStorageMetrics(cfg, registry)
	c.retentionMetrics = NewRetentionMetrics(cfg, registry)

	return c
}

// RecordHTTPRequest records metrics for a handled HTTP request.
//
// Parameters:
//   - method: HTTP method (e.g., "GET", "POST")
//   - route: Registered route pattern (e.g., "/habits/{id}")
//   - status: Response status code as a string (e.g., "200", "404")
//   - duration: Total request handling duration
//   - responseBytes: Response body size in bytes
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration, responseBytes int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(method, route, status, duration, responseBytes)
}

// IncInFlight increments the in-flight request gauge.
func (c *Collector) IncInFlight() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.IncInFlight()
}

// DecInFlight decrements the in-flight request gauge.
func (c *Collector) DecInFlight() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.DecInFlight()
}

// RecordStorageOperation records metrics for a completed storage operation.
//
// Parameters:
//   - backend: Storage backend name ("memory", "sqlite")
//   - operation: Operation name (e.g., "create_habit", "list_logs")
//   - status: Operation outcome ("success", "not_found", "error")
//   - duration: Operation duration
func (c *Collector) RecordStorageOperation(backend, operation, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.storageMetrics.RecordOperation(backend, operation, status, duration)
}

// RecordRetentionRun records metrics for a completed retention pruning run.
//
// Parameters:
//   - status: Run outcome ("success", "error")
//   - deleted: Number of log entries deleted
//   - duration: Run duration
func (c *Collector) RecordRetentionRun(status string, deleted int64, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.retentionMetrics.RecordRun(status, deleted, duration)
}

// RecordLogsArchived records the number of log entries written to an archive
// during a retention run.
func (c *Collector) RecordLogsArchived(count int64) {
	if !c.config.Enabled {
		return
	}

	c.retentionMetrics.RecordArchived(count)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
