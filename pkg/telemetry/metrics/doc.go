// Package metrics provides Prometheus metrics collection for the habits service.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring HTTP
// request handling, storage backend operations, and retention pruning runs.
// Metric updates are cheap enough to record on every request.
//
// # Metrics Categories
//
//   - Request Metrics: Request count, duration, response sizes, in-flight gauge
//   - Storage Metrics: Operation count and duration by backend and operation
//   - Retention Metrics: Prune runs, pruned and archived log counts
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// Record a handled HTTP request
//	collector.RecordHTTPRequest("POST", "/habits", "201", duration, 512)
//
//	// Record a storage operation
//	collector.RecordStorageOperation("sqlite", "create_habit", "success", 2*time.Millisecond)
//
//	// Record a retention run
//	collector.RecordRetentionRun("success", 120, 80*time.Millisecond)
//
// # Label Cardinality
//
// Route labels use the registered route patterns (e.g. "/habits/{id}"), never
// raw request paths, so label cardinality stays bounded by the route table.
//
// # Prometheus Endpoint
//
// All metrics are exposed on the configured metrics path in standard
// Prometheus format:
//
//	# HELP habits_api_requests_total Total number of HTTP requests handled
//	# TYPE habits_api_requests_total counter
//	habits_api_requests_total{method="GET",route="/habits",status="200"} 1234
package metrics
