// Package telemetry provides observability for the habits service.
//
// # Overview
//
// The telemetry package implements structured logging, Prometheus metrics,
// and health check endpoints. It provides visibility into request handling
// and storage behavior while keeping per-request overhead low.
//
// # Components
//
//   - logging: Structured logging built on log/slog
//   - metrics: Prometheus metrics collection
//   - health: Liveness, readiness, and version endpoints
//
// # Usage
//
//	// Initialize logging from configuration
//	cfg := config.MustGetConfig()
//	logger, err := logging.New(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//
//	// Record metrics
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordHTTPRequest("GET", "/habits", "200", duration, 512)
//
//	// Register readiness checks
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("storage", store.Ping)
package telemetry
