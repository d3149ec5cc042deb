// Package logging provides structured logging for the habits service.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Context-aware logging with request IDs and habit identifiers
//   - Runtime log level changes for configuration hot reload
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log structured data
//	logger.Info("habit created",
//	    "habit_id", 42,
//	    "backend", "sqlite",
//	)
//
//	// Create context-aware logger
//	ctx := logging.WithRequestID(ctx, "req-123")
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("processing")  // Includes request_id automatically
//
// # Runtime Level Changes
//
// The logger level can be changed while the service is running, which the
// configuration watcher uses to apply telemetry.logging.level on reload:
//
//	if err := logger.SetLevel("debug"); err != nil { ... }
package logging
