package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	// Validate listen address is not empty
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	// Validate timeouts are positive
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	// Validate max header bytes is reasonable
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.cert_file",
				Message: "certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
	}
	if cfg.TLS.MinVersion != "" && cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
		})
	}

	return errs
}

// validateStorage validates storage configuration.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	// Validate backend
	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: "backend is required",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	// Validate backend-specific configuration
	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.busy_timeout",
				Message: "busy timeout must be positive",
			})
		}
	}

	return errs
}

// validateRetention validates retention configuration.
func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	// Validate retention days
	if cfg.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}

	// Validate cron schedule when pruning is active
	if cfg.Days > 0 && cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
			})
		}
	}

	// Validate archive path when archiving is enabled
	if cfg.ArchiveBeforeDelete && cfg.ArchivePath == "" {
		errs = append(errs, FieldError{
			Field:   "retention.archive_path",
			Message: "archive path is required when archive_before_delete is enabled",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	// Validate metrics prometheus path
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		}
		if cfg.Metrics.Path != "" && cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	// Validate health check configuration
	if cfg.Health.Enabled {
		if cfg.Health.LivenessPath == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.liveness_path",
				Message: "liveness path is required when health checks are enabled",
			})
		}
		if cfg.Health.ReadinessPath == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.readiness_path",
				Message: "readiness path is required when health checks are enabled",
			})
		}
		if cfg.Health.VersionPath == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.version_path",
				Message: "version path is required when health checks are enabled",
			})
		}

		// Validate paths start with /
		if cfg.Health.LivenessPath != "" && cfg.Health.LivenessPath[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.liveness_path",
				Message: "liveness path must start with /",
			})
		}
		if cfg.Health.ReadinessPath != "" && cfg.Health.ReadinessPath[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.readiness_path",
				Message: "readiness path must start with /",
			})
		}
		if cfg.Health.VersionPath != "" && cfg.Health.VersionPath[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.version_path",
				Message: "version path must start with /",
			})
		}

		// Validate check timeout is reasonable
		if cfg.Health.CheckTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.check_timeout",
				Message: "check timeout must be positive",
			})
		}
		if cfg.Health.CheckTimeout > 60*time.Second {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.check_timeout",
				Message: "check timeout exceeds reasonable limit (60s)",
			})
		}
	}

	return errs
}
