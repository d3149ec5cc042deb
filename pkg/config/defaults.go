package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600 // 1 hour
	DefaultCORSAllowCredentials = false

	// TLS defaults
	DefaultTLSEnabled    = false
	DefaultTLSMinVersion = "1.3"

	// Storage defaults
	DefaultStorageBackend        = "memory"
	DefaultSQLitePath            = "habits.db"
	DefaultSQLiteBusyTimeout     = 5 * time.Second
	DefaultSQLiteCheckpointEvery = 5 * time.Minute

	// Retention defaults. Days defaults to 0 so logs are kept forever
	// unless a retention window is configured explicitly.
	DefaultRetentionDays        = 0
	DefaultRetentionSchedule    = "0 3 * * *"
	DefaultRetentionArchive     = false
	DefaultRetentionArchivePath = "data/archives/"

	// Export defaults
	DefaultExportJSONPretty = true
	DefaultExportCSVHeader  = true

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "habits"
	DefaultMetricsSubsystem   = "api"
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/health/live"
	DefaultReadinessPath      = "/health/ready"
	DefaultVersionPath        = "/version"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// NewDefault returns a Config populated with every default value.
// It is the configuration the service runs with when no file and no
// environment overrides are present.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}

	// CORS defaults
	applyCORSDefaults(cfg)

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Storage.SQLite.CheckpointInterval == 0 {
		cfg.Storage.SQLite.CheckpointInterval = DefaultSQLiteCheckpointEvery
	}

	// Retention defaults. Days keeps its zero value: 0 means no pruning.
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultRetentionSchedule
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = DefaultRetentionArchivePath
	}

	// Export defaults. These booleans default to true; a zero value cannot
	// be told apart from an explicit false, so disabling them is done
	// through the HABITS_EXPORT_* environment overrides.
	if !cfg.Export.JSONPretty {
		cfg.Export.JSONPretty = DefaultExportJSONPretty
	}
	if !cfg.Export.CSVIncludeHeader {
		cfg.Export.CSVIncludeHeader = DefaultExportCSVHeader
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	applyMetricsDefaults(cfg)
	applyHealthDefaults(cfg)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cfg *Config) {
	cors := &cfg.Server.CORS

	// Set enabled default (true)
	if !cors.Enabled {
		// Check if any CORS fields are set - if so, user wants CORS
		// Otherwise, use default
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}

	// AllowCredentials defaults to false (zero value), which is correct
}

// applyMetricsDefaults applies default values to metrics configuration.
func applyMetricsDefaults(cfg *Config) {
	metrics := &cfg.Telemetry.Metrics

	// Enabled defaults to true using the same heuristic as CORS: a fully
	// zero section means the user never configured metrics.
	if !metrics.Enabled {
		hasAnyConfig := metrics.Path != "" ||
			metrics.Namespace != "" ||
			metrics.Subsystem != "" ||
			len(metrics.RequestDurationBuckets) > 0

		if !hasAnyConfig {
			metrics.Enabled = DefaultMetricsEnabled
		}
	}

	if metrics.Path == "" {
		metrics.Path = DefaultMetricsPath
	}
	if metrics.Namespace == "" {
		metrics.Namespace = DefaultMetricsNamespace
	}
	if metrics.Subsystem == "" {
		metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(metrics.RequestDurationBuckets) == 0 {
		metrics.RequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5}
	}
}

// applyHealthDefaults applies default values to health check configuration.
func applyHealthDefaults(cfg *Config) {
	health := &cfg.Telemetry.Health

	if !health.Enabled {
		hasAnyConfig := health.LivenessPath != "" ||
			health.ReadinessPath != "" ||
			health.VersionPath != "" ||
			health.CheckTimeout > 0

		if !hasAnyConfig {
			health.Enabled = DefaultHealthEnabled
		}
	}

	if health.LivenessPath == "" {
		health.LivenessPath = DefaultLivenessPath
	}
	if health.ReadinessPath == "" {
		health.ReadinessPath = DefaultReadinessPath
	}
	if health.VersionPath == "" {
		health.VersionPath = DefaultVersionPath
	}
	if health.CheckTimeout == 0 {
		health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
