package config

import "time"

// Config is the root configuration structure for the habit service.
// It contains all configuration sections for the HTTP server, storage
// backends, log retention, export, and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, CORS, and TLS.
	Server ServerConfig `yaml:"server"`

	// Storage contains configuration for habit storage including backend
	// selection and SQLite settings.
	Storage StorageConfig `yaml:"storage"`

	// Retention contains the retention policy for habit logs.
	Retention RetentionConfig `yaml:"retention"`

	// Export contains export formatting configuration.
	Export ExportConfig `yaml:"export"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8000", "0.0.0.0:8000").
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout is the per-request deadline applied by the timeout
	// middleware. Requests exceeding it receive 504 Gateway Timeout.
	// Default: 15s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the
	// request line. It does not limit the size of the request body.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS contains TLS configuration for the server.
	TLS TLSConfig `yaml:"tls"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials (cookies, auth headers)
	// are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`
}

// StorageConfig contains configuration for habit storage.
type StorageConfig struct {
	// Backend specifies the storage backend for habits and logs.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "habits.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// CheckpointInterval is how often WAL checkpoints are performed.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// RetentionConfig contains the retention policy for habit logs.
type RetentionConfig struct {
	// Days is the number of days to retain habit logs.
	// Logs older than this are eligible for deletion.
	// 0 means keep logs forever (no pruning).
	// Default: 0
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete enables archiving logs before deletion.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory to store archived logs.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`
}

// ExportConfig contains export formatting configuration.
type ExportConfig struct {
	// JSONPretty enables pretty-printing for JSON exports.
	// Default: true
	JSONPretty bool `yaml:"json_pretty"`

	// CSVIncludeHeader includes a header row in CSV exports.
	// Default: true
	CSVIncludeHeader bool `yaml:"csv_include_header"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "habits"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "api"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health/live"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/health/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
