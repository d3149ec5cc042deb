package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention HABITS_SECTION_FIELD (e.g., HABITS_SERVER_LISTEN_ADDRESS) and
// always take precedence over file-based configuration. The bare USE_SQLITE
// and DB_PATH variables are applied last.
//
// If path is empty, the file step is skipped and the configuration is built
// from defaults plus the environment.
//
// The loading sequence is:
//  1. Load YAML from file (or start from defaults when path is empty)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config

	if path == "" {
		cfg = NewDefault()
	} else {
		// Load from file (this already applies defaults)
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format HABITS_SECTION_FIELD. The bare
// USE_SQLITE and DB_PATH names are recognized for compatibility and win over
// everything else.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("HABITS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("HABITS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("HABITS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("HABITS_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("HABITS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("HABITS_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
	if val := os.Getenv("HABITS_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}
	if val := os.Getenv("HABITS_SERVER_CORS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.CORS.Enabled = b
		}
	}
	if val := os.Getenv("HABITS_SERVER_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.TLS.Enabled = b
		}
	}
	if val := os.Getenv("HABITS_SERVER_TLS_CERT_FILE"); val != "" {
		cfg.Server.TLS.CertFile = val
	}
	if val := os.Getenv("HABITS_SERVER_TLS_KEY_FILE"); val != "" {
		cfg.Server.TLS.KeyFile = val
	}

	// Storage overrides
	if val := os.Getenv("HABITS_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("HABITS_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Storage.SQLite.Path = val
	}
	if val := os.Getenv("HABITS_STORAGE_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Storage.SQLite.BusyTimeout = d
		}
	}

	// Retention overrides
	if val := os.Getenv("HABITS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.Days = i
		}
	}
	if val := os.Getenv("HABITS_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Retention.PruneSchedule = val
	}
	if val := os.Getenv("HABITS_RETENTION_ARCHIVE_BEFORE_DELETE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.ArchiveBeforeDelete = b
		}
	}
	if val := os.Getenv("HABITS_RETENTION_ARCHIVE_PATH"); val != "" {
		cfg.Retention.ArchivePath = val
	}

	// Export overrides
	if val := os.Getenv("HABITS_EXPORT_JSON_PRETTY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Export.JSONPretty = b
		}
	}
	if val := os.Getenv("HABITS_EXPORT_CSV_INCLUDE_HEADER"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Export.CSVIncludeHeader = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("HABITS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("HABITS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("HABITS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("HABITS_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("HABITS_TELEMETRY_HEALTH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Health.Enabled = b
		}
	}

	// Compatibility variables, applied last so they always win.
	applyCompatEnvOverrides(cfg)
}

// applyCompatEnvOverrides applies the bare USE_SQLITE and DB_PATH variables.
// USE_SQLITE selects the storage backend: any value strconv.ParseBool accepts
// as true picks sqlite, false picks memory. DB_PATH sets the database file.
func applyCompatEnvOverrides(cfg *Config) {
	if val := os.Getenv("USE_SQLITE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			if b {
				cfg.Storage.Backend = "sqlite"
			} else {
				cfg.Storage.Backend = "memory"
			}
		}
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		cfg.Storage.SQLite.Path = val
	}
}
