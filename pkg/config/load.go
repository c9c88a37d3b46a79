package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, fills in defaults, and
// validates the result. The file is unmarshaled over a fully defaulted
// configuration, so fields absent from the file keep their default values.
// An empty path skips the file entirely and returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv behaves like Load and then overlays environment variables
// on the result, so the environment wins over the file. The overlaid
// configuration is validated a second time.
//
// Variables follow the pattern LIVCAP_<SECTION>_<FIELD>, for example
// LIVCAP_SERVER_PORT or LIVCAP_SESSION_MIN_INTERVAL.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	overlayEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// overlayEnv copies set environment variables over the loaded values.
// A variable that fails to parse is skipped and the loaded value stands.
func overlayEnv(cfg *Config) {
	// Server overrides
	if val := os.Getenv("LIVCAP_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("LIVCAP_SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("LIVCAP_SERVER_READ_HEADER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadHeaderTimeout = d
		}
	}
	if val := os.Getenv("LIVCAP_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("LIVCAP_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Backend overrides. GEMINI_API_KEY is the conventional variable for
	// the key itself and fills in only when nothing else set one.
	if val := os.Getenv("LIVCAP_BACKEND_API_KEY"); val != "" {
		cfg.Backend.APIKey = val
	}
	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if val := os.Getenv("LIVCAP_BACKEND_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Backend.Timeout = d
		}
	}

	// Session overrides
	if val := os.Getenv("LIVCAP_SESSION_MIN_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Session.MinInterval = d
		}
	}

	// Model table overrides
	if val := os.Getenv("LIVCAP_MODELS_FILE"); val != "" {
		cfg.Models.File = val
	}
	if val := os.Getenv("LIVCAP_MODELS_WATCH"); val != "" {
		if watch, err := strconv.ParseBool(val); err == nil {
			cfg.Models.Watch = watch
		}
	}

	// Usage overrides
	if val := os.Getenv("LIVCAP_USAGE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Enabled = enabled
		}
	}
	if val := os.Getenv("LIVCAP_USAGE_DATABASE"); val != "" {
		cfg.Usage.Database = val
	}
	if val := os.Getenv("LIVCAP_USAGE_BUFFER"); val != "" {
		if buffer, err := strconv.Atoi(val); err == nil {
			cfg.Usage.Buffer = buffer
		}
	}
	if val := os.Getenv("LIVCAP_USAGE_RETENTION_DAYS"); val != "" {
		if days, err := strconv.Atoi(val); err == nil {
			cfg.Usage.RetentionDays = days
		}
	}
	if val := os.Getenv("LIVCAP_USAGE_PRUNE_SCHEDULE"); val != "" {
		cfg.Usage.PruneSchedule = val
	}
	if val := os.Getenv("LIVCAP_USAGE_MAX_RECORDS"); val != "" {
		if limit, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Usage.MaxRecords = limit
		}
	}

	// Limits overrides. Per-model caps are file-only; the flat
	// environment namespace has no good shape for a map.
	if val := os.Getenv("LIVCAP_LIMITS_DAILY_CAP"); val != "" {
		if limit, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Limits.DailyCap = limit
		}
	}
	if val := os.Getenv("LIVCAP_LIMITS_DATABASE"); val != "" {
		cfg.Limits.Database = val
	}
	if val := os.Getenv("LIVCAP_LIMITS_SNAPSHOT_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Limits.SnapshotInterval = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("LIVCAP_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("LIVCAP_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("LIVCAP_TELEMETRY_LOGGING_FILE"); val != "" {
		cfg.Telemetry.Logging.File = val
	}
	if val := os.Getenv("LIVCAP_TELEMETRY_METRICS_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = enabled
		}
	}
	if val := os.Getenv("LIVCAP_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
