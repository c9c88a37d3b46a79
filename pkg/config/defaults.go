package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultServerHost        = "127.0.0.1"
	DefaultServerPort        = 11435
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second

	// Backend defaults
	DefaultBackendTimeout = 120 * time.Second

	// Session defaults
	DefaultSessionMinInterval = 2 * time.Second

	// Usage defaults
	DefaultUsageEnabled       = true
	DefaultUsageDatabase      = "data/usage.db"
	DefaultUsageBuffer        = 1000
	DefaultUsageRetentionDays = 90
	DefaultUsagePruneSchedule = "0 3 * * *"
	DefaultUsageMaxRecords    = int64(0)

	// Limits defaults
	DefaultLimitsDatabase         = "data/limits.db"
	DefaultLimitsSnapshotInterval = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultLoggingMaxSizeMB  = 100
	DefaultLoggingMaxBackups = 3
	DefaultLoggingMaxAgeDays = 28
	DefaultMetricsEnabled    = true
	DefaultMetricsPath       = "/metrics"
)

// DefaultConfig returns a configuration with every field set to its
// default value. Load unmarshals the configuration file over this
// seed, so boolean fields that default to true survive being absent from
// the file while an explicit "enabled: false" still takes effect.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              DefaultServerHost,
			Port:              DefaultServerPort,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
		Backend: BackendConfig{
			Timeout: DefaultBackendTimeout,
		},
		Session: SessionConfig{
			MinInterval: DefaultSessionMinInterval,
		},
		Usage: UsageConfig{
			Enabled:       DefaultUsageEnabled,
			Database:      DefaultUsageDatabase,
			Buffer:        DefaultUsageBuffer,
			RetentionDays: DefaultUsageRetentionDays,
			PruneSchedule: DefaultUsagePruneSchedule,
			MaxRecords:    DefaultUsageMaxRecords,
		},
		Limits: LimitsConfig{
			Database:         DefaultLimitsDatabase,
			SnapshotInterval: DefaultLimitsSnapshotInterval,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:      DefaultLoggingLevel,
				Format:     DefaultLoggingFormat,
				MaxSizeMB:  DefaultLoggingMaxSizeMB,
				MaxBackups: DefaultLoggingMaxBackups,
				MaxAgeDays: DefaultLoggingMaxAgeDays,
			},
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
				Path:    DefaultMetricsPath,
			},
		},
	}
}

// ApplyDefaults applies default values to any fields that have zero
// values. It is idempotent and safe to call multiple times. Boolean
// fields are left untouched; use DefaultConfig for a fully seeded
// configuration that distinguishes "absent" from "explicitly false".
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Backend defaults
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}

	// Session defaults
	if cfg.Session.MinInterval == 0 {
		cfg.Session.MinInterval = DefaultSessionMinInterval
	}

	// Usage defaults
	if cfg.Usage.Database == "" {
		cfg.Usage.Database = DefaultUsageDatabase
	}
	if cfg.Usage.Buffer == 0 {
		cfg.Usage.Buffer = DefaultUsageBuffer
	}
	if cfg.Usage.RetentionDays == 0 {
		cfg.Usage.RetentionDays = DefaultUsageRetentionDays
	}
	if cfg.Usage.PruneSchedule == "" {
		cfg.Usage.PruneSchedule = DefaultUsagePruneSchedule
	}

	// Limits defaults
	if cfg.Limits.Database == "" {
		cfg.Limits.Database = DefaultLimitsDatabase
	}
	if cfg.Limits.SnapshotInterval == 0 {
		cfg.Limits.SnapshotInterval = DefaultLimitsSnapshotInterval
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.MaxSizeMB == 0 {
		cfg.Telemetry.Logging.MaxSizeMB = DefaultLoggingMaxSizeMB
	}
	if cfg.Telemetry.Logging.MaxBackups == 0 {
		cfg.Telemetry.Logging.MaxBackups = DefaultLoggingMaxBackups
	}
	if cfg.Telemetry.Logging.MaxAgeDays == 0 {
		cfg.Telemetry.Logging.MaxAgeDays = DefaultLoggingMaxAgeDays
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
