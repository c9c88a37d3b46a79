package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the full configuration tree for the translation gateway,
// one section per subsystem.
type Config struct {
	Server ServerConfig `yaml:"server"`

	Backend BackendConfig `yaml:"backend"`

	// Session paces backend invocations through the shared session
	// manager.
	Session SessionConfig `yaml:"session"`

	Models ModelsConfig `yaml:"models"`

	Usage UsageConfig `yaml:"usage"`

	Limits LimitsConfig `yaml:"limits"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig shapes the HTTP listener.
type ServerConfig struct {
	// Host is the interface the server binds to.
	// Default: "127.0.0.1"
	Host string `yaml:"host"`

	// Port is the TCP port the server listens on.
	// Default: 11435
	Port int `yaml:"port"`

	// ReadHeaderTimeout is the maximum duration for reading request
	// headers. A zero or negative value means no timeout.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ListenAddress returns the host:port string the server binds to.
func (c ServerConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BackendConfig covers the connection to Gemini.
type BackendConfig struct {
	// APIKey authenticates against the Gemini API. If empty, the
	// GEMINI_API_KEY environment variable is used.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single non-streaming generation call. Zero means
	// no deadline beyond the request context.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig tunes how the gateway spaces work onto the single
// backend session.
type SessionConfig struct {
	// MinInterval is the minimum spacing between the starts of
	// successive backend invocations. Zero disables pacing.
	// Default: 2s
	MinInterval time.Duration `yaml:"min_interval"`
}

// ModelsConfig selects the model table and whether it is watched.
type ModelsConfig struct {
	// File is an optional YAML file overriding the built-in model
	// table. Empty means the built-in table is used.
	File string `yaml:"file"`

	// Watch reloads the model table when File changes on disk.
	// Requires File to be set.
	// Default: false
	Watch bool `yaml:"watch"`
}

// UsageConfig governs usage recording and retention.
type UsageConfig struct {
	// Enabled controls whether usage records are written at all.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Database is the SQLite file usage records are stored in.
	// Default: "data/usage.db"
	Database string `yaml:"database"`

	// Buffer is the size of the asynchronous recording queue. Records
	// are dropped with a logged error when the queue is full.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// RetentionDays is the age in days past which records are pruned.
	// 0 disables age-based pruning.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for scheduled pruning.
	// Empty disables scheduled pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the total number of retained records. When the
	// count exceeds the cap, the oldest records are pruned. 0 disables
	// count-based pruning.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// LimitsConfig sets daily per-model request caps and where their
// counters persist.
type LimitsConfig struct {
	// DailyCap is the number of requests each model may serve per UTC
	// day. 0 disables the cap.
	// Default: 0
	DailyCap int64 `yaml:"daily_cap"`

	// PerModel overrides DailyCap for specific models. A 0 entry makes
	// that model unlimited.
	PerModel map[string]int64 `yaml:"per_model"`

	// Database is the SQLite file counters are persisted in so a
	// restart does not reset the day. Empty keeps counters in memory.
	// Default: "data/limits.db"
	Database string `yaml:"database"`

	// SnapshotInterval is how often dirty counters are persisted.
	// Default: 30s
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

// TelemetryConfig groups the observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig shapes the structured logger and its file rotation.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// File is the log file to write to, rotated by size. Empty writes
	// to stderr.
	File string `yaml:"file"`

	// MaxSizeMB is the size in megabytes at which the log file is
	// rotated. Ignored when File is empty.
	// Default: 100
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep.
	// Default: 3
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is the age in days past which rotated log files are
	// deleted.
	// Default: 28
	MaxAgeDays int `yaml:"max_age_days"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics endpoint is served on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
