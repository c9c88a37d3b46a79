package config

import (
	"fmt"
	"strings"
)

// FieldError ties a validation problem to the dotted path of the field
// that caused it, such as "server.port".
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError carries every FieldError found in one Validate pass.
// Callers that want per-field detail pull it out with errors.As and walk
// Errors; everyone else gets a readable multi-line message.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "configuration validation failed"
	case 1:
		return "configuration validation failed: " + e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("  - " + err.Error() + "\n")
	}
	return sb.String()
}

// Validate checks every section of the configuration and reports all
// problems at once as a ValidationError, so a broken file surfaces its
// whole damage in a single run. A valid configuration returns nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, cfg.Server.validate()...)
	errs = append(errs, cfg.Backend.validate()...)
	errs = append(errs, cfg.Session.validate()...)
	errs = append(errs, cfg.Models.validate()...)
	errs = append(errs, cfg.Usage.validate()...)
	errs = append(errs, cfg.Limits.validate()...)
	errs = append(errs, cfg.Telemetry.validate()...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func (c *ServerConfig) validate() []FieldError {
	var errs []FieldError

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port),
		})
	}
	if c.ReadHeaderTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_header_timeout",
			Message: "read header timeout must not be negative",
		})
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must not be negative",
		})
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must not be negative",
		})
	}

	return errs
}

func (c *BackendConfig) validate() []FieldError {
	var errs []FieldError

	// The API key is deliberately not required here: it can arrive via
	// the GEMINI_API_KEY environment variable, and a missing key only
	// matters once a completion is attempted.
	if c.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "backend.timeout",
			Message: "timeout must not be negative",
		})
	}

	return errs
}

func (c *SessionConfig) validate() []FieldError {
	var errs []FieldError

	if c.MinInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "session.min_interval",
			Message: "min interval must not be negative",
		})
	}

	return errs
}

func (c *ModelsConfig) validate() []FieldError {
	var errs []FieldError

	if c.Watch && c.File == "" {
		errs = append(errs, FieldError{
			Field:   "models.watch",
			Message: "watch requires a model table file",
		})
	}

	return errs
}

func (c *UsageConfig) validate() []FieldError {
	var errs []FieldError

	if c.Enabled && c.Database == "" {
		errs = append(errs, FieldError{
			Field:   "usage.database",
			Message: "database path is required when usage recording is enabled",
		})
	}
	if c.Buffer < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.buffer",
			Message: "buffer must not be negative",
		})
	}
	if c.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.retention_days",
			Message: "retention days must not be negative",
		})
	}
	if c.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.max_records",
			Message: "max records must not be negative",
		})
	}

	return errs
}

func (c *LimitsConfig) validate() []FieldError {
	var errs []FieldError

	if c.DailyCap < 0 {
		errs = append(errs, FieldError{
			Field:   "limits.daily_cap",
			Message: "daily cap must not be negative",
		})
	}
	for model, limit := range c.PerModel {
		if limit < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("limits.per_model.%s", model),
				Message: "per-model cap must not be negative",
			})
		}
	}
	if c.SnapshotInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "limits.snapshot_interval",
			Message: "snapshot interval must not be negative",
		})
	}

	return errs
}

func (c *TelemetryConfig) validate() []FieldError {
	var errs []FieldError

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("level must be one of debug, info, warn, error, got %q", c.Logging.Level),
		})
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("format must be json or text, got %q", c.Logging.Format),
		})
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}
