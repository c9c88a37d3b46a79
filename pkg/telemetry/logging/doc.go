// Package logging builds the root slog logger for the gateway.
//
// The logger writes JSON or text to stderr or to a size-rotated log file.
// Components derive scoped loggers from the root:
//
//	logger, closeLogs, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	defer closeLogs()
//	slog.SetDefault(logger)
//
// Every component in the gateway logs through a child logger carrying a
// "component" attribute, so log lines can be filtered per subsystem.
package logging
