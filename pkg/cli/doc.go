// Package cli holds the small shared pieces of the livcap-translate
// command line: output rendering, typed command errors, and signal-driven
// shutdown.
//
// Command results render through Write in either text or JSON:
//
//	format := cli.ParseFormat(flags.format)
//	if err := cli.Write(os.Stdout, format, result); err != nil {
//		return err
//	}
//
// Failures bubble up as *ConfigError (bad configuration, possibly naming
// the offending key) or *CommandError (execution failure tagged with the
// subcommand), both of which unwrap to the underlying cause.
//
// ShutdownContext ties process shutdown to context cancellation:
//
//	ctx := cli.ShutdownContext()
//	if err := srv.Start(ctx); err != nil { ... }
package cli
