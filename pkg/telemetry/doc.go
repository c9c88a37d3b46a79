// Package telemetry groups the gateway's observability subpackages.
//
// The logging subpackage builds the root structured logger, and the
// metrics subpackage owns the Prometheus collector and exposition
// endpoint. Both are wired once at startup and threaded through the
// components that report into them.
package telemetry
