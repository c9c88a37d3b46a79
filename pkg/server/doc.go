// Package server ties the handlers, middleware, and metrics together
// into the gateway's HTTP server and manages its lifecycle: start,
// graceful shutdown, and OS signal handling (SIGINT, SIGTERM).
//
// # Routes
//
//	GET  /health               liveness and backend session readiness
//	GET  /v1/models            model catalog
//	GET  /models               model catalog (unprefixed alias)
//	POST /v1/chat/completions  chat completions, bulk and streaming
//	POST /chat/completions     chat completions (unprefixed alias)
//	/v1/chat/completions/ws    501, streaming is SSE only
//	GET  /metrics              Prometheus exposition (when enabled)
//
// # Wiring
//
//	srv := server.NewServer(cfg, server.Options{
//	    Sessions:  manager,
//	    Models:    registry,
//	    Limiter:   tracker,
//	    Recorder:  recorder,
//	    Collector: collector,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until the context is cancelled or a termination signal
// arrives, then drains in-flight requests for the configured shutdown
// timeout.
package server
