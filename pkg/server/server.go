package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/w93163red/LivCap-Translate/pkg/config"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/handlers"
	"github.com/w93163red/LivCap-Translate/pkg/gateway/middleware"
	"github.com/w93163red/LivCap-Translate/pkg/telemetry/metrics"
)

// Options carries the collaborators the server wires into its routes.
// Limiter, Recorder, and Collector are optional; a nil value disables
// the corresponding feature.
type Options struct {
	// Sessions is the shared session manager behind every completion.
	Sessions handlers.SessionInvoker

	// Models resolves request model names and backs the catalog.
	Models handlers.ModelResolver

	// Limiter admits requests against daily per-model caps.
	Limiter handlers.UsageLimiter

	// Recorder receives usage records for completed requests.
	Recorder handlers.UsageRecorder

	// Collector records Prometheus metrics and serves the exposition
	// endpoint.
	Collector *metrics.Collector
}

// Server is the gateway's HTTP server. It owns the route table, the
// middleware chain, and the listener lifecycle.
type Server struct {
	config       *config.Config
	opts         Options
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the gateway server. Nothing listens until Start.
func NewServer(cfg *config.Config, opts Options) *Server {
	return &Server{
		config: cfg,
		opts:   opts,
		logger: slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until shutdown. Shutdown is
// triggered by context cancellation, SIGINT, or SIGTERM; in every case
// in-flight requests get the configured grace period to finish.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.routes()

	// WriteTimeout stays zero: SSE responses hold the connection open
	// for the lifetime of a generation.
	s.httpServer = &http.Server{
		Addr:              s.config.Server.ListenAddress(),
		Handler:           handler,
		ReadHeaderTimeout: s.config.Server.ReadHeaderTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway server", "address", s.httpServer.Addr)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server. It is safe to call more
// than once; only the first call does the work.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully assembled HTTP handler, routes and
// middleware included. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// routes assembles the route table and wraps it in the middleware chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	chatHandler := handlers.NewChatHandler(s.opts.Sessions, s.opts.Models, s.opts.Limiter, s.opts.Recorder)
	modelsHandler := handlers.NewModelsHandler(s.opts.Models)
	healthHandler := handlers.NewHealthHandler(s.opts.Sessions)

	if s.opts.Collector != nil {
		chatHandler.SetMetrics(s.opts.Collector)
	}

	s.handle(mux, "/health", healthHandler)
	s.handle(mux, "/v1/models", modelsHandler)
	s.handle(mux, "/models", modelsHandler)
	s.handle(mux, "/v1/chat/completions", chatHandler)
	s.handle(mux, "/chat/completions", chatHandler)
	s.handle(mux, "/v1/chat/completions/ws", handlers.NewWebSocketHandler())

	if s.opts.Collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.opts.Collector.Handler())
	}

	// RequestID sits outside Logging so the completion line carries the
	// ID; Recovery is outermost so a panic anywhere still produces a
	// well-formed 500.
	var handler http.Handler = mux
	handler = middleware.CORS(middleware.AllowLocalTools())(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// handle mounts a route, instrumented when a collector is configured.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.Handler) {
	if s.opts.Collector != nil {
		h = s.opts.Collector.Instrument(pattern, h)
	}
	mux.Handle(pattern, h)
}
