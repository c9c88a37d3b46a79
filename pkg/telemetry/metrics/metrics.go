package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled controls whether metrics are recorded at all. A disabled
	// collector turns every record method into a no-op.
	Enabled bool

	// Namespace is the metric name prefix. Default: "livcap".
	Namespace string

	// Subsystem is the second metric name segment. Default: "gateway".
	Subsystem string
}

// Collector owns every Prometheus metric the gateway records. It keeps a
// private registry so the exposition endpoint serves exactly the gateway's
// own series.
//
// The collector satisfies both the session manager's Metrics interface and
// the chat handler's CompletionMetrics interface, so one instance is
// threaded through the whole request path.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	// HTTP surface
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	// Completions
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	streamDeltasTotal  *prometheus.CounterVec

	// Shared session
	sessionRestartsTotal prometheus.Counter
	paceWaitSeconds      prometheus.Histogram
}

// NewCollector creates a metrics collector registered against the given
// registry. If registry is nil, a fresh private registry is used.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "livcap"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}

	// Buckets sized for LLM latencies: sub-second cache-warm responses
	// through minute-long streamed generations.
	durationBuckets := []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"endpoint", "method", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   durationBuckets,
			},
			[]string{"endpoint"},
		),

		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		completionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completions_total",
				Help:      "Total number of completion attempts by model, mode, and outcome",
			},
			[]string{"model", "mode", "status"},
		),

		completionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completion_duration_seconds",
				Help:      "End-to-end duration of completion requests in seconds",
				Buckets:   durationBuckets,
			},
			[]string{"model", "mode"},
		),

		streamDeltasTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stream_deltas_total",
				Help:      "Total number of stream delta events delivered to clients",
			},
			[]string{"model"},
		),

		sessionRestartsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "session_restarts_total",
				Help:      "Number of times the shared backend session was re-created after going dead",
			},
		),

		paceWaitSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pace_wait_seconds",
				Help:      "Time invocations spent queued at the session pacing gate",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.requestsInFlight,
		c.completionsTotal,
		c.completionDuration,
		c.streamDeltasTotal,
		c.sessionRestartsTotal,
		c.paceWaitSeconds,
	)

	return c
}

// RecordCompletion counts one backend-touching completion attempt.
// mode is "bulk" or "stream". errorType is empty on success; a non-empty
// value becomes the status label so failures break out by error class.
func (c *Collector) RecordCompletion(model, mode, errorType string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	status := "ok"
	if errorType != "" {
		status = errorType
	}

	c.completionsTotal.WithLabelValues(model, mode, status).Inc()
	c.completionDuration.WithLabelValues(model, mode).Observe(duration.Seconds())
}

// RecordStreamDelta counts one delta event delivered to a client.
func (c *Collector) RecordStreamDelta(model string) {
	if !c.config.Enabled {
		return
	}
	c.streamDeltasTotal.WithLabelValues(model).Inc()
}

// SessionRecreated counts one transparent re-create of the shared
// backend session.
func (c *Collector) SessionRecreated() {
	if !c.config.Enabled {
		return
	}
	c.sessionRestartsTotal.Inc()
}

// PaceWaited records how long an invocation sat at the pacing gate.
func (c *Collector) PaceWaited(d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.paceWaitSeconds.Observe(d.Seconds())
}

// Instrument wraps an HTTP handler with request counting, duration
// observation, and the in-flight gauge. endpoint becomes the metric label,
// so callers pass the route pattern rather than the raw URL to keep
// cardinality bounded. A disabled collector returns next unchanged.
func (c *Collector) Instrument(endpoint string, next http.Handler) http.Handler {
	if !c.config.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.requestsInFlight.Inc()
		defer c.requestsInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		c.requestsTotal.WithLabelValues(endpoint, r.Method, strconv.Itoa(sw.status)).Inc()
		c.requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	})
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// statusWriter captures the response status code for the request counter.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so SSE streaming keeps working
// through the instrumented handler.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
