package observability

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig holds configuration for Prometheus metrics
type MetricsConfig struct {
	// Logger for structured logging
	Logger *slog.Logger

	// Namespace for metrics (e.g., "soup")
	Namespace string

	// Buckets for response time histogram
	Buckets []float64

	// Skipper defines a function to skip middleware
	Skipper func(r *http.Request) bool

	// SkipPaths defines paths that should not be metered
	SkipPaths []string

	// RuntimeCollectors adds the Go and process collectors to the registry.
	RuntimeCollectors bool
}

// Metrics owns a private registry with the HTTP and page shell collectors.
type Metrics struct {
	registry *prometheus.Registry
	config   *MetricsConfig
	logger   *slog.Logger

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	drawerTransitions *prometheus.CounterVec
	gateFlips         *prometheus.CounterVec
	authOutcomes      *prometheus.CounterVec
	liveSessions      prometheus.Gauge
	liveEvents        *prometheus.CounterVec
}

// DefaultMetricsConfig returns a default metrics configuration
func DefaultMetricsConfig(namespace string) *MetricsConfig {
	return &MetricsConfig{
		Namespace:         namespace,
		Buckets:           []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		SkipPaths:         []string{"/metrics", "/health", "/live-check", "/ready"},
		RuntimeCollectors: true,
	}
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics(config *MetricsConfig) *Metrics {
	if config == nil {
		config = DefaultMetricsConfig("soup")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ns := config.Namespace
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		config:   config,
		logger:   logger,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   config.Buckets,
			},
			[]string{"method", "route", "status"},
		),
		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "requests_active",
				Help:      "Number of in-flight HTTP requests",
			},
		),
		drawerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "shell",
				Name:      "drawer_transitions_total",
				Help:      "Mobile drawer state changes by trigger",
			},
			[]string{"to", "trigger"},
		),
		gateFlips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "shell",
				Name:      "gate_flips_total",
				Help:      "Responsive render gate visibility changes",
			},
			[]string{"gate", "visible"},
		),
		authOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "auth",
				Name:      "snapshots_total",
				Help:      "Auth snapshot lookups by outcome",
			},
			[]string{"outcome"},
		),
		liveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "live",
				Name:      "sessions_active",
				Help:      "Connected live sessions",
			},
		),
		liveEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "live",
				Name:      "events_total",
				Help:      "Client events handled by live sessions",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.activeRequests,
		m.drawerTransitions,
		m.gateFlips,
		m.authOutcomes,
		m.liveSessions,
		m.liveEvents,
	)
	if config.RuntimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	logger.Info("initializing prometheus metrics", "namespace", ns)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
// Endpoint: GET /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count, latency and size. Requests are labelled
// with the chi route pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.config.Skipper != nil && m.config.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}
		for _, path := range m.config.SkipPaths {
			if r.URL.Path == path {
				next.ServeHTTP(w, r)
				return
			}
		}

		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		start := time.Now()
		rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routePattern(r)
		status := strconv.Itoa(rw.statusCode)
		m.requestsTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.responseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// DrawerTransition counts a drawer state change.
func (m *Metrics) DrawerTransition(to, trigger string) {
	m.drawerTransitions.WithLabelValues(to, trigger).Inc()
}

// GateFlip counts a gate visibility change.
func (m *Metrics) GateFlip(gate string, visible bool) {
	m.gateFlips.WithLabelValues(gate, strconv.FormatBool(visible)).Inc()
}

// AuthOutcome counts one auth snapshot lookup. It matches auth.Config.Observer.
func (m *Metrics) AuthOutcome(outcome string) {
	m.authOutcomes.WithLabelValues(outcome).Inc()
}

// SessionOpened and SessionClosed track connected live sessions.
func (m *Metrics) SessionOpened() { m.liveSessions.Inc() }

func (m *Metrics) SessionClosed() { m.liveSessions.Dec() }

// LiveEvent counts one client event.
func (m *Metrics) LiveEvent(kind string) {
	m.liveEvents.WithLabelValues(kind).Inc()
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack is required by the websocket upgrade on /live.
func (rw *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("observability: %T does not support hijacking", rw.ResponseWriter)
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}
