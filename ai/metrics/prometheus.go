// Package metrics exports routing metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/coursebot/ai/cache"
	"github.com/hrygo/coursebot/ai/routing"
)

const namespace = "coursebot"

// PrometheusExporter records routing, transport and cache metrics on a private registry.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Routing metrics
	routeRequests      *prometheus.CounterVec
	routeLatency       *prometheus.HistogramVec
	routeAttempts      prometheus.Histogram
	reroutes           *prometheus.CounterVec
	collaboratorErrors *prometheus.CounterVec

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

var _ routing.Recorder = (*PrometheusExporter)(nil)

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64

	// GoCollectors adds the Go runtime and process collectors.
	GoCollectors bool
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		GoCollectors:   true,
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.routeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "requests_total",
			Help:      "Resolved queries by expert and reason",
		},
		[]string{"expert", "reason"},
	)

	e.routeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "latency_seconds",
			Help:      "Query routing latency in seconds, including the expert answer",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"expert"},
	)

	e.routeAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "attempts",
			Help:      "Classification attempts per query",
			Buckets:   []float64{1, 2, 3, 4},
		},
	)

	e.reroutes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "reroutes_total",
			Help:      "Assignments rejected by the relevance policy",
		},
		[]string{"expert"},
	)

	e.collaboratorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "collaborator_errors_total",
			Help:      "Failed collaborator calls by stage",
		},
		[]string{"stage"},
	)

	e.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		},
		[]string{"method", "path", "code"},
	)

	e.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		e.routeRequests,
		e.routeLatency,
		e.routeAttempts,
		e.reroutes,
		e.collaboratorErrors,
		e.httpRequests,
		e.httpLatency,
	)
	if cfg.GoCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return e
}

// RecordRoute records a resolved query.
func (e *PrometheusExporter) RecordRoute(expert, reason string, attempts int, latency time.Duration) {
	e.routeRequests.WithLabelValues(expert, reason).Inc()
	e.routeLatency.WithLabelValues(expert).Observe(latency.Seconds())
	e.routeAttempts.Observe(float64(attempts))
}

// RecordReroute records a rejected assignment.
func (e *PrometheusExporter) RecordReroute(expert string) {
	e.reroutes.WithLabelValues(expert).Inc()
}

// RecordCollaboratorError records a failed collaborator call.
func (e *PrometheusExporter) RecordCollaboratorError(stage string) {
	e.collaboratorErrors.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest records a served HTTP request. path is the route pattern, not the raw URL.
func (e *PrometheusExporter) RecordHTTPRequest(method, path string, code int, latency time.Duration) {
	e.httpRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	e.httpLatency.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RegisterSessionGauge exports the live session count reported by count.
func (e *PrometheusExporter) RegisterSessionGauge(count func() int) {
	e.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of user sessions held in memory",
		},
		func() float64 { return float64(count()) },
	))
}

// RegisterEmbeddingCache exports the counters of a query-embedding cache.
func (e *PrometheusExporter) RegisterEmbeddingCache(stats func() cache.EmbeddingCacheStats) {
	e.registry.MustRegister(
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "embedding_cache",
				Name:      "hits_total",
				Help:      "Query embeddings served from cache",
			},
			func() float64 { return float64(stats().Hits) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "embedding_cache",
				Name:      "misses_total",
				Help:      "Query embeddings requested from the provider",
			},
			func() float64 { return float64(stats().Misses) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "embedding_cache",
				Name:      "entries",
				Help:      "Query embeddings currently cached",
			},
			func() float64 { return float64(stats().Size) },
		),
	)
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
