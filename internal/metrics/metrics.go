// Package metrics holds the Prometheus collectors for classification runs,
// classifier calls, and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/pkg/middleware"
)

// Classify outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Metrics owns a registry and the service collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	ClassifyDuration *prometheus.HistogramVec
	ClassifyTotal    *prometheus.CounterVec
	GatewayDuration  *prometheus.HistogramVec
	GatewayTotal     *prometheus.CounterVec
	Violations       *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPTotal        *prometheus.CounterVec
}

// New creates the collectors under cfg.Namespace and registers them, along
// with the Go runtime and process collectors, on a fresh registry.
func New(cfg *config.MetricsConfig) *Metrics {
	ns := cfg.Namespace

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ClassifyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "classify_duration_seconds",
				Help:      "End-to-end classify duration in seconds",
				Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),

		ClassifyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "classify_total",
				Help:      "Classify requests by outcome",
			},
			[]string{"outcome"},
		),

		GatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "gateway_call_duration_seconds",
				Help:      "Classifier provider call duration in seconds",
				Buckets:   []float64{0.25, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),

		GatewayTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "gateway_calls_total",
				Help:      "Classifier provider calls by provider, model, and outcome",
			},
			[]string{"provider", "model", "outcome"},
		),

		Violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "validation_violations_total",
				Help:      "Classifier output violations by kind",
			},
			[]string{"kind"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		HTTPTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ClassifyDuration,
		m.ClassifyTotal,
		m.GatewayDuration,
		m.GatewayTotal,
		m.Violations,
		m.HTTPDuration,
		m.HTTPTotal,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveClassify records one classify request.
func (m *Metrics) ObserveClassify(outcome string, elapsed time.Duration) {
	m.ClassifyTotal.WithLabelValues(outcome).Inc()
	m.ClassifyDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveGateway records one provider attempt. Its signature matches
// gateway.Observer.
func (m *Metrics) ObserveGateway(provider, model, outcome string, elapsed time.Duration) {
	m.GatewayTotal.WithLabelValues(provider, model, outcome).Inc()
	m.GatewayDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveViolation records one output violation of the given kind.
func (m *Metrics) ObserveViolation(kind string) {
	m.Violations.WithLabelValues(kind).Inc()
}

// Middleware records request counts and durations. The route label is the
// matched ServeMux pattern so path parameters do not inflate cardinality.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := middleware.NewStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			m.HTTPTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
