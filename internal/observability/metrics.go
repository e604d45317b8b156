// Package observability holds the Prometheus instrumentation.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the registry and every counter the service emits.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	authDecisions *prometheus.CounterVec
	cascadeSteps  *prometheus.CounterVec
}

// NewMetrics builds and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuforge_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menuforge_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuforge_authz_decisions_total",
			Help: "Authorization outcomes by decision.",
		}, []string{"decision"}),
		cascadeSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuforge_cascade_steps_total",
			Help: "Account cascade step outcomes.",
		}, []string{"step", "outcome"}),
	}
	registry.MustRegister(m.httpRequests, m.httpDuration, m.authDecisions, m.cascadeSteps)
	return m
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDecision counts an authorization outcome.
func (m *Metrics) RecordDecision(decision string) {
	m.authDecisions.WithLabelValues(decision).Inc()
}

// RecordStep counts a cascade step outcome.
func (m *Metrics) RecordStep(step, outcome string) {
	m.cascadeSteps.WithLabelValues(step, outcome).Inc()
}

// Middleware instruments requests with the chi route pattern so metric
// cardinality stays bounded by the route table, not by path values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
