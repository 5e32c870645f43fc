package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so tests can build as many as they need.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	unauthenticated prometheus.Counter
}

// NewMetrics registers the service collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodorder_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodorder_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodorder_http_errors_total",
			Help: "Failures translated into error envelopes, by kind.",
		}, []string{"kind"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodorder_auth_token_rejections_total",
			Help: "Bearer tokens ignored by the authentication middleware, by reason.",
		}, []string{"reason"}),
		unauthenticated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodorder_auth_unauthenticated_total",
			Help: "Protected requests denied for missing credentials.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.errors, m.tokenRejections, m.unauthenticated,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments the error counter for kind.
func (m *Metrics) RecordError(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

// RecordTokenRejection counts a bearer token the middleware refused.
func (m *Metrics) RecordTokenRejection(reason string) {
	if m == nil {
		return
	}
	m.tokenRejections.WithLabelValues(reason).Inc()
}

// RecordUnauthenticated counts a 401 issued by the entry point.
func (m *Metrics) RecordUnauthenticated() {
	if m == nil {
		return
	}
	m.unauthenticated.Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
