// Package metrics collects and exposes Prometheus metrics for the admin server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the metrics interface consumed by the auth service, the
// backend client and the HTTP middleware.
type Collector interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordRequest(method string, statusCode int)
	RecordBackendLatency(duration time.Duration)
}

// PromCollector is the Prometheus-backed Collector implementation.
type PromCollector struct {
	registry *prometheus.Registry

	loginSuccess   prometheus.Counter
	loginFail      *prometheus.CounterVec
	requests       *prometheus.CounterVec
	backendLatency prometheus.Histogram
}

// NewPromCollector creates a PromCollector and registers its metrics on a
// fresh registry.
func NewPromCollector() *PromCollector {
	registry := prometheus.NewRegistry()

	c := &PromCollector{
		registry: registry,
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "momentam_admin_login_success_total",
			Help: "Total number of successful admin logins.",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "momentam_admin_login_fail_total",
			Help: "Total number of failed admin logins by reason.",
		}, []string{"reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "momentam_admin_http_requests_total",
			Help: "Total number of HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		backendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "momentam_admin_backend_latency_seconds",
			Help:    "Latency of calls to the Momentam REST backend.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(c.loginSuccess, c.loginFail, c.requests, c.backendLatency)

	return c
}

func (c *PromCollector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

func (c *PromCollector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

func (c *PromCollector) RecordRequest(method string, statusCode int) {
	c.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

func (c *PromCollector) RecordBackendLatency(duration time.Duration) {
	c.backendLatency.Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *PromCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var _ Collector = (*PromCollector)(nil)

// Nop is a Collector that discards everything. Used as the default in
// constructors and in tests.
type Nop struct{}

func (Nop) RecordLoginSuccess()                {}
func (Nop) RecordLoginFailure(string)          {}
func (Nop) RecordRequest(string, int)          {}
func (Nop) RecordBackendLatency(time.Duration) {}

var _ Collector = Nop{}
