// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers application metrics.
type Collector struct {
	authzDecisions *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	cascadeResidue prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listly_authz_decisions_total",
			Help: "Authorization decisions by mode and outcome.",
		}, []string{"mode", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listly_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listly_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		cascadeResidue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listly_cascade_residue_total",
			Help: "Delete-user cascades that completed with a stale grantee residue.",
		}),
	}

	reg.MustRegister(
		c.authzDecisions,
		c.httpRequests,
		c.httpLatency,
		c.cascadeResidue,
	)

	return c
}

// RecordDecision records one authorization decision.
func (c *Collector) RecordDecision(mode string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	c.authzDecisions.WithLabelValues(mode, outcome).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method string, statusCode int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordCascadeResidue records a cascade that left a stale grantee entry
// behind for out-of-band reconciliation.
func (c *Collector) RecordCascadeResidue() {
	c.cascadeResidue.Inc()
}

// Handler returns the scrape endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
