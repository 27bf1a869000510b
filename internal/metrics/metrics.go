// Package metrics instruments upstream transit API calls with Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for outbound upstream requests.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamSeconds  *prometheus.HistogramVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamErrors   *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		UpstreamSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transitdash_upstream_request_seconds",
				Help:    "Latency of requests to upstream transit APIs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitdash_upstream_requests_total",
				Help: "Requests to upstream transit APIs by HTTP status",
			},
			[]string{"endpoint", "status"},
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitdash_upstream_errors_total",
				Help: "Upstream calls that failed, by error kind",
			},
			[]string{"endpoint", "kind"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.UpstreamSeconds,
		m.UpstreamRequests,
		m.UpstreamErrors,
	)
	return m
}

// ObserveRequest records one completed upstream round trip. status is 0 when
// no response was received.
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamSeconds.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	label := "none"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(endpoint, label).Inc()
}

// ObserveError records a failed upstream call.
func (m *Metrics) ObserveError(endpoint, kind string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(endpoint, kind).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
