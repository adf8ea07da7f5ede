// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"carpool/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SharesCreated       prometheus.Counter
	RidesRequested      prometheus.Counter
	RequestTransitions  *prometheus.CounterVec
	ApprovalsRejectFull prometheus.Counter
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		SharesCreated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shares_created_total",
				Help:      "Ride offers posted by drivers",
			},
		),
		RidesRequested: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ride_requests_total",
				Help:      "Seat requests raised by riders",
			},
		),
		RequestTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_transitions_total",
				Help:      "Seat requests moved out of PENDING, by new status",
			},
			[]string{"status"},
		),
		ApprovalsRejectFull: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approvals_rejected_full_total",
				Help:      "Approvals rolled back because the share had no spots left",
			},
		),
	}
}

// ObserveHTTP records one finished request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) ShareCreated() { m.SharesCreated.Inc() }

func (m *Metrics) RideRequested() { m.RidesRequested.Inc() }

func (m *Metrics) SpotsExhausted() { m.ApprovalsRejectFull.Inc() }

func (m *Metrics) RequestTransitioned(status domain.RequestStatus) {
	m.RequestTransitions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
