package observability

import (
	"time"

	"github.com/jonathan/cv-builder/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cv_builder"

// Outcome labels shared by the counters below.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the Prometheus collectors of one server process.
type Metrics struct {
	StoreUpdates      *prometheus.CounterVec
	Exports           *prometheus.CounterVec
	ExportDuration    prometheus.Histogram
	RateLimitAllowed  *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		StoreUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "store_updates_total", Help: "Document update attempts by operation and outcome."},
			[]string{"op", "outcome"},
		),
		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "exports_total", Help: "PDF export attempts by outcome."},
			[]string{"outcome"},
		),
		ExportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: namespace, Name: "export_duration_seconds", Help: "Time spent producing a PDF export.", Buckets: prometheus.ExponentialBuckets(0.05, 2, 10)},
		),
		RateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
			[]string{"limiter"},
		),
		RateLimitRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
			[]string{"limiter"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "active_sessions", Help: "Editing sessions currently held in memory."},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method and status code."},
			[]string{"method", "code"},
		),
	}
}

// RegisterCollectors registers every collector with reg.
func (m *Metrics) RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		m.StoreUpdates,
		m.Exports,
		m.ExportDuration,
		m.RateLimitAllowed,
		m.RateLimitRejected,
		m.ActiveSessions,
		m.HTTPRequests,
	)
}

// ObserveUpdate counts a document update attempt.
func (m *Metrics) ObserveUpdate(op store.Op, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.StoreUpdates.WithLabelValues(string(op), outcome).Inc()
}

// ObserveExport counts an export and records its duration.
func (m *Metrics) ObserveExport(outcome string, d time.Duration) {
	m.Exports.WithLabelValues(outcome).Inc()
	m.ExportDuration.Observe(d.Seconds())
}

// ObserveRateLimit counts one rate limiter decision.
func (m *Metrics) ObserveRateLimit(limiter string, allowed bool) {
	if allowed {
		m.RateLimitAllowed.WithLabelValues(limiter).Inc()
		return
	}
	m.RateLimitRejected.WithLabelValues(limiter).Inc()
}
