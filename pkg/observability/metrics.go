package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors for store operations, validation and HTTP.
type Metrics struct {
	StoreOps      *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	Validations   *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netspec_store_operations_total",
				Help: "Total number of spec store operations",
			},
			[]string{"op", "result"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netspec_store_operation_duration_seconds",
				Help:    "Duration of spec store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netspec_validations_total",
				Help: "Total number of spec validations",
			},
			[]string{"subject", "result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netspec_http_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"route", "method", "code"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.StoreOps, m.StoreDuration, m.Validations, m.HTTPRequests)
	}
	return m
}

// ObserveStore records one store operation.
func (m *Metrics) ObserveStore(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.StoreOps.WithLabelValues(op, Result(err)).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveValidation records one validation of the given subject.
func (m *Metrics) ObserveValidation(subject string, err error) {
	if m == nil {
		return
	}
	result := "valid"
	if err != nil {
		result = "invalid"
	}
	m.Validations.WithLabelValues(subject, result).Inc()
}

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
