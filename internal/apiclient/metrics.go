package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaker  prometheus.Gauge
}

// newCollector registers the client metrics on reg. A nil reg creates
// unregistered collectors.
func newCollector(reg prometheus.Registerer) *collector {
	f := promauto.With(reg)
	return &collector{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ncdintake",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Registry API requests by path and outcome.",
		}, []string{"path", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ncdintake",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Registry API request latency distribution.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"path"}),
		breaker: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "ncdintake",
			Subsystem: "client",
			Name:      "breaker_open",
			Help:      "1 when the circuit breaker is open.",
		}),
	}
}
