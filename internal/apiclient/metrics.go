package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides observability for outbound API requests. All methods are
// nil-safe so callers can run without a registry.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics builds and registers client metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_client_requests_total",
			Help: "Total API requests by method and outcome (ok or error kind)",
		}, []string{"method", "outcome"}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_client_request_duration_seconds",
			Help:    "Duration of API requests by method",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

// IncRequest records a completed request with its outcome.
func (m *Metrics) IncRequest(method, outcome string) {
	if m != nil {
		m.Requests.WithLabelValues(method, outcome).Inc()
	}
}

// ObserveDuration records how long a request took.
func (m *Metrics) ObserveDuration(method string, d time.Duration) {
	if m != nil {
		m.Duration.WithLabelValues(method).Observe(d.Seconds())
	}
}
