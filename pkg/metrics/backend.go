package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics tracks calls the console makes to the CRM REST API.
type BackendMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of CRM backend calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_request_failures_total",
		Help: "CRM backend calls that failed, by error code.",
	}, []string{"operation", "code"})
	reg.MustRegister(duration, failures)
	return &BackendMetrics{duration: duration, failures: failures}
}

// Observe records one backend call. status is the HTTP status text or "network".
func (b *BackendMetrics) Observe(operation, status string, elapsed time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(operation), normalizeLabel(status)).Observe(elapsed.Seconds())
}

func (b *BackendMetrics) IncFailure(operation, code string) {
	if b == nil || b.failures == nil {
		return
	}
	b.failures.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}
