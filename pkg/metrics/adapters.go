package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// AdapterMetrics counts calls into the external SaaS adapters and how often
// they degraded to a fallback.
type AdapterMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAdapterMetrics registers the adapter metrics on the provided registerer.
func NewAdapterMetrics(reg prometheus.Registerer) *AdapterMetrics {
	if reg == nil {
		return &AdapterMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voo",
		Name:      "adapter_calls_total",
		Help:      "External adapter calls by outcome.",
	}, []string{"adapter", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voo",
		Name:      "adapter_call_duration_seconds",
		Help:      "Latency of external adapter calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"adapter"})
	reg.MustRegister(calls, duration)
	return &AdapterMetrics{
		calls:    calls,
		duration: duration,
	}
}

// Observe records one call. A non-nil err counts as a fallback.
func (m *AdapterMetrics) Observe(adapter string, started time.Time, err error) {
	if m == nil || m.calls == nil {
		return
	}
	adapter = normalizeLabel(adapter)
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFallback
	}
	m.calls.WithLabelValues(adapter, outcome).Inc()
	if m.duration != nil && !started.IsZero() {
		m.duration.WithLabelValues(adapter).Observe(time.Since(started).Seconds())
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
