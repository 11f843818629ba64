package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects transport-level counters and timings. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	handshakeDuration *prometheus.HistogramVec
	handshakesTotal   *prometheus.CounterVec
	messagesTotal     *prometheus.CounterVec
	bytesTotal        *prometheus.CounterVec
}

// NewMetrics registers the transport metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		handshakeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sealink",
			Subsystem: "transport",
			Name:      "handshake_duration_seconds",
			Help:      "Time from first handshake byte to an established or failed channel.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"role", "outcome"}),
		handshakesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sealink",
			Subsystem: "transport",
			Name:      "handshakes_total",
			Help:      "Handshake attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sealink",
			Subsystem: "transport",
			Name:      "messages_total",
			Help:      "Application messages by direction.",
		}, []string{"direction"}),
		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sealink",
			Subsystem: "transport",
			Name:      "bytes_total",
			Help:      "Frame bytes on the wire by direction.",
		}, []string{"direction"}),
	}
}

func (m *Metrics) observeHandshake(role, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.handshakeDuration.WithLabelValues(role, outcome).Observe(d.Seconds())
	m.handshakesTotal.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) addMessage(direction string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(direction).Inc()
}

func (m *Metrics) addBytes(direction string, n int) {
	if m == nil {
		return
	}
	m.bytesTotal.WithLabelValues(direction).Add(float64(n))
}
