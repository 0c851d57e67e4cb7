package event

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments bus delivery.
type Metrics struct {
	Published       *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec
}

// NewMetrics registers bus metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_events_published_total",
			Help: "Events published on the in-process bus",
		}, []string{"topic"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_event_deliveries_total",
			Help: "Handler invocations performed by the bus",
		}, []string{"handler"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_event_delivery_failures_total",
			Help: "Handler invocations that returned an error, panicked or timed out",
		}, []string{"handler", "reason"}),
		HandlerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scriptorium_event_handler_duration_seconds",
			Help:    "Duration of a single handler invocation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"handler"}),
	}
}

func (m *Metrics) observePublished(topic string) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(topic).Inc()
}

func (m *Metrics) observeDelivery(handler string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(handler).Inc()
	m.HandlerDuration.WithLabelValues(handler).Observe(d.Seconds())
	if err != nil {
		m.Failures.WithLabelValues(handler, failureReason(err)).Inc()
	}
}
