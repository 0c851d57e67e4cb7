package eventlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons reported on scriptorium_eventlog_dropped_total.
const (
	DropBufferFull  = "buffer_full"
	DropClosed      = "closed"
	DropCircuitOpen = "circuit_open"
)

// Metrics tracks event log persistence. A nil *Metrics records nothing.
type Metrics struct {
	Saved        prometheus.Counter
	SaveFailures prometheus.Counter
	Dropped      *prometheus.CounterVec
	CircuitState prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Saved: f.NewCounter(prometheus.CounterOpts{
			Name: "scriptorium_eventlog_saved_total",
			Help: "Events written to the event log",
		}),
		SaveFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "scriptorium_eventlog_save_failures_total",
			Help: "Event log writes that returned an error",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_eventlog_dropped_total",
			Help: "Events never handed to the store",
		}, []string{"reason"}),
		CircuitState: f.NewGauge(prometheus.GaugeOpts{
			Name: "scriptorium_eventlog_circuit_state",
			Help: "Event log circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) observeSave(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.SaveFailures.Inc()
		return
	}
	m.Saved.Inc()
}

func (m *Metrics) incDropped(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) setCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitState.Set(1)
	} else {
		m.CircuitState.Set(0)
	}
}
