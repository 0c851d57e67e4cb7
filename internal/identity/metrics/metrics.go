package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts identity lifecycle transitions.
type Metrics struct {
	UsersRegistered prometheus.Counter
	UsersValidated  prometheus.Counter
	UsersDeleted    prometheus.Counter
}

// New registers identity metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "scriptorium_users_registered_total",
			Help: "Total number of users registered",
		}),
		UsersValidated: f.NewCounter(prometheus.CounterOpts{
			Name: "scriptorium_users_validated_total",
			Help: "Total number of users validated",
		}),
		UsersDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "scriptorium_users_deleted_total",
			Help: "Total number of users deleted",
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncrementValidated() {
	if m != nil {
		m.UsersValidated.Inc()
	}
}

func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.UsersDeleted.Inc()
	}
}
