package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache outcomes per named cache.
type Metrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewMetrics registers cache metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_cache_hits_total",
			Help: "Cache lookups that found a value",
		}, []string{"cache"}),
		Misses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_cache_misses_total",
			Help: "Cache lookups that found nothing",
		}, []string{"cache"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scriptorium_cache_errors_total",
			Help: "Cache writes or scans that failed",
		}, []string{"cache", "op"}),
	}
}

type instrumented[K comparable, V any] struct {
	name    string
	next    Store[K, V]
	metrics *Metrics
}

// Instrument wraps next so every operation is counted under name. A nil
// metrics returns next unchanged.
func Instrument[K comparable, V any](name string, next Store[K, V], m *Metrics) Store[K, V] {
	if m == nil {
		return next
	}
	return &instrumented[K, V]{name: name, next: next, metrics: m}
}

func (c *instrumented[K, V]) Get(ctx context.Context, key K) (V, bool) {
	v, ok := c.next.Get(ctx, key)
	if ok {
		c.metrics.Hits.WithLabelValues(c.name).Inc()
	} else {
		c.metrics.Misses.WithLabelValues(c.name).Inc()
	}
	return v, ok
}

func (c *instrumented[K, V]) Set(ctx context.Context, key K, value V) error {
	err := c.next.Set(ctx, key, value)
	if err != nil {
		c.metrics.Errors.WithLabelValues(c.name, "set").Inc()
	}
	return err
}

func (c *instrumented[K, V]) Delete(ctx context.Context, key K) error {
	err := c.next.Delete(ctx, key)
	if err != nil {
		c.metrics.Errors.WithLabelValues(c.name, "delete").Inc()
	}
	return err
}

func (c *instrumented[K, V]) Values(ctx context.Context) ([]V, error) {
	vs, err := c.next.Values(ctx)
	if err != nil {
		c.metrics.Errors.WithLabelValues(c.name, "values").Inc()
	}
	return vs, err
}
