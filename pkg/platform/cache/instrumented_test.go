package cache_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/cache/memory"
)

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMetrics(prometheus.NewRegistry())
	c := cache.Instrument[string, int]("users", memory.New[string, int](), m)

	require.NoError(t, c.Set(ctx, "a", 1))
	_, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues("users")))
}

func TestInstrument_NilMetricsIsPassthrough(t *testing.T) {
	inner := memory.New[string, int]()
	assert.Same(t, inner, cache.Instrument[string, int]("x", inner, nil))
}

func TestCopy(t *testing.T) {
	type plain struct{ N int }
	assert.Equal(t, plain{N: 1}, cache.Copy(plain{N: 1}))
}
