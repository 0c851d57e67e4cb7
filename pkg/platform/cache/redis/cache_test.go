package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scriptorium/pkg/domain-errors"
)

type profile struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

func newTestCache(t *testing.T, opts ...Option[string, profile]) (*Cache[string, profile], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New[string, profile](client, "profiles:", opts...), mr
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	p := profile{ID: "usr-1", Tags: []string{"a", "b"}}
	require.NoError(t, c.Set(ctx, "usr-1", p))
	assert.True(t, mr.Exists("profiles:usr-1"))

	got, ok := c.Get(ctx, "usr-1")
	require.True(t, ok)
	assert.Equal(t, p, got)

	require.NoError(t, c.Delete(ctx, "usr-1"))
	_, ok = c.Get(ctx, "usr-1")
	assert.False(t, ok)

	assert.NoError(t, c.Delete(ctx, "never-set"))
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, WithTTL[string, profile](time.Minute))

	require.NoError(t, c.Set(ctx, "usr-1", profile{ID: "usr-1"}))
	assert.Equal(t, time.Minute, mr.TTL("profiles:usr-1"))

	mr.FastForward(2 * time.Minute)
	_, ok := c.Get(ctx, "usr-1")
	assert.False(t, ok)
}

func TestCache_Values(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	for _, id := range []string{"usr-1", "usr-2", "usr-3"} {
		require.NoError(t, c.Set(ctx, id, profile{ID: id}))
	}
	require.NoError(t, mr.Set("other:usr-9", `{"id":"usr-9"}`))
	require.NoError(t, mr.Set("profiles:broken", "not json"))

	values, err := c.Values(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(values))
	for _, v := range values {
		ids = append(ids, v.ID)
	}
	assert.ElementsMatch(t, []string{"usr-1", "usr-2", "usr-3"}, ids)
}

// pagedClient replays fixed SCAN pages; rehashing makes real SCAN repeat keys
// across pages, which miniredis never does.
type pagedClient struct {
	redis.UniversalClient
	pages   [][]string
	values  map[string]string
	fetched []string
}

func (p *pagedClient) Scan(_ context.Context, cursor uint64, _ string, _ int64) *redis.ScanCmd {
	next := cursor + 1
	if int(next) >= len(p.pages) {
		next = 0
	}
	return redis.NewScanCmdResult(p.pages[cursor], next, nil)
}

func (p *pagedClient) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	vals := make([]interface{}, len(keys))
	for i, k := range keys {
		p.fetched = append(p.fetched, k)
		if v, ok := p.values[k]; ok {
			vals[i] = v
		}
	}
	return redis.NewSliceResult(vals, nil)
}

func TestCache_ValuesSkipsRepeatedScanKeys(t *testing.T) {
	client := &pagedClient{
		pages: [][]string{
			{"profiles:usr-1"},
			{"profiles:usr-1", "profiles:usr-2"},
			{"profiles:usr-2"},
		},
		values: map[string]string{
			"profiles:usr-1": `{"id":"usr-1"}`,
			"profiles:usr-2": `{"id":"usr-2"}`,
		},
	}
	c := New[string, profile](client, "profiles:")

	values, err := c.Values(context.Background())
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.ElementsMatch(t, []string{"usr-1", "usr-2"}, []string{values[0].ID, values[1].ID})
	assert.Equal(t, []string{"profiles:usr-1", "profiles:usr-2"}, client.fetched)
}

func TestCache_UndecodableIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("profiles:usr-1", "{"))

	_, ok := c.Get(context.Background(), "usr-1")
	assert.False(t, ok)
}

func TestCache_BackendDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	_, ok := c.Get(ctx, "usr-1")
	assert.False(t, ok)

	err := c.Set(ctx, "usr-1", profile{ID: "usr-1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInfrastructure))

	_, err = c.Values(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInfrastructure))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?\[c\]`, escapeGlob("a*b?[c]"))
}
