package eventlog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/eventlog"
	"scriptorium/pkg/platform/eventlog/memory"
)

func newEvent(t *testing.T, topic, code string) event.Event {
	t.Helper()
	e, err := event.New(topic, code, nil, time.Now())
	require.NoError(t, err)
	return e
}

type failingRepo struct {
	mu    sync.Mutex
	saved []event.Event
	fail  string
}

func (r *failingRepo) Save(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Code == r.fail {
		return errors.New("disk full")
	}
	r.saved = append(r.saved, e)
	return nil
}

func (r *failingRepo) Search(context.Context, eventlog.Query) ([]event.Event, error) {
	return nil, nil
}

func (r *failingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func TestRecorder_Sync(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	rec := eventlog.NewRecorder(store)
	assert.Nil(t, rec.Worker())

	bus := event.NewBus()
	bus.Subscribe(event.Wildcard, rec)

	n, err := bus.PublishAll(ctx, []event.Event{
		newEvent(t, "user", "registered"),
		newEvent(t, "payment", "created"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.Search(ctx, eventlog.Query{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Topic)
	assert.Equal(t, "payment", got[1].Topic)
}

func TestRecorder_SyncReturnsStoreError(t *testing.T) {
	rec := eventlog.NewRecorder(&failingRepo{fail: "registered"})
	err := rec.Handle(context.Background(), newEvent(t, "user", "registered"))
	assert.Error(t, err)
}

func TestRecorder_Async(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.NewInMemoryStore()
	rec := eventlog.NewRecorder(store, eventlog.WithAsyncBuffer(8))
	require.NotNil(t, rec.Worker())

	done := make(chan error, 1)
	go func() { done <- rec.Worker().Run(ctx) }()

	for range 5 {
		require.NoError(t, rec.Handle(ctx, newEvent(t, "user", "registered")))
	}
	rec.Close()
	rec.Close()

	require.NoError(t, <-done)
	assert.Equal(t, 5, store.Len())

	// after close events are discarded without error
	assert.NoError(t, rec.Handle(ctx, newEvent(t, "user", "deleted")))
	assert.Equal(t, 5, store.Len())
}

func TestRecorder_AsyncBufferFullDrops(t *testing.T) {
	store := memory.NewInMemoryStore()
	m := eventlog.NewMetrics(prometheus.NewRegistry())
	rec := eventlog.NewRecorder(store, eventlog.WithAsyncBuffer(2), eventlog.WithMetrics(m))

	for range 5 {
		require.NoError(t, rec.Handle(context.Background(), newEvent(t, "user", "registered")))
	}
	assert.Equal(t, int64(3), rec.Dropped())
	assert.Equal(t, 3.0, promtest.ToFloat64(m.Dropped.WithLabelValues(eventlog.DropBufferFull)))

	rec.Close()
	require.NoError(t, rec.Worker().Run(context.Background()))
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2.0, promtest.ToFloat64(m.Saved))
}

func TestWorker_ContinuesAfterSaveFailure(t *testing.T) {
	repo := &failingRepo{fail: "broken"}
	inbox := make(chan event.Event, 3)
	inbox <- newEvent(t, "user", "registered")
	inbox <- newEvent(t, "user", "broken")
	inbox <- newEvent(t, "user", "deleted")
	close(inbox)

	w := eventlog.NewWorker(repo, inbox, nil)
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 2, repo.count())
}

func TestWorker_DrainsOnCancel(t *testing.T) {
	repo := &failingRepo{}
	inbox := make(chan event.Event, 2)
	inbox <- newEvent(t, "user", "registered")
	inbox <- newEvent(t, "user", "validated")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := eventlog.NewWorker(repo, inbox, nil)
	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, repo.count())
}

func TestQuery_Matches(t *testing.T) {
	now := time.Now()
	e := event.Event{Topic: "user", Code: "validated", Timestamp: now}

	assert.True(t, eventlog.Query{}.Matches(e))
	assert.True(t, eventlog.Query{Topic: "user", Code: "validated"}.Matches(e))
	assert.False(t, eventlog.Query{Topic: "payment"}.Matches(e))
	assert.False(t, eventlog.Query{Code: "deleted"}.Matches(e))
	later := now.Add(time.Second)
	assert.False(t, eventlog.Query{From: &later}.Matches(e))
	earlier := now.Add(-time.Second)
	assert.False(t, eventlog.Query{To: &earlier}.Matches(e))
}
