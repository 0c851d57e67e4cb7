package eventlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"scriptorium/pkg/platform/event"
)

// Recorder is an event.Handler that saves every event it receives. Subscribe
// it with event.Wildcard.
//
// By default Handle saves synchronously and returns the store error. With
// WithAsyncBuffer, Handle only enqueues; a full buffer drops the event.
type Recorder struct {
	repo    Repository
	logger  *slog.Logger
	metrics *Metrics

	buffer int
	inbox  chan event.Event
	worker *Worker

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

type RecorderOption func(*Recorder)

func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithAsyncBuffer decouples saving from publishing through a channel of size n.
// The caller must run Worker().Run.
func WithAsyncBuffer(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.buffer = n
		}
	}
}

func NewRecorder(repo Repository, opts ...RecorderOption) *Recorder {
	r := &Recorder{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.buffer > 0 {
		r.inbox = make(chan event.Event, r.buffer)
		r.worker = NewWorker(repo, r.inbox, r.logger)
		r.worker.metrics = r.metrics
	}
	return r
}

func (r *Recorder) Name() string { return "eventlog.Recorder" }

// Worker returns the background saver, or nil in synchronous mode.
func (r *Recorder) Worker() *Worker { return r.worker }

func (r *Recorder) Handle(ctx context.Context, e event.Event) error {
	if r.inbox == nil {
		err := r.repo.Save(ctx, e)
		r.metrics.observeSave(err)
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.metrics.incDropped(DropClosed)
		r.logger.WarnContext(ctx, "event log closed, event dropped", "event_id", e.ID)
		return nil
	}
	select {
	case r.inbox <- e:
	default:
		r.dropped.Add(1)
		r.metrics.incDropped(DropBufferFull)
		r.logger.WarnContext(ctx, "event log buffer full, event dropped",
			"event_id", e.ID,
			"topic", e.Topic,
			"code", e.Code,
		)
	}
	return nil
}

// Dropped returns how many events were discarded because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting events and closes the inbox so a running worker saves
// what is buffered and returns. Safe to call more than once.
func (r *Recorder) Close() {
	if r.inbox == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.inbox)
}

var _ event.Handler = (*Recorder)(nil)
