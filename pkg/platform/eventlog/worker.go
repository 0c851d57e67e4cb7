package eventlog

import (
	"context"
	"log/slog"

	"scriptorium/pkg/platform/event"
)

// Worker consumes events from a channel and saves them. A failed save is
// logged and the worker moves on to the next event.
type Worker struct {
	repo    Repository
	inbox   <-chan event.Event
	logger  *slog.Logger
	metrics *Metrics
}

func NewWorker(repo Repository, inbox <-chan event.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{repo: repo, inbox: inbox, logger: logger}
}

// Run saves events until the inbox is closed or ctx is done. On ctx
// cancellation the events already buffered are still saved.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case e, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.save(ctx, e)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case e, ok := <-w.inbox:
			if !ok {
				return
			}
			w.save(ctx, e)
		default:
			return
		}
	}
}

func (w *Worker) save(ctx context.Context, e event.Event) {
	err := w.repo.Save(ctx, e)
	w.metrics.observeSave(err)
	if err != nil {
		w.logger.ErrorContext(ctx, "event log save failed",
			"event_id", e.ID,
			"topic", e.Topic,
			"code", e.Code,
			"error", err,
		)
	}
}
