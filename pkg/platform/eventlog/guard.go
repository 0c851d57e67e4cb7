package eventlog

import (
	"context"
	"log/slog"

	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/circuit"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/sentinel"
)

// Guarded fails fast while its breaker is open so an unreachable event store
// does not hold up every publish for a full timeout.
type Guarded struct {
	next    Repository
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *Metrics
}

// Guard wraps next with breaker. logger and m may be nil.
func Guard(next Repository, breaker *circuit.Breaker, logger *slog.Logger, m *Metrics) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger, metrics: m}
}

func (g *Guarded) Save(ctx context.Context, e event.Event) error {
	if !g.breaker.Allow() {
		g.metrics.incDropped(DropCircuitOpen)
		return dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeInfrastructure, "event log circuit open")
	}
	err := g.next.Save(ctx, e)
	g.record(ctx, err)
	return err
}

func (g *Guarded) Search(ctx context.Context, q Query) ([]event.Event, error) {
	if !g.breaker.Allow() {
		return nil, dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeInfrastructure, "event log circuit open")
	}
	events, err := g.next.Search(ctx, q)
	g.record(ctx, err)
	return events, err
}

func (g *Guarded) record(ctx context.Context, err error) {
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.metrics.setCircuitOpen(false)
			g.logger.InfoContext(ctx, "event log circuit closed", "breaker", g.breaker.Name())
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.metrics.setCircuitOpen(true)
		g.logger.WarnContext(ctx, "event log circuit opened", "breaker", g.breaker.Name(), "error", err)
	}
}

var _ Repository = (*Guarded)(nil)
