// Package eventlog keeps an append-only record of every published domain
// event so operators can replay or inspect what happened.
package eventlog

import (
	"context"
	"time"

	"scriptorium/pkg/platform/event"
)

// Repository stores events in arrival order.
type Repository interface {
	Save(ctx context.Context, e event.Event) error
	Search(ctx context.Context, q Query) ([]event.Event, error)
}

// Query filters a Search. Zero fields do not filter. Results are in ascending
// storage order; AfterID continues from a previously returned event.
type Query struct {
	AfterID string
	Topic   string
	Code    string
	From    *time.Time
	To      *time.Time
	Limit   int
}

// Matches reports whether e satisfies every filter of q except AfterID and
// Limit, which are positional and handled by the store.
func (q Query) Matches(e event.Event) bool {
	if q.Topic != "" && e.Topic != q.Topic {
		return false
	}
	if q.Code != "" && e.Code != q.Code {
		return false
	}
	if q.From != nil && e.Timestamp.Before(*q.From) {
		return false
	}
	if q.To != nil && e.Timestamp.After(*q.To) {
		return false
	}
	return true
}
