package memory

import (
	"context"
	"sync"

	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/eventlog"
)

// InMemoryStore is an append-only slice of events.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []event.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Save(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Search walks the log in storage order. An AfterID that was never stored
// yields no results.
func (s *InMemoryStore) Search(_ context.Context, q eventlog.Query) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if q.AfterID != "" {
		start = len(s.events)
		for i, e := range s.events {
			if e.ID == q.AfterID {
				start = i + 1
				break
			}
		}
	}

	out := []event.Event{}
	for _, e := range s.events[start:] {
		if !q.Matches(e) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

var _ eventlog.Repository = (*InMemoryStore)(nil)
