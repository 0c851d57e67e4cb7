package domain

import (
	"time"

	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
)

// AggregateRoot couples an identity with the events produced by state changes
// that have not been published yet.
//
// Invariants:
//   - the identifier never changes after construction
//   - the event buffer is only appended to by the owning aggregate's behavior
//   - Events drains the buffer; a second call without new events returns nothing
//
// Owning entities embed it by value. Repositories persist Snapshot() so stored
// copies never carry undrained events.
type AggregateRoot[I Identifier] struct {
	id        I
	events    []event.ToEvent
	createdAt time.Time
	updatedAt *time.Time
	deletedAt *time.Time
}

// NewAggregateRoot validates id and creates a root stamped at now.
//
// Errors: CodeValidation when id is not a valid identifier.
func NewAggregateRoot[I Identifier](id I, now time.Time) (AggregateRoot[I], error) {
	if _, err := ParseID[I](string(id)); err != nil {
		return AggregateRoot[I]{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid aggregate identifier")
	}
	return AggregateRoot[I]{id: id, createdAt: now}, nil
}

func (a *AggregateRoot[I]) ID() I { return a.id }
func (a *AggregateRoot[I]) CreatedAt() time.Time { return a.createdAt }
func (a *AggregateRoot[I]) UpdatedAt() *time.Time { return a.updatedAt }
func (a *AggregateRoot[I]) DeletedAt() *time.Time { return a.deletedAt }
func (a *AggregateRoot[I]) IsDeleted() bool { return a.deletedAt != nil }
func (a *AggregateRoot[I]) PendingEvents() int { return len(a.events) }

// RecordEvent buffers e for the next Events call.
func (a *AggregateRoot[I]) RecordEvent(e event.ToEvent) {
	a.events = append(a.events, e)
}

// Events takes ownership of the buffered events and converts them. The buffer
// is empty afterwards even when conversion fails; a failed batch is dropped.
//
// Errors: CodeSerialization when an event cannot be converted.
func (a *AggregateRoot[I]) Events() ([]event.Event, error) {
	pending := a.events
	a.events = nil
	if len(pending) == 0 {
		return nil, nil
	}

	out := make([]event.Event, 0, len(pending))
	for _, p := range pending {
		evt, err := p.ToEvent()
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeSerialization) {
				return nil, err
			}
			return nil, dErrors.Wrap(err, dErrors.CodeSerialization, "convert domain event")
		}
		out = append(out, evt)
	}
	return out, nil
}

// Update marks the aggregate as modified.
func (a *AggregateRoot[I]) Update(now time.Time) {
	a.updatedAt = &now
}

// Delete marks the aggregate as deleted. Repositories route a Save of a
// deleted aggregate to physical deletion.
func (a *AggregateRoot[I]) Delete(now time.Time) {
	a.updatedAt = &now
	a.deletedAt = &now
}

// Snapshot returns a copy of the root without buffered events.
func (a AggregateRoot[I]) Snapshot() AggregateRoot[I] {
	return AggregateRoot[I]{
		id:        a.id,
		createdAt: a.createdAt,
		updatedAt: copyTime(a.updatedAt),
		deletedAt: copyTime(a.deletedAt),
	}
}

// AggregateState is the persisted shape of a root, used by codecs.
type AggregateState[I Identifier] struct {
	ID        I          `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// State exports the persisted fields of the root.
func (a AggregateRoot[I]) State() AggregateState[I] {
	return AggregateState[I]{
		ID:        a.id,
		CreatedAt: a.createdAt,
		UpdatedAt: copyTime(a.updatedAt),
		DeletedAt: copyTime(a.deletedAt),
	}
}

// RestoreAggregateRoot rebuilds a root from persisted state. The identifier is
// re-validated since state may come from an external store.
func RestoreAggregateRoot[I Identifier](s AggregateState[I]) (AggregateRoot[I], error) {
	root, err := NewAggregateRoot(s.ID, s.CreatedAt)
	if err != nil {
		return AggregateRoot[I]{}, err
	}
	root.updatedAt = copyTime(s.UpdatedAt)
	root.deletedAt = copyTime(s.DeletedAt)
	return root, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
