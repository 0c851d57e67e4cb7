package domain

import (
	"encoding/json"
	"time"

	dErrors "scriptorium/pkg/domain-errors"
)

// StatusItem is one entry of a StatusHistory.
type StatusItem[S any] struct {
	Status S         `json:"status"`
	Date   time.Time `json:"date"`
}

// StatusHistory is an append-only, timestamped record of a finite-state
// machine's statuses. Histories built with NewStatusHistory are never empty.
//
// The history does not validate transitions. Status types expose their own
// transition methods (e.g. PaymentStatus.Pay) that return the next status or a
// conflict error; callers validate through those and then call Add.
type StatusHistory[S any] struct {
	items []StatusItem[S]
}

// NewStatusHistory seeds a history with its initial status.
func NewStatusHistory[S any](initial S, now time.Time) StatusHistory[S] {
	return StatusHistory[S]{items: []StatusItem[S]{{Status: initial, Date: now}}}
}

// Add appends next. Dates never go backwards: a now earlier than the last entry
// is recorded with the last entry's date.
func (h *StatusHistory[S]) Add(next S, now time.Time) {
	if n := len(h.items); n > 0 && now.Before(h.items[n-1].Date) {
		now = h.items[n-1].Date
	}
	h.items = append(h.items, StatusItem[S]{Status: next, Date: now})
}

// Current returns the latest status, or the zero S for a zero-value history.
func (h StatusHistory[S]) Current() S {
	return h.CurrentItem().Status
}

// CurrentItem returns the latest entry.
func (h StatusHistory[S]) CurrentItem() StatusItem[S] {
	if len(h.items) == 0 {
		return StatusItem[S]{}
	}
	return h.items[len(h.items)-1]
}

// Len returns the number of recorded statuses.
func (h StatusHistory[S]) Len() int {
	return len(h.items)
}

// Items returns a copy of the history, oldest first.
func (h StatusHistory[S]) Items() []StatusItem[S] {
	return append([]StatusItem[S](nil), h.items...)
}

// Clone returns an independent copy.
func (h StatusHistory[S]) Clone() StatusHistory[S] {
	return StatusHistory[S]{items: append([]StatusItem[S](nil), h.items...)}
}

func (h StatusHistory[S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.items)
}

// UnmarshalJSON restores a history, rejecting empty or out-of-order input.
func (h *StatusHistory[S]) UnmarshalJSON(data []byte) error {
	var items []StatusItem[S]
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if len(items) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "status history cannot be empty")
	}
	for i := 1; i < len(items); i++ {
		if items[i].Date.Before(items[i-1].Date) {
			return dErrors.New(dErrors.CodeInvariantViolation, "status history dates must not decrease")
		}
	}
	h.items = items
	return nil
}
