package models

import (
	"encoding/json"
	"time"

	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
)

// Reader is the publishing view of a validated user who can buy content.
// Payment resolves payers through it.
type Reader struct {
	id.AggregateRoot[id.ReaderID]
	username string
	email    string
}

func NewReader(readerID id.ReaderID, username, email string, now time.Time) (*Reader, error) {
	root, err := id.NewAggregateRoot(readerID, now)
	if err != nil {
		return nil, err
	}
	r := &Reader{AggregateRoot: root, username: username, email: email}
	r.RecordEvent(ReaderCreated{ReaderID: readerID, At: now})
	return r, nil
}

func (r *Reader) Username() string { return r.username }
func (r *Reader) Email() string { return r.email }

func (r *Reader) Delete(now time.Time) {
	r.AggregateRoot.Delete(now)
	r.RecordEvent(ReaderDeleted{ReaderID: r.ID(), At: now})
}

// Clone copies the persisted state. Pending events are not copied.
func (r *Reader) Clone() *Reader {
	if r == nil {
		return nil
	}
	c := *r
	c.AggregateRoot = r.Snapshot()
	return &c
}

type readerState struct {
	id.AggregateState[id.ReaderID]
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (r *Reader) MarshalJSON() ([]byte, error) {
	return json.Marshal(readerState{AggregateState: r.State(), Username: r.username, Email: r.email})
}

func (r *Reader) UnmarshalJSON(data []byte) error {
	var s readerState
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeSerialization, "decode reader")
	}
	root, err := id.RestoreAggregateRoot(s.AggregateState)
	if err != nil {
		return err
	}
	*r = Reader{AggregateRoot: root, username: s.Username, email: s.Email}
	return nil
}
