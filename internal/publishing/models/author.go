package models

import (
	"encoding/json"
	"time"

	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/email"
)

// Author is the publishing view of a validated user allowed to write.
// Its id equals the id of the user it was created from.
type Author struct {
	id.AggregateRoot[id.AuthorID]
	username    string
	email       string
	displayName string
}

// NewAuthor creates an author and records AuthorCreated. The display name is
// derived from the email's local part.
func NewAuthor(authorID id.AuthorID, username, mail string, now time.Time) (*Author, error) {
	root, err := id.NewAggregateRoot(authorID, now)
	if err != nil {
		return nil, err
	}
	a := &Author{
		AggregateRoot: root,
		username:      username,
		email:         mail,
		displayName:   displayName(username, mail),
	}
	a.RecordEvent(AuthorCreated{AuthorID: authorID, DisplayName: a.displayName, At: now})
	return a, nil
}

func displayName(username, mail string) string {
	if name := email.DisplayName(mail); name != "" {
		return name
	}
	if username != "" {
		return username
	}
	return "Anonymous"
}

func (a *Author) Username() string { return a.username }
func (a *Author) Email() string { return a.email }
func (a *Author) DisplayName() string { return a.displayName }

// Delete marks the author deleted and records AuthorDeleted.
func (a *Author) Delete(now time.Time) {
	a.AggregateRoot.Delete(now)
	a.RecordEvent(AuthorDeleted{AuthorID: a.ID(), At: now})
}

// Clone copies the persisted state. Pending events are not copied.
func (a *Author) Clone() *Author {
	if a == nil {
		return nil
	}
	c := *a
	c.AggregateRoot = a.Snapshot()
	return &c
}

type authorState struct {
	id.AggregateState[id.AuthorID]
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
}

func (a *Author) MarshalJSON() ([]byte, error) {
	return json.Marshal(authorState{
		AggregateState: a.State(),
		Username:       a.username,
		Email:          a.email,
		DisplayName:    a.displayName,
	})
}

func (a *Author) UnmarshalJSON(data []byte) error {
	var s authorState
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeSerialization, "decode author")
	}
	root, err := id.RestoreAggregateRoot(s.AggregateState)
	if err != nil {
		return err
	}
	*a = Author{AggregateRoot: root, username: s.Username, email: s.Email, displayName: s.DisplayName}
	return nil
}
