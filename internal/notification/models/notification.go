package models

import (
	"encoding/json"
	"time"

	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
)

const (
	TopicNotification = "notification"
	CodeCreated       = "created"
	CodeRead          = "read"
)

// Kind names what a notification is about.
type Kind string

const (
	KindWelcome          Kind = "welcome"
	KindPasswordRecovery Kind = "password-recovery"
	KindPaymentReceipt   Kind = "payment-receipt"
)

// Notification is a message addressed to one user.
type Notification struct {
	id.AggregateRoot[id.NotificationID]
	userID  id.UserID
	kind    Kind
	subject string
	body    string
	readAt  *time.Time
}

func NewNotification(notificationID id.NotificationID, userID id.UserID, kind Kind, subject, body string, now time.Time) (*Notification, error) {
	root, err := id.NewAggregateRoot(notificationID, now)
	if err != nil {
		return nil, err
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "notification recipient required")
	}
	n := &Notification{AggregateRoot: root, userID: userID, kind: kind, subject: subject, body: body}
	n.RecordEvent(Changed{Code: CodeCreated, NotificationID: notificationID, UserID: userID, Kind: kind, At: now})
	return n, nil
}

func (n *Notification) UserID() id.UserID { return n.userID }
func (n *Notification) Kind() Kind { return n.kind }
func (n *Notification) Subject() string { return n.subject }
func (n *Notification) Body() string { return n.body }
func (n *Notification) IsRead() bool { return n.readAt != nil }

// MarkRead is idempotent; only the first call records an event.
func (n *Notification) MarkRead(now time.Time) {
	if n.readAt != nil {
		return
	}
	n.readAt = &now
	n.Update(now)
	n.RecordEvent(Changed{Code: CodeRead, NotificationID: n.ID(), UserID: n.userID, Kind: n.kind, At: now})
}

// Clone copies the persisted state. Pending events are not copied.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	c := *n
	c.AggregateRoot = n.Snapshot()
	if n.readAt != nil {
		t := *n.readAt
		c.readAt = &t
	}
	return &c
}

type notificationState struct {
	id.AggregateState[id.NotificationID]
	UserID  id.UserID  `json:"user_id"`
	Kind    Kind       `json:"kind"`
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
}

func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationState{
		AggregateState: n.State(),
		UserID:         n.userID,
		Kind:           n.kind,
		Subject:        n.subject,
		Body:           n.body,
		ReadAt:         n.readAt,
	})
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var s notificationState
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeSerialization, "decode notification")
	}
	root, err := id.RestoreAggregateRoot(s.AggregateState)
	if err != nil {
		return err
	}
	*n = Notification{AggregateRoot: root, userID: s.UserID, kind: s.Kind, subject: s.Subject, body: s.Body, readAt: s.ReadAt}
	return nil
}

// Changed is recorded when a notification is created or read.
type Changed struct {
	Code           string            `json:"-"`
	NotificationID id.NotificationID `json:"id"`
	UserID         id.UserID         `json:"user_id"`
	Kind           Kind              `json:"kind"`
	At             time.Time         `json:"-"`
}

func (e Changed) ToEvent() (event.Event, error) {
	return event.New(TopicNotification, e.Code, e, e.At)
}
