// Package event holds the domain event envelope and the in-process bus that
// routes events between bounded contexts.
//
// Events are produced by aggregates (see pkg/domain.AggregateRoot), drained once
// per persistence cycle and handed to a Publisher. The bus delivers each event
// synchronously to every handler whose topic pattern matches.
package event

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/google/uuid"

	dErrors "scriptorium/pkg/domain-errors"
)

// Wildcard subscribes a handler to every topic.
const Wildcard = "*"

var nameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Event is an immutable record of something that happened to an aggregate.
//
// Topic identifies the owning bounded context ("user", "payment"); Code names
// the occurrence ("validated", "password-recovery-requested"). Payload is the
// JSON snapshot of the event-specific fields.
type Event struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Code      string          `json:"code"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// ToEvent is implemented by every context-specific event variant.
type ToEvent interface {
	ToEvent() (Event, error)
}

// New builds an event with a time-ordered ID and a JSON payload.
//
// Errors: CodeValidation when topic or code are not lowercase hyphenated names;
// CodeSerialization when payload cannot be encoded.
func New(topic, code string, payload any, now time.Time) (Event, error) {
	if !ValidName(topic) {
		return Event{}, dErrors.Newf(dErrors.CodeValidation, "invalid event topic %q", topic)
	}
	if !ValidName(code) {
		return Event{}, dErrors.Newf(dErrors.CodeValidation, "invalid event code %q", code)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, dErrors.Wrap(err, dErrors.CodeSerialization, "encode event payload")
	}
	return Event{
		ID:        newEventID(),
		Topic:     topic,
		Code:      code,
		Payload:   raw,
		Timestamp: now.UTC(),
	}, nil
}

// Decode unmarshals the payload into dst.
func (e Event) Decode(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeSerialization, "decode "+e.Topic+"/"+e.Code+" payload")
	}
	return nil
}

// Is reports whether the event carries the given topic and code.
func (e Event) Is(topic, code string) bool {
	return e.Topic == topic && e.Code == code
}

// Matches reports whether a subscription pattern selects topic.
func Matches(pattern, topic string) bool {
	return pattern == Wildcard || pattern == topic
}

// ValidName reports whether s is a lowercase hyphenated topic or code.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
