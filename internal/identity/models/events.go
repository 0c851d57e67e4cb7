package models

import (
	"time"

	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/event"
)

// TopicUser is the topic every identity event is published under.
const TopicUser = "user"

const (
	CodeRegistered                = "registered"
	CodeValidated                 = "validated"
	CodePasswordRecoveryRequested = "password-recovery-requested"
	CodePasswordChanged           = "password-changed"
	CodeDeleted                   = "deleted"
)

type UserRegistered struct {
	UserID   id.UserID `json:"id"`
	Username Username  `json:"username"`
	Email    Email     `json:"email"`
	Role     id.Role   `json:"role"`
	At       time.Time `json:"-"`
}

func (e UserRegistered) ToEvent() (event.Event, error) {
	return event.New(TopicUser, CodeRegistered, e, e.At)
}

type UserValidated struct {
	UserID   id.UserID `json:"id"`
	Username Username  `json:"username"`
	Email    Email     `json:"email"`
	At       time.Time `json:"-"`
}

func (e UserValidated) ToEvent() (event.Event, error) {
	return event.New(TopicUser, CodeValidated, e, e.At)
}

type PasswordRecoveryRequested struct {
	UserID id.UserID `json:"id"`
	Email  Email     `json:"email"`
	At     time.Time `json:"-"`
}

func (e PasswordRecoveryRequested) ToEvent() (event.Event, error) {
	return event.New(TopicUser, CodePasswordRecoveryRequested, e, e.At)
}

type PasswordChanged struct {
	UserID id.UserID `json:"id"`
	At     time.Time `json:"-"`
}

func (e PasswordChanged) ToEvent() (event.Event, error) {
	return event.New(TopicUser, CodePasswordChanged, e, e.At)
}

type UserDeleted struct {
	UserID id.UserID `json:"id"`
	At     time.Time `json:"-"`
}

func (e UserDeleted) ToEvent() (event.Event, error) {
	return event.New(TopicUser, CodeDeleted, e, e.At)
}
