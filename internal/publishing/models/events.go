package models

import (
	"time"

	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/event"
)

const (
	TopicAuthor = "author"
	TopicReader = "reader"

	CodeCreated = "created"
	CodeDeleted = "deleted"
)

type AuthorCreated struct {
	AuthorID    id.AuthorID `json:"id"`
	DisplayName string      `json:"display_name"`
	At          time.Time   `json:"-"`
}

func (e AuthorCreated) ToEvent() (event.Event, error) {
	return event.New(TopicAuthor, CodeCreated, e, e.At)
}

type AuthorDeleted struct {
	AuthorID id.AuthorID `json:"id"`
	At       time.Time   `json:"-"`
}

func (e AuthorDeleted) ToEvent() (event.Event, error) {
	return event.New(TopicAuthor, CodeDeleted, e, e.At)
}

type ReaderCreated struct {
	ReaderID id.ReaderID `json:"id"`
	At       time.Time   `json:"-"`
}

func (e ReaderCreated) ToEvent() (event.Event, error) {
	return event.New(TopicReader, CodeCreated, e, e.At)
}

type ReaderDeleted struct {
	ReaderID id.ReaderID `json:"id"`
	At       time.Time   `json:"-"`
}

func (e ReaderDeleted) ToEvent() (event.Event, error) {
	return event.New(TopicReader, CodeDeleted, e, e.At)
}
