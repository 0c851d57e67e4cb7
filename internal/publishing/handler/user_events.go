// Package handler keeps the publishing read models in step with identity
// events.
package handler

import (
	"context"
	"errors"
	"log/slog"

	"scriptorium/internal/publishing/models"
	"scriptorium/internal/publishing/store"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/sentinel"
	"scriptorium/pkg/requestcontext"
)

// Identity events this package reacts to. The payload shape is owned by
// identity; only the fields read here are declared.
const (
	TopicUser     = "user"
	CodeValidated = "validated"
	CodeDeleted   = "deleted"
)

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func decodeUser(e event.Event) (userPayload, error) {
	var p userPayload
	if err := e.Decode(&p); err != nil {
		return p, err
	}
	return p, nil
}

// UserValidatedHandler creates the Author and Reader for a validated user.
// Replays are ignored: an existing author or reader is left untouched.
type UserValidatedHandler struct {
	authors   *store.AuthorStore
	readers   *store.ReaderStore
	publisher event.Publisher
	logger    *slog.Logger
}

func NewUserValidatedHandler(authors *store.AuthorStore, readers *store.ReaderStore, publisher event.Publisher, logger *slog.Logger) *UserValidatedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserValidatedHandler{authors: authors, readers: readers, publisher: publisher, logger: logger}
}

func (h *UserValidatedHandler) Name() string { return "publishing.UserValidatedHandler" }

func (h *UserValidatedHandler) Handle(ctx context.Context, e event.Event) error {
	if !e.Is(TopicUser, CodeValidated) {
		return nil
	}
	p, err := decodeUser(e)
	if err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	var pending []event.Event
	if !h.authors.Exists(ctx, id.AuthorID(p.ID)) {
		author, err := models.NewAuthor(id.AuthorID(p.ID), p.Username, p.Email, now)
		if err != nil {
			return err
		}
		if err := h.authors.Save(ctx, author); err != nil {
			return err
		}
		events, err := author.Events()
		if err != nil {
			return err
		}
		pending = append(pending, events...)
	}
	if !h.readers.Exists(ctx, id.ReaderID(p.ID)) {
		reader, err := models.NewReader(id.ReaderID(p.ID), p.Username, p.Email, now)
		if err != nil {
			return err
		}
		if err := h.readers.Save(ctx, reader); err != nil {
			return err
		}
		events, err := reader.Events()
		if err != nil {
			return err
		}
		pending = append(pending, events...)
	}
	if len(pending) == 0 {
		h.logger.DebugContext(ctx, "author and reader already exist", "user_id", p.ID)
		return nil
	}
	_, err = h.publisher.PublishAll(ctx, pending)
	return err
}

// UserDeletedHandler removes the Author and Reader of a deleted user.
type UserDeletedHandler struct {
	authors   *store.AuthorStore
	readers   *store.ReaderStore
	publisher event.Publisher
}

func NewUserDeletedHandler(authors *store.AuthorStore, readers *store.ReaderStore, publisher event.Publisher) *UserDeletedHandler {
	return &UserDeletedHandler{authors: authors, readers: readers, publisher: publisher}
}

func (h *UserDeletedHandler) Name() string { return "publishing.UserDeletedHandler" }

func (h *UserDeletedHandler) Handle(ctx context.Context, e event.Event) error {
	if !e.Is(TopicUser, CodeDeleted) {
		return nil
	}
	p, err := decodeUser(e)
	if err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	var pending []event.Event
	author, err := h.authors.FindByID(ctx, id.AuthorID(p.ID))
	switch {
	case err == nil:
		author.Delete(now)
		if err := h.authors.Save(ctx, author); err != nil {
			return err
		}
		events, err := author.Events()
		if err != nil {
			return err
		}
		pending = append(pending, events...)
	case !errors.Is(err, sentinel.ErrNotFound):
		return err
	}

	reader, err := h.readers.FindByID(ctx, id.ReaderID(p.ID))
	switch {
	case err == nil:
		reader.Delete(now)
		if err := h.readers.Save(ctx, reader); err != nil {
			return err
		}
		events, err := reader.Events()
		if err != nil {
			return err
		}
		pending = append(pending, events...)
	case !errors.Is(err, sentinel.ErrNotFound):
		return err
	}

	if len(pending) == 0 {
		return nil
	}
	_, err = h.publisher.PublishAll(ctx, pending)
	return err
}

var (
	_ event.Handler = (*UserValidatedHandler)(nil)
	_ event.Handler = (*UserDeletedHandler)(nil)
)
