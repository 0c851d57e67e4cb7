// Package publishing maintains the author and reader read models derived from
// identity events.
package publishing

import (
	"log/slog"

	"scriptorium/internal/publishing/handler"
	"scriptorium/internal/publishing/service"
	"scriptorium/internal/publishing/store"
	"scriptorium/pkg/platform/event"
)

type Service = service.Service

// Subscribe registers the identity event handlers on bus. Follow-up events
// (author/created, reader/created, ...) are published on the same bus.
func Subscribe(bus *event.Bus, authors *store.AuthorStore, readers *store.ReaderStore, logger *slog.Logger) {
	bus.Subscribe(handler.TopicUser, handler.NewUserValidatedHandler(authors, readers, bus, logger))
	bus.Subscribe(handler.TopicUser, handler.NewUserDeletedHandler(authors, readers, bus))
}

func NewService(authors *store.AuthorStore, readers *store.ReaderStore) *Service {
	return service.New(authors, readers)
}
