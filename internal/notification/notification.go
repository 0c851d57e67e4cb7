// Package notification stores and mails messages triggered by identity and
// payment events.
package notification

import (
	"log/slog"

	"scriptorium/internal/notification/handler"
	"scriptorium/internal/notification/mailer"
	"scriptorium/internal/notification/service"
	"scriptorium/internal/notification/store"
	"scriptorium/pkg/platform/event"
)

type Service = service.Service

// Subscribe registers the notification handler on the user and payment topics.
func Subscribe(bus *event.Bus, notifications *store.Store, recipients *store.Recipients, m mailer.Mailer, logger *slog.Logger) {
	h := handler.New(notifications, recipients, m, bus, logger)
	bus.Subscribe(handler.TopicUser, h)
	bus.Subscribe(handler.TopicPayment, h)
}

func NewService(notifications *store.Store, publisher event.Publisher) *Service {
	return service.New(notifications, publisher)
}
