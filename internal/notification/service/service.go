package service

import (
	"context"
	"errors"

	"scriptorium/internal/notification/models"
	"scriptorium/internal/notification/store"
	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
	"scriptorium/pkg/requestcontext"
)

// Service is the user-facing side of notifications.
type Service struct {
	notifications *store.Store
	publisher     event.Publisher
}

func New(notifications *store.Store, publisher event.Publisher) *Service {
	return &Service{notifications: notifications, publisher: publisher}
}

func (s *Service) List(ctx context.Context, userID id.UserID, offset, limit int) (*pagination.Pagination[*models.Notification], error) {
	return s.notifications.FindByUser(ctx, userID, offset, limit)
}

// MarkRead marks a notification read. Only its recipient may do so.
//
// Errors: CodeNotFound when the notification does not exist or belongs to
// another user.
func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	n, err := s.notifications.FindByID(ctx, notificationID)
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && n.UserID() != userID) {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	if err != nil {
		return err
	}
	n.MarkRead(requestcontext.Now(ctx))
	if err := s.notifications.Save(ctx, n); err != nil {
		return err
	}
	events, err := n.Events()
	if err != nil {
		return err
	}
	_, err = s.publisher.PublishAll(ctx, events)
	return err
}
