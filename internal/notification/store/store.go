// Package store persists notifications and the recipient directory.
package store

import (
	"context"
	"sort"

	"scriptorium/internal/notification/models"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
)

type Store struct {
	notifications cache.Store[id.NotificationID, *models.Notification]
	page          pagination.Config
}

func New(notifications cache.Store[id.NotificationID, *models.Notification], page pagination.Config) *Store {
	return &Store{notifications: notifications, page: page}
}

func (s *Store) FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	n, ok := s.notifications.Get(ctx, notificationID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return n, nil
}

func (s *Store) Save(ctx context.Context, n *models.Notification) error {
	if n.IsDeleted() {
		return s.notifications.Delete(ctx, n.ID())
	}
	return s.notifications.Set(ctx, n.ID(), n)
}

// FindByUser pages over a user's notifications, newest first.
func (s *Store) FindByUser(ctx context.Context, userID id.UserID, offset, limit int) (*pagination.Pagination[*models.Notification], error) {
	all, err := s.notifications.Values(ctx)
	if err != nil {
		return nil, err
	}
	mine := all[:0]
	for _, n := range all {
		if n.UserID() == userID {
			mine = append(mine, n)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt().Equal(mine[j].CreatedAt()) {
			return mine[i].CreatedAt().After(mine[j].CreatedAt())
		}
		return mine[i].ID() > mine[j].ID()
	})
	return pagination.Apply(s.page, offset, limit, mine), nil
}

// Recipients maps users to the address their mail goes to. It is filled from
// identity events so notification never queries identity directly.
type Recipients struct {
	addresses cache.Cache[id.UserID, string]
}

func NewRecipients(addresses cache.Cache[id.UserID, string]) *Recipients {
	return &Recipients{addresses: addresses}
}

func (r *Recipients) Address(ctx context.Context, userID id.UserID) (string, bool) {
	return r.addresses.Get(ctx, userID)
}

func (r *Recipients) Set(ctx context.Context, userID id.UserID, address string) error {
	return r.addresses.Set(ctx, userID, address)
}

func (r *Recipients) Forget(ctx context.Context, userID id.UserID) error {
	return r.addresses.Delete(ctx, userID)
}
