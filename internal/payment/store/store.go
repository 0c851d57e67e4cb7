// Package store persists payments in a cache backend.
package store

import (
	"context"
	"sort"

	"scriptorium/internal/payment/models"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
)

type Store struct {
	payments cache.Store[id.PaymentID, *models.Payment]
	page     pagination.Config
}

func New(payments cache.Store[id.PaymentID, *models.Payment], page pagination.Config) *Store {
	return &Store{payments: payments, page: page}
}

func (s *Store) FindByID(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	p, ok := s.payments.Get(ctx, paymentID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *Store) Save(ctx context.Context, p *models.Payment) error {
	if p.IsDeleted() {
		return s.payments.Delete(ctx, p.ID())
	}
	return s.payments.Set(ctx, p.ID(), p)
}

// FindByPayer pages over a payer's payments, oldest first.
func (s *Store) FindByPayer(ctx context.Context, payerID id.ReaderID, offset, limit int) (*pagination.Pagination[*models.Payment], error) {
	all, err := s.payments.Values(ctx)
	if err != nil {
		return nil, err
	}
	mine := all[:0]
	for _, p := range all {
		if p.PayerID() == payerID {
			mine = append(mine, p)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt().Equal(mine[j].CreatedAt()) {
			return mine[i].CreatedAt().Before(mine[j].CreatedAt())
		}
		return mine[i].ID() < mine[j].ID()
	})
	return pagination.Apply(s.page, offset, limit, mine), nil
}
