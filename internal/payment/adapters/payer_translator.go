// Package adapters translates other contexts' models into payment's ports.
package adapters

import (
	"context"
	"errors"

	"scriptorium/internal/payment/models"
	pubmodels "scriptorium/internal/publishing/models"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/sentinel"
)

// ReaderFinder is the slice of publishing's reader repository the translator
// reads from.
type ReaderFinder interface {
	FindByID(ctx context.Context, readerID id.ReaderID) (*pubmodels.Reader, error)
}

// PayerTranslator implements the payment PayerRepository by delegating to
// publishing readers. It never writes.
type PayerTranslator struct {
	readers ReaderFinder
}

func NewPayerTranslator(readers ReaderFinder) *PayerTranslator {
	return &PayerTranslator{readers: readers}
}

// FindPayer returns sentinel.ErrNotFound when no reader has the id.
func (t *PayerTranslator) FindPayer(ctx context.Context, payerID id.ReaderID) (models.Payer, error) {
	r, err := t.readers.FindByID(ctx, payerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Payer{}, sentinel.ErrNotFound
		}
		return models.Payer{}, err
	}
	return models.Payer{ID: r.ID(), Email: r.Email()}, nil
}
