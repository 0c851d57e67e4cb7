package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"scriptorium/internal/payment/models"
	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
	"scriptorium/pkg/requestcontext"
)

type Repository interface {
	FindByID(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error)
	Save(ctx context.Context, p *models.Payment) error
	FindByPayer(ctx context.Context, payerID id.ReaderID, offset, limit int) (*pagination.Pagination[*models.Payment], error)
}

// PayerRepository resolves payers. Returns sentinel.ErrNotFound for unknown
// payers.
type PayerRepository interface {
	FindPayer(ctx context.Context, payerID id.ReaderID) (models.Payer, error)
}

// Service runs payment use cases.
type Service struct {
	payments  Repository
	payers    PayerRepository
	publisher event.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(payments Repository, payers PayerRepository, publisher event.Publisher, opts ...Option) *Service {
	s := &Service{payments: payments, payers: payers, publisher: publisher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create opens a payment for a known reader.
//
// Errors: CodeValidation for a bad amount or payer id, CodeNotFound when the
// payer is not a reader.
func (s *Service) Create(ctx context.Context, rawPayerID string, amount float64) (*models.Payment, error) {
	payerID, err := id.ParseID[id.ReaderID](rawPayerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.payers.FindPayer(ctx, payerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "payer not found")
		}
		return nil, err
	}
	p, err := models.NewPayment(id.NewID[id.PaymentID](), payerID, amount, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "payment created", "payment_id", p.ID(), "payer_id", payerID, "amount", amount)
	return p, nil
}

func (s *Service) Pay(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	return s.transition(ctx, paymentID, (*models.Payment).Pay)
}

func (s *Service) Cancel(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	return s.transition(ctx, paymentID, (*models.Payment).Cancel)
}

func (s *Service) Reject(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	return s.transition(ctx, paymentID, (*models.Payment).Reject)
}

func (s *Service) Get(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	p, err := s.payments.FindByID(ctx, paymentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "payment not found")
	}
	return p, err
}

func (s *Service) ListByPayer(ctx context.Context, payerID id.ReaderID, offset, limit int) (*pagination.Pagination[*models.Payment], error) {
	return s.payments.FindByPayer(ctx, payerID, offset, limit)
}

func (s *Service) transition(ctx context.Context, paymentID id.PaymentID, apply func(*models.Payment, time.Time) error) (*models.Payment, error) {
	p, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := apply(p, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) saveAndPublish(ctx context.Context, p *models.Payment) error {
	if err := s.payments.Save(ctx, p); err != nil {
		return err
	}
	events, err := p.Events()
	if err != nil {
		return err
	}
	_, err = s.publisher.PublishAll(ctx, events)
	return err
}
