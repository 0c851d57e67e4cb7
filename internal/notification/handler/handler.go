// Package handler turns identity and payment events into notifications.
package handler

import (
	"context"
	"fmt"
	"log/slog"

	"scriptorium/internal/notification/mailer"
	"scriptorium/internal/notification/models"
	"scriptorium/internal/notification/store"
	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/requestcontext"
)

// Topics and codes consumed from other contexts.
const (
	TopicUser    = "user"
	TopicPayment = "payment"

	CodeUserValidated             = "validated"
	CodePasswordRecoveryRequested = "password-recovery-requested"
	CodeUserDeleted               = "deleted"
	CodePaymentPaid               = "paid"
)

type userPayload struct {
	ID    id.UserID `json:"id"`
	Email string    `json:"email"`
}

type paymentPayload struct {
	ID      string  `json:"id"`
	PayerID string  `json:"payer_id"`
	Amount  float64 `json:"amount"`
}

// Handler is subscribed to the user and payment topics.
type Handler struct {
	notifications *store.Store
	recipients    *store.Recipients
	mailer        mailer.Mailer
	publisher     event.Publisher
	logger        *slog.Logger
}

func New(notifications *store.Store, recipients *store.Recipients, m mailer.Mailer, publisher event.Publisher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{notifications: notifications, recipients: recipients, mailer: m, publisher: publisher, logger: logger}
}

func (h *Handler) Name() string { return "notification.Handler" }

func (h *Handler) Handle(ctx context.Context, e event.Event) error {
	switch {
	case e.Is(TopicUser, CodeUserValidated):
		return h.onUserValidated(ctx, e)
	case e.Is(TopicUser, CodePasswordRecoveryRequested):
		return h.onPasswordRecovery(ctx, e)
	case e.Is(TopicUser, CodeUserDeleted):
		p, err := decodeUser(e)
		if err != nil {
			return err
		}
		return h.recipients.Forget(ctx, p.ID)
	case e.Is(TopicPayment, CodePaymentPaid):
		return h.onPaymentPaid(ctx, e)
	}
	return nil
}

func (h *Handler) onUserValidated(ctx context.Context, e event.Event) error {
	p, err := decodeUser(e)
	if err != nil {
		return err
	}
	if p.Email != "" {
		if err := h.recipients.Set(ctx, p.ID, p.Email); err != nil {
			return err
		}
	}
	return h.notify(ctx, p.ID, p.Email, models.KindWelcome,
		"Welcome to scriptorium",
		"Your account is confirmed. You can now publish and buy content.")
}

func (h *Handler) onPasswordRecovery(ctx context.Context, e event.Event) error {
	p, err := decodeUser(e)
	if err != nil {
		return err
	}
	return h.notify(ctx, p.ID, p.Email, models.KindPasswordRecovery,
		"Password recovery",
		"A password recovery was requested for your account. Ignore this message if it was not you.")
}

func decodeUser(e event.Event) (userPayload, error) {
	var p userPayload
	if err := e.Decode(&p); err != nil {
		return p, err
	}
	if p.ID.IsNil() {
		return p, dErrors.New(dErrors.CodeValidation, "user event without id")
	}
	return p, nil
}

func (h *Handler) onPaymentPaid(ctx context.Context, e event.Event) error {
	var p paymentPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	// readers share their user's id
	userID := id.UserID(p.PayerID)
	address, _ := h.recipients.Address(ctx, userID)
	return h.notify(ctx, userID, address, models.KindPaymentReceipt,
		"Payment receipt",
		fmt.Sprintf("We received your payment %s of %.2f.", p.ID, p.Amount))
}

// notify stores the notification, publishes its events and mails it when an
// address is known.
func (h *Handler) notify(ctx context.Context, userID id.UserID, address string, kind models.Kind, subject, body string) error {
	n, err := models.NewNotification(id.NewID[id.NotificationID](), userID, kind, subject, body, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	if err := h.notifications.Save(ctx, n); err != nil {
		return err
	}
	events, err := n.Events()
	if err != nil {
		return err
	}
	if _, err := h.publisher.PublishAll(ctx, events); err != nil {
		return err
	}

	if address == "" {
		h.logger.WarnContext(ctx, "no address for notification", "user_id", userID, "kind", kind)
		return nil
	}
	return h.mailer.Send(ctx, mailer.Mail{To: address, Subject: subject, Body: body})
}

var _ event.Handler = (*Handler)(nil)
