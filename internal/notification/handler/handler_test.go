package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"scriptorium/internal/notification/mailer"
	mailmocks "scriptorium/internal/notification/mailer/mocks"
	"scriptorium/internal/notification/models"
	"scriptorium/internal/notification/store"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache/memory"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mailer        *mailmocks.MockMailer
	bus           *event.Bus
	notifications *store.Store
	recipients    *store.Recipients
	published     []event.Event
	ctx           context.Context
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mailer = mailmocks.NewMockMailer(s.ctrl)
	s.bus = event.NewBus()
	s.notifications = store.New(memory.New[id.NotificationID, *models.Notification](), pagination.Config{})
	s.recipients = store.NewRecipients(memory.New[id.UserID, string]())
	s.published = nil

	h := New(s.notifications, s.recipients, s.mailer, s.bus, nil)
	s.bus.Subscribe(TopicUser, h)
	s.bus.Subscribe(TopicPayment, h)
	s.bus.Subscribe(models.TopicNotification, event.HandlerFunc(func(_ context.Context, e event.Event) error {
		s.published = append(s.published, e)
		return nil
	}))
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC))
}

func (s *HandlerSuite) publish(topic, code string, payload any) {
	e, err := event.New(topic, code, payload, time.Now())
	s.Require().NoError(err)
	_, err = s.bus.Publish(s.ctx, e)
	s.Require().NoError(err)
}

func (s *HandlerSuite) inbox(userID id.UserID) []*models.Notification {
	page, err := s.notifications.FindByUser(s.ctx, userID, 0, 0)
	s.Require().NoError(err)
	return page.Items()
}

func (s *HandlerSuite) TestValidatedSendsWelcome() {
	s.mailer.EXPECT().Send(gomock.Any(), gomock.Cond(func(m mailer.Mail) bool {
		return m.To == "jane@example.com" && m.Subject == "Welcome to scriptorium"
	})).Return(nil)

	s.publish(TopicUser, CodeUserValidated, map[string]string{"id": "usr-1", "email": "jane@example.com"})

	items := s.inbox("usr-1")
	s.Require().Len(items, 1)
	s.Equal(models.KindWelcome, items[0].Kind())
	s.Require().Len(s.published, 1)
	s.True(s.published[0].Is(models.TopicNotification, models.CodeCreated))

	address, ok := s.recipients.Address(s.ctx, "usr-1")
	s.True(ok)
	s.Equal("jane@example.com", address)
}

func (s *HandlerSuite) TestPasswordRecoveryMailsPayloadAddress() {
	s.mailer.EXPECT().Send(gomock.Any(), gomock.Cond(func(m mailer.Mail) bool {
		return m.To == "ann@example.com" && m.Subject == "Password recovery"
	})).Return(nil)

	s.publish(TopicUser, CodePasswordRecoveryRequested, map[string]string{"id": "usr-2", "email": "ann@example.com"})

	items := s.inbox("usr-2")
	s.Require().Len(items, 1)
	s.Equal(models.KindPasswordRecovery, items[0].Kind())
}

func (s *HandlerSuite) TestPaidSendsReceiptToKnownRecipient() {
	s.Require().NoError(s.recipients.Set(s.ctx, "usr-3", "payer@example.com"))
	s.mailer.EXPECT().Send(gomock.Any(), gomock.Cond(func(m mailer.Mail) bool {
		return m.To == "payer@example.com" && m.Body == "We received your payment pay-1 of 10.00."
	})).Return(nil)

	s.publish(TopicPayment, CodePaymentPaid, map[string]any{"id": "pay-1", "payer_id": "usr-3", "amount": 10.0, "status": "paid"})

	items := s.inbox("usr-3")
	s.Require().Len(items, 1)
	s.Equal(models.KindPaymentReceipt, items[0].Kind())
}

func (s *HandlerSuite) TestUnknownRecipientStoresWithoutMail() {
	s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	s.publish(TopicPayment, CodePaymentPaid, map[string]any{"id": "pay-2", "payer_id": "usr-9", "amount": 3.5})

	s.Len(s.inbox("usr-9"), 1)
}

func (s *HandlerSuite) TestDeletedForgetsRecipient() {
	s.Require().NoError(s.recipients.Set(s.ctx, "usr-4", "gone@example.com"))

	s.publish(TopicUser, CodeUserDeleted, map[string]string{"id": "usr-4"})

	_, ok := s.recipients.Address(s.ctx, "usr-4")
	s.False(ok)
	s.Empty(s.inbox("usr-4"))
}

func (s *HandlerSuite) TestOtherCodesIgnored() {
	s.publish(TopicPayment, "created", map[string]any{"id": "pay-3", "payer_id": "usr-5"})
	s.publish(TopicUser, "registered", map[string]string{"id": "usr-5"})

	s.Empty(s.inbox("usr-5"))
	s.Empty(s.published)
}

func TestHandleReturnsMailerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mailmocks.NewMockMailer(ctrl)
	boom := errors.New("smtp down")
	m.EXPECT().Send(gomock.Any(), gomock.Any()).Return(boom)

	notifications := store.New(memory.New[id.NotificationID, *models.Notification](), pagination.Config{})
	h := New(notifications, store.NewRecipients(memory.New[id.UserID, string]()), m, event.NewBus(), nil)

	e, err := event.New(TopicUser, CodeUserValidated, map[string]string{"id": "usr-6", "email": "x@example.com"}, time.Now())
	require.NoError(t, err)

	err = h.Handle(context.Background(), e)
	assert.ErrorIs(t, err, boom)

	page, err := notifications.FindByUser(context.Background(), "usr-6", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items(), 1, "notification is kept even when mail fails")
}

func TestHandleRejectsBadPayload(t *testing.T) {
	h := New(store.New(memory.New[id.NotificationID, *models.Notification](), pagination.Config{}),
		store.NewRecipients(memory.New[id.UserID, string]()), mailer.NewLogMailer(nil), event.NewBus(), nil)

	e := event.Event{Topic: TopicUser, Code: CodeUserValidated, Payload: []byte("{")}
	assert.Error(t, h.Handle(context.Background(), e))

	e = event.Event{Topic: TopicUser, Code: CodeUserValidated, Payload: []byte(`{"email":"a@b.c"}`)}
	assert.Error(t, h.Handle(context.Background(), e), "missing user id")
}
