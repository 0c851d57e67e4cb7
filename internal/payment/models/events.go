package models

import (
	"time"

	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/event"
)

const TopicPayment = "payment"

const (
	CodeCreated   = "created"
	CodePaid      = "paid"
	CodeCancelled = "cancelled"
	CodeRejected  = "rejected"
)

// PaymentChanged is recorded on creation and on every status transition.
// Code tells which one.
type PaymentChanged struct {
	Code      string        `json:"-"`
	PaymentID id.PaymentID  `json:"id"`
	PayerID   id.ReaderID   `json:"payer_id"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	At        time.Time     `json:"-"`
}

func (e PaymentChanged) ToEvent() (event.Event, error) {
	return event.New(TopicPayment, e.Code, e, e.At)
}
