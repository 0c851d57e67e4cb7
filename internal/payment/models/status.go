package models

import dErrors "scriptorium/pkg/domain-errors"

// PaymentStatus is the finite-state machine of a payment. Transitions are
// only legal out of StatusWaitingPayment; every other status is terminal.
type PaymentStatus string

const (
	StatusWaitingPayment PaymentStatus = "waiting-payment"
	StatusPaid           PaymentStatus = "paid"
	StatusCancelled      PaymentStatus = "cancelled"
	StatusRejected       PaymentStatus = "rejected"
)

// ReasonNotWaitingPayment is the message of every rejected transition.
const ReasonNotWaitingPayment = "not_waiting_payment"

func (s PaymentStatus) Pay() (PaymentStatus, error) {
	return s.from(StatusPaid)
}

func (s PaymentStatus) Cancel() (PaymentStatus, error) {
	return s.from(StatusCancelled)
}

func (s PaymentStatus) Reject() (PaymentStatus, error) {
	return s.from(StatusRejected)
}

func (s PaymentStatus) from(next PaymentStatus) (PaymentStatus, error) {
	if s != StatusWaitingPayment {
		return s, dErrors.New(dErrors.CodeConflict, ReasonNotWaitingPayment)
	}
	return next, nil
}

func (s PaymentStatus) IsTerminal() bool {
	return s != StatusWaitingPayment
}

func (s PaymentStatus) String() string { return string(s) }
