package models

import (
	"encoding/json"
	"math"
	"time"

	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
)

// Payment is a reader's payment and the history of its status.
//
// Invariants:
//   - amount is finite and strictly positive
//   - history starts at StatusWaitingPayment and only grows through
//     PaymentStatus transition methods
type Payment struct {
	id.AggregateRoot[id.PaymentID]
	payerID id.ReaderID
	amount  float64
	history id.StatusHistory[PaymentStatus]
}

// NewPayment creates a payment waiting to be paid and records PaymentCreated.
//
// Errors: CodeValidation for an invalid id or amount.
func NewPayment(paymentID id.PaymentID, payerID id.ReaderID, amount float64, now time.Time) (*Payment, error) {
	root, err := id.NewAggregateRoot(paymentID, now)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be a positive number")
	}
	p := &Payment{
		AggregateRoot: root,
		payerID:       payerID,
		amount:        amount,
		history:       id.NewStatusHistory(StatusWaitingPayment, now),
	}
	p.RecordEvent(p.changed(CodeCreated, now))
	return p, nil
}

func (p *Payment) PayerID() id.ReaderID { return p.payerID }
func (p *Payment) Amount() float64 { return p.amount }
func (p *Payment) Status() PaymentStatus { return p.history.Current() }

// StatusHistory returns a copy of the history.
func (p *Payment) StatusHistory() id.StatusHistory[PaymentStatus] { return p.history.Clone() }

// Pay moves the payment to paid.
//
// Errors: CodeConflict "not_waiting_payment" when the status is terminal;
// the history is left unchanged.
func (p *Payment) Pay(now time.Time) error {
	return p.transition(PaymentStatus.Pay, CodePaid, now)
}

func (p *Payment) Cancel(now time.Time) error {
	return p.transition(PaymentStatus.Cancel, CodeCancelled, now)
}

func (p *Payment) Reject(now time.Time) error {
	return p.transition(PaymentStatus.Reject, CodeRejected, now)
}

func (p *Payment) transition(step func(PaymentStatus) (PaymentStatus, error), code string, now time.Time) error {
	next, err := step(p.history.Current())
	if err != nil {
		return err
	}
	p.history.Add(next, now)
	p.Update(now)
	p.RecordEvent(p.changed(code, now))
	return nil
}

func (p *Payment) changed(code string, now time.Time) PaymentChanged {
	return PaymentChanged{
		Code:      code,
		PaymentID: p.ID(),
		PayerID:   p.payerID,
		Amount:    p.amount,
		Status:    p.history.Current(),
		At:        now,
	}
}

// Clone copies the persisted state. Pending events are not copied.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.AggregateRoot = p.Snapshot()
	c.history = p.history.Clone()
	return &c
}

type paymentState struct {
	id.AggregateState[id.PaymentID]
	PayerID id.ReaderID                     `json:"payer_id"`
	Amount  float64                         `json:"amount"`
	History id.StatusHistory[PaymentStatus] `json:"history"`
}

func (p *Payment) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentState{
		AggregateState: p.State(),
		PayerID:        p.payerID,
		Amount:         p.amount,
		History:        p.history,
	})
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	var s paymentState
	if err := json.Unmarshal(data, &s); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeSerialization, "decode payment")
	}
	root, err := id.RestoreAggregateRoot(s.AggregateState)
	if err != nil {
		return err
	}
	*p = Payment{AggregateRoot: root, payerID: s.PayerID, amount: s.Amount, history: s.History}
	return nil
}

// Payer is payment's view of the reader paying.
type Payer struct {
	ID    id.ReaderID
	Email string
}
