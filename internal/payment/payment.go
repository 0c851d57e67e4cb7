// Package payment tracks reader payments through their status machine.
package payment

import (
	"scriptorium/internal/payment/adapters"
	"scriptorium/internal/payment/service"
	"scriptorium/internal/payment/store"
	pubstore "scriptorium/internal/publishing/store"
	"scriptorium/pkg/platform/event"
)

type Service = service.Service

// NewService wires payment to publishing readers through the payer translator.
func NewService(payments *store.Store, readers *pubstore.ReaderStore, publisher event.Publisher, opts ...service.Option) *Service {
	return service.New(payments, adapters.NewPayerTranslator(readers), publisher, opts...)
}
