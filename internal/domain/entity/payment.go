package entity

import (
	"time"

	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// PaymentMethod medio de pago aceptado en caja.
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "Efectivo"
	PaymentMethodCard      PaymentMethod = "Tarjeta"
	PaymentMethodTransfer  PaymentMethod = "Transferencia"
	PaymentMethodInsurance PaymentMethod = "EPS"
	PaymentMethodOther     PaymentMethod = "Otro"
)

// Valid indica si el medio de pago es conocido.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodInsurance, PaymentMethodOther:
		return true
	}
	return false
}

// Payment abono registrado contra una factura. Solo se agregan, nunca se editan ni borran.
type Payment struct {
	ID           string
	InvoiceID    string
	Amount       money.Money
	Method       PaymentMethod
	Reference    string
	Observations string
	RecordedBy   string
	RecordedAt   time.Time
}
