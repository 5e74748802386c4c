package ledger

import (
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// PaymentInput pago solicitado por caja.
type PaymentInput struct {
	Amount       money.Money
	Method       entity.PaymentMethod
	Reference    string
	Observations string
}

// Validate revisa el pago sin mirar la factura.
func (p PaymentInput) Validate() error {
	var fields []domain.FieldError
	if !p.Amount.IsPositive() {
		fields = append(fields, domain.FieldError{Field: "monto", Message: "debe ser mayor que cero"})
	}
	if !p.Method.Valid() {
		fields = append(fields, domain.FieldError{Field: "metodo_pago", Message: "método de pago desconocido"})
	}
	return domain.NewValidationError(fields)
}

// ApplyPayment valida el pago contra el saldo y, si procede, actualiza total pagado,
// saldo y estado de la factura. Si devuelve error la factura queda intacta.
// El llamador debe tener el bloqueo exclusivo de la factura.
func ApplyPayment(inv *entity.Invoice, in PaymentInput, at time.Time) (*entity.Payment, error) {
	if inv.IsTerminal() {
		return nil, &domain.InvalidStateError{Current: string(inv.Status), Operation: "registrar pagos en"}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Amount.GreaterThan(inv.BalanceDue) {
		return nil, &domain.InsufficientBalanceError{Requested: in.Amount.String(), Balance: inv.BalanceDue.String()}
	}

	inv.PaidTotal = inv.PaidTotal.Add(in.Amount)
	inv.BalanceDue = inv.Total.Sub(inv.PaidTotal)
	inv.Status = DeriveStatus(inv.Total, inv.PaidTotal, false)
	inv.UpdatedAt = at

	return &entity.Payment{
		InvoiceID:    inv.ID,
		Amount:       in.Amount,
		Method:       in.Method,
		Reference:    strings.TrimSpace(in.Reference),
		Observations: strings.TrimSpace(in.Observations),
		RecordedAt:   at,
	}, nil
}
