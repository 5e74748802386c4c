package ledger

import (
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// CancelInput solicitud de anulación.
type CancelInput struct {
	Reason string
	// RefundAcknowledged confirma que el dinero ya recaudado se devolverá por fuera del sistema.
	RefundAcknowledged bool
}

// Cancel anula la factura. No se permite si está Pagada o ya Cancelada; si tiene abonos
// exige la confirmación de reembolso.
func Cancel(inv *entity.Invoice, in CancelInput, at time.Time) error {
	if inv.IsTerminal() {
		return &domain.InvalidStateError{Current: string(inv.Status), Operation: "cancelar"}
	}
	var fields []domain.FieldError
	if strings.TrimSpace(in.Reason) == "" {
		fields = append(fields, domain.FieldError{Field: "motivo", Message: "es obligatorio"})
	}
	if inv.PaidTotal.IsPositive() && !in.RefundAcknowledged {
		fields = append(fields, domain.FieldError{
			Field:   "reembolso_confirmado",
			Message: "la factura tiene abonos por " + inv.PaidTotal.String() + "; confirme que se reembolsarán",
		})
	}
	if err := domain.NewValidationError(fields); err != nil {
		return err
	}

	cancelledAt := at
	inv.Status = entity.InvoiceStatusCancelled
	inv.CancellationReason = strings.TrimSpace(in.Reason)
	inv.CancelledAt = &cancelledAt
	inv.UpdatedAt = at
	return nil
}
