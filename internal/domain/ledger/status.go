// Package ledger reúne las reglas puras de facturación: totales, máquina de estados,
// aplicación de pagos, cancelación y transiciones del estado DIAN. No hace I/O.
package ledger

import (
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// DeriveStatus calcula el estado de la factura a partir de (total, Σpagos, cancelada).
// No depende del orden de los pagos. Una factura de total 0 queda Pagada sin pagos.
func DeriveStatus(total, paid money.Money, cancelled bool) entity.InvoiceStatus {
	switch {
	case cancelled:
		return entity.InvoiceStatusCancelled
	case paid.Cmp(total) >= 0:
		return entity.InvoiceStatusPaid
	case paid.IsPositive():
		return entity.InvoiceStatusPartial
	default:
		return entity.InvoiceStatusPending
	}
}

// Replay recalcula total pagado, saldo y estado desde el historial de pagos.
func Replay(total money.Money, payments []entity.Payment, cancelled bool) (paid, balance money.Money, status entity.InvoiceStatus) {
	paid = money.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid, total.Sub(paid), DeriveStatus(total, paid, cancelled)
}
