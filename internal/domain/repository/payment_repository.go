package repository

import (
	"context"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// PaymentRepository puerto del libro de pagos. Solo inserción.
type PaymentRepository interface {
	Append(ctx context.Context, payment *entity.Payment) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]entity.Payment, error)
}
