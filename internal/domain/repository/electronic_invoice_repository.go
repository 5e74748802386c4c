package repository

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// ElectronicInvoiceRepository puerto del registro de factura electrónica (uno por factura).
type ElectronicInvoiceRepository interface {
	// GetByInvoiceID devuelve (nil, nil) si la factura nunca se emitió.
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.ElectronicInvoice, error)
	// Save crea o reemplaza el registro tras un envío. Nunca sobrescribe un registro ACEPTADA.
	Save(ctx context.Context, record *entity.ElectronicInvoice) error
	// TransitionStatus aplica from -> to solo si el estado actual sigue siendo from.
	// Devuelve false si otro proceso ya lo cambió.
	TransitionStatus(ctx context.Context, invoiceID string, from, to entity.AuthorityStatus, reason string, at time.Time) (bool, error)
	// ListPending registros en PENDIENTE, los más antiguos primero.
	ListPending(ctx context.Context, limit int) ([]*entity.ElectronicInvoice, error)
}
