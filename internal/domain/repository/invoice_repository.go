package repository

import (
	"context"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// InvoiceFilter filtros del listado paginado.
type InvoiceFilter struct {
	Status    entity.InvoiceStatus
	PatientID string
	Limit     int
	Offset    int
}

// InvoiceRepository define el puerto de persistencia para Invoice, sus ítems e impuestos.
// Los métodos de lectura devuelven (nil, nil) cuando la factura no existe.
type InvoiceRepository interface {
	// Create inserta cabecera, ítems e impuestos. Número y consecutivo ya vienen asignados.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID carga la factura con ítems, impuestos, pagos y registro electrónico.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate bloquea la fila de la factura (SELECT FOR UPDATE) hasta el fin de la transacción.
	// Solo carga la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdateBalance persiste total pagado, saldo y estado.
	UpdateBalance(ctx context.Context, invoice *entity.Invoice) error
	// Cancel persiste estado Cancelada, motivo y fecha.
	Cancel(ctx context.Context, invoice *entity.Invoice) error
	// UpdateDetails persiste solo observaciones, fecha de vencimiento y autorización EPS.
	UpdateDetails(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, int, error)
	// ListByIDs carga las facturas existentes entre los ids dados (con ítems); los ids desconocidos se ignoran.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error)
	// ListPendingEmission facturas no canceladas sin registro electrónico.
	ListPendingEmission(ctx context.Context, limit int) ([]*entity.Invoice, error)
	// ListEmissionErrors facturas cuyo registro electrónico quedó RECHAZADA.
	ListEmissionErrors(ctx context.Context, limit int) ([]*entity.Invoice, error)
}
