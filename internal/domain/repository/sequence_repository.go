package repository

import "context"

// InvoiceSequenceName secuencia global de numeración de facturas.
const InvoiceSequenceName = "factura"

// SequenceRepository entrega consecutivos sin huecos. Debe usarse dentro de la
// transacción que persiste el documento numerado: si esta se revierte, el
// consecutivo se libera.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
