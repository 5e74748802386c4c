package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos sin huecos sobre invoice_sequences. El UPSERT deja la fila
// bloqueada hasta el fin de la transacción: si esta se revierte el valor no se consume.
type SequenceRepo struct {
	q Querier
}

func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoice_sequences (name, last_value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`, name).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return next, nil
}
