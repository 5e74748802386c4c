package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
)

var _ repository.ElectronicInvoiceRepository = (*ElectronicInvoiceRepo)(nil)

// ElectronicInvoiceRepo registro DIAN de cada factura (una fila por factura).
type ElectronicInvoiceRepo struct {
	q Querier
}

func NewElectronicInvoiceRepository(q Querier) *ElectronicInvoiceRepo {
	return &ElectronicInvoiceRepo{q: q}
}

func (r *ElectronicInvoiceRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.ElectronicInvoice, error) {
	if !isUUID(invoiceID) {
		return nil, nil
	}
	recs, err := queryElectronic(ctx, r.q, `WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// Save UPSERT que nunca pisa un registro ACEPTADA.
func (r *ElectronicInvoiceRepo) Save(ctx context.Context, rec *entity.ElectronicInvoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO electronic_invoices
			(invoice_id, cufe, track_id, status, qr_data, rejection_reason, attempts, submitted_at, resolved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (invoice_id) DO UPDATE SET
			cufe = EXCLUDED.cufe,
			track_id = EXCLUDED.track_id,
			status = EXCLUDED.status,
			qr_data = EXCLUDED.qr_data,
			rejection_reason = EXCLUDED.rejection_reason,
			attempts = EXCLUDED.attempts,
			submitted_at = EXCLUDED.submitted_at,
			resolved_at = EXCLUDED.resolved_at,
			updated_at = EXCLUDED.updated_at
		WHERE electronic_invoices.status <> 'ACEPTADA'`,
		rec.InvoiceID, rec.CUFE, rec.TrackID, string(rec.Status), rec.QRData, rec.RejectionReason,
		rec.Attempts, rec.SubmittedAt, rec.ResolvedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save electronic invoice: %w", err)
	}
	return nil
}

func (r *ElectronicInvoiceRepo) TransitionStatus(ctx context.Context, invoiceID string, from, to entity.AuthorityStatus, reason string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE electronic_invoices
		SET status = $3, rejection_reason = $4, resolved_at = $5, updated_at = $5
		WHERE invoice_id = $1 AND status = $2`,
		invoiceID, string(from), string(to), reason, at,
	)
	if err != nil {
		return false, fmt.Errorf("transition electronic invoice: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ElectronicInvoiceRepo) ListPending(ctx context.Context, limit int) ([]*entity.ElectronicInvoice, error) {
	return queryElectronic(ctx, r.q, `WHERE status = 'PENDIENTE' ORDER BY submitted_at LIMIT $1`, limit)
}

func queryElectronic(ctx context.Context, q Querier, tail string, args ...any) ([]*entity.ElectronicInvoice, error) {
	rows, err := q.Query(ctx, `
		SELECT invoice_id, cufe, track_id, status, qr_data, rejection_reason, attempts, submitted_at, resolved_at, updated_at
		FROM electronic_invoices `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list electronic invoices: %w", err)
	}
	defer rows.Close()
	var out []*entity.ElectronicInvoice
	for rows.Next() {
		var (
			rec    entity.ElectronicInvoice
			status string
		)
		if err := rows.Scan(&rec.InvoiceID, &rec.CUFE, &rec.TrackID, &status, &rec.QRData, &rec.RejectionReason,
			&rec.Attempts, &rec.SubmittedAt, &rec.ResolvedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan electronic invoice: %w", err)
		}
		rec.Status = entity.AuthorityStatus(status)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list electronic invoices: %w", err)
	}
	return out, nil
}
