package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo libro de pagos. La tabla rechaza UPDATE y DELETE por trigger.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Append(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, method, reference, observations, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.InvoiceID, p.Amount.Decimal(), string(p.Method), p.Reference, p.Observations, p.RecordedBy, p.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByInvoice pagos de la factura en orden cronológico.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]entity.Payment, error) {
	if !isUUID(invoiceID) {
		return []entity.Payment{}, nil
	}
	out, err := queryPayments(ctx, r.q, `WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Payment{}
	}
	return out, nil
}

func queryPayments(ctx context.Context, q Querier, where string, args ...any) ([]entity.Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, observations, recorded_by, recorded_at
		FROM payments `+where+`
		ORDER BY recorded_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var out []entity.Payment
	for rows.Next() {
		var (
			p      entity.Payment
			amount decimal.Decimal
			method string
		)
		if err := rows.Scan(&p.ID, &p.InvoiceID, &amount, &method, &p.Reference, &p.Observations, &p.RecordedBy, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = money.New(amount)
		p.Method = entity.PaymentMethod(method)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
