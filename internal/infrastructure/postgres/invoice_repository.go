package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, number, consecutive, patient_id, patient_name, patient_doc_type, patient_doc_number,
	subtotal, discounts, tax_total, total, paid_total, balance_due, eps_amount, patient_amount,
	status, covered_by_insurance, insurance_authorization, observations, cancellation_reason,
	cancelled_at, issued_at, due_at, created_by, created_at, updated_at`

// Create persiste cabecera, ítems e impuestos.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, inv.Consecutive, inv.Patient.ID, inv.Patient.Name, inv.Patient.DocumentType, inv.Patient.DocumentNumber,
		inv.Subtotal.Decimal(), inv.Discounts.Decimal(), inv.TaxTotal.Decimal(), inv.Total.Decimal(),
		inv.PaidTotal.Decimal(), inv.BalanceDue.Decimal(), nullDecimal(inv.EPSAmount), nullDecimal(inv.PatientAmount),
		string(inv.Status), inv.CoveredByInsurance, inv.InsuranceAuthorization, inv.Observations, inv.CancellationReason,
		inv.CancelledAt, inv.IssuedAt, inv.DueAt, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for _, it := range inv.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, position, type, description, quantity, unit_price, discount, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, inv.ID, it.Position, string(it.Type), it.Description, it.Quantity,
			it.UnitPrice.Decimal(), it.Discount.Decimal(), it.Subtotal.Decimal(),
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	for _, tx := range inv.Taxes {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_taxes (id, invoice_id, code, description, amount)
			VALUES ($1, $2, $3, $4, $5)`,
			tx.ID, inv.ID, tx.Code, tx.Description, tx.Amount.Decimal(),
		)
		if err != nil {
			return fmt.Errorf("insert invoice tax: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una factura completa por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if !isUUID(id) {
		return nil, nil
	}
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadChildren(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el commit o rollback.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	if !isUUID(id) {
		return nil, nil
	}
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) UpdateBalance(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET paid_total = $2, balance_due = $3, status = $4, updated_at = $5
		WHERE id = $1`,
		inv.ID, inv.PaidTotal.Decimal(), inv.BalanceDue.Decimal(), string(inv.Status), inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice balance: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) Cancel(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET status = $2, cancellation_reason = $3, cancelled_at = $4, updated_at = $5
		WHERE id = $1`,
		inv.ID, string(inv.Status), inv.CancellationReason, inv.CancelledAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("cancel invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) UpdateDetails(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET observations = $2, due_at = $3, insurance_authorization = $4, updated_at = $5
		WHERE id = $1`,
		inv.ID, inv.Observations, inv.DueAt, inv.InsuranceAuthorization, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice details: %w", err)
	}
	return nil
}

// List listado paginado, más recientes primero. Devuelve además el total sin paginar.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM invoices
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR patient_id = $2)`,
		string(f.Status), f.PatientID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	invoices, err := r.query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR patient_id = $2)
		ORDER BY consecutive DESC
		LIMIT $3 OFFSET $4`,
		string(f.Status), f.PatientID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *InvoiceRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE id::text = ANY($1)
		ORDER BY consecutive`, ids)
}

func (r *InvoiceRepo) ListPendingEmission(ctx context.Context, limit int) ([]*entity.Invoice, error) {
	return r.query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices i
		WHERE i.status <> 'Cancelada'
		  AND NOT EXISTS (SELECT 1 FROM electronic_invoices e WHERE e.invoice_id = i.id)
		ORDER BY i.consecutive
		LIMIT $1`, limit)
}

func (r *InvoiceRepo) ListEmissionErrors(ctx context.Context, limit int) ([]*entity.Invoice, error) {
	return r.query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices i
		WHERE EXISTS (SELECT 1 FROM electronic_invoices e WHERE e.invoice_id = i.id AND e.status = 'RECHAZADA')
		ORDER BY i.consecutive
		LIMIT $1`, limit)
}

func (r *InvoiceRepo) query(ctx context.Context, sql string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if err := r.loadChildren(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadChildren carga ítems, impuestos, pagos y registro electrónico de las facturas dadas.
func (r *InvoiceRepo) loadChildren(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
		inv.Items = []entity.InvoiceItem{}
		inv.Taxes = []entity.TaxLine{}
		inv.Payments = []entity.Payment{}
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, position, type, description, quantity, unit_price, discount, subtotal
		FROM invoice_items WHERE invoice_id::text = ANY($1)
		ORDER BY invoice_id, position`, ids)
	if err != nil {
		return fmt.Errorf("get invoice items: %w", err)
	}
	for rows.Next() {
		var (
			it                          entity.InvoiceItem
			typ                         string
			unitPrice, discount, subtot decimal.Decimal
		)
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &typ, &it.Description, &it.Quantity, &unitPrice, &discount, &subtot); err != nil {
			rows.Close()
			return fmt.Errorf("scan invoice item: %w", err)
		}
		it.Type = entity.ItemType(typ)
		it.UnitPrice, it.Discount, it.Subtotal = money.New(unitPrice), money.New(discount), money.New(subtot)
		byID[it.InvoiceID].Items = append(byID[it.InvoiceID].Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("get invoice items: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, invoice_id, code, description, amount
		FROM invoice_taxes WHERE invoice_id::text = ANY($1)
		ORDER BY invoice_id, code`, ids)
	if err != nil {
		return fmt.Errorf("get invoice taxes: %w", err)
	}
	for rows.Next() {
		var (
			tx     entity.TaxLine
			amount decimal.Decimal
		)
		if err := rows.Scan(&tx.ID, &tx.InvoiceID, &tx.Code, &tx.Description, &amount); err != nil {
			rows.Close()
			return fmt.Errorf("scan invoice tax: %w", err)
		}
		tx.Amount = money.New(amount)
		byID[tx.InvoiceID].Taxes = append(byID[tx.InvoiceID].Taxes, tx)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("get invoice taxes: %w", err)
	}

	payments, err := queryPayments(ctx, r.q, `WHERE invoice_id::text = ANY($1)`, ids)
	if err != nil {
		return err
	}
	for _, p := range payments {
		byID[p.InvoiceID].Payments = append(byID[p.InvoiceID].Payments, p)
	}

	records, err := queryElectronic(ctx, r.q, `WHERE invoice_id::text = ANY($1)`, ids)
	if err != nil {
		return err
	}
	for _, rec := range records {
		byID[rec.InvoiceID].Electronic = rec
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                                                 entity.Invoice
		status                                              string
		subtotal, discounts, taxTotal, total, paid, balance decimal.Decimal
		epsAmount, patientAmount                            decimal.NullDecimal
	)
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Consecutive, &inv.Patient.ID, &inv.Patient.Name, &inv.Patient.DocumentType, &inv.Patient.DocumentNumber,
		&subtotal, &discounts, &taxTotal, &total, &paid, &balance, &epsAmount, &patientAmount,
		&status, &inv.CoveredByInsurance, &inv.InsuranceAuthorization, &inv.Observations, &inv.CancellationReason,
		&inv.CancelledAt, &inv.IssuedAt, &inv.DueAt, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	inv.Subtotal = money.New(subtotal)
	inv.Discounts = money.New(discounts)
	inv.TaxTotal = money.New(taxTotal)
	inv.Total = money.New(total)
	inv.PaidTotal = money.New(paid)
	inv.BalanceDue = money.New(balance)
	inv.EPSAmount = moneyPtr(epsAmount)
	inv.PatientAmount = moneyPtr(patientAmount)
	return &inv, nil
}
