package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones sobre Store con la misma semántica que PostgreSQL para la
// facturación: GetForUpdate toma el bloqueo de la factura hasta el fin de la transacción,
// la secuencia queda bloqueada desde Next hasta el commit y las escrituras se aplican
// juntas al confirmar o se descartan si fn falla.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// RunBilling ejecuta fn con repositorios ligados a la transacción.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	sequenceRepo repository.SequenceRepository,
) error) error {
	tx := &memTx{store: r.store, seq: make(map[string]int64)}
	defer tx.release()

	if err := fn(txInvoiceRepo{Store: r.store, tx: tx}, txPaymentRepo{Store: r.store, tx: tx}, txSequenceRepo{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	store     *Store
	ops       []func()
	held      []*sync.Mutex
	seq       map[string]int64
	seqLocked bool
}

func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, op := range t.ops {
		op()
	}
	for name, v := range t.seq {
		t.store.sequences[name] = v
	}
}

func (t *memTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
	if t.seqLocked {
		t.store.seqMu.Unlock()
		t.seqLocked = false
	}
}

func (t *memTx) lock(id string) {
	m := t.store.invoiceLock(id)
	m.Lock()
	t.held = append(t.held, m)
}

// txInvoiceRepo lee lo confirmado y difiere las escrituras al commit.
type txInvoiceRepo struct {
	*Store
	tx *memTx
}

func (r txInvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	c := cloneHeader(invoice)
	c.Items = append([]entity.InvoiceItem(nil), invoice.Items...)
	c.Taxes = append([]entity.TaxLine(nil), invoice.Taxes...)
	r.tx.ops = append(r.tx.ops, func() { r.Store.insertInvoice(c) })
	return nil
}

func (r txInvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	r.tx.lock(id)
	return r.Store.GetForUpdate(ctx, id)
}

func (r txInvoiceRepo) UpdateBalance(_ context.Context, invoice *entity.Invoice) error {
	c := cloneHeader(invoice)
	r.tx.ops = append(r.tx.ops, func() { r.Store.applyBalance(c) })
	return nil
}

func (r txInvoiceRepo) Cancel(_ context.Context, invoice *entity.Invoice) error {
	c := cloneHeader(invoice)
	r.tx.ops = append(r.tx.ops, func() { r.Store.applyCancel(c) })
	return nil
}

func (r txInvoiceRepo) UpdateDetails(_ context.Context, invoice *entity.Invoice) error {
	c := cloneHeader(invoice)
	r.tx.ops = append(r.tx.ops, func() { r.Store.applyDetails(c) })
	return nil
}

type txPaymentRepo struct {
	*Store
	tx *memTx
}

func (r txPaymentRepo) Append(_ context.Context, payment *entity.Payment) error {
	p := *payment
	r.tx.ops = append(r.tx.ops, func() {
		r.Store.payments[p.InvoiceID] = append(r.Store.payments[p.InvoiceID], p)
	})
	return nil
}

type txSequenceRepo struct {
	tx *memTx
}

func (r txSequenceRepo) Next(_ context.Context, name string) (int64, error) {
	t := r.tx
	if !t.seqLocked {
		t.store.seqMu.Lock()
		t.seqLocked = true
	}
	cur, ok := t.seq[name]
	if !ok {
		t.store.mu.RLock()
		cur = t.store.sequences[name]
		t.store.mu.RUnlock()
	}
	cur++
	t.seq[name] = cur
	return cur, nil
}
