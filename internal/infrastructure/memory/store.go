// Package memory implementa los repositorios de facturación en memoria. Se usa con
// STORAGE_DRIVER=memory (desarrollo, demos) y en los tests de los casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
)

// Store guarda facturas, pagos, registros electrónicos y secuencias.
// Los datos se copian al entrar y al salir: ningún llamador comparte punteros con el store.
type Store struct {
	mu         sync.RWMutex
	invoices   map[string]*entity.Invoice
	payments   map[string][]entity.Payment
	electronic map[string]*entity.ElectronicInvoice
	sequences  map[string]int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
	seqMu   sync.Mutex
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		invoices:   make(map[string]*entity.Invoice),
		payments:   make(map[string][]entity.Payment),
		electronic: make(map[string]*entity.ElectronicInvoice),
		sequences:  make(map[string]int64),
		locks:      make(map[string]*sync.Mutex),
	}
}

var (
	_ repository.InvoiceRepository           = (*Store)(nil)
	_ repository.PaymentRepository           = (*Store)(nil)
	_ repository.SequenceRepository          = (*Store)(nil)
	_ repository.ElectronicInvoiceRepository = (*Store)(nil)
)

func (s *Store) invoiceLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}

// ── InvoiceRepository ─────────────────────────────────────────────────────────

func (s *Store) Create(_ context.Context, invoice *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertInvoice(invoice)
	return nil
}

func (s *Store) insertInvoice(invoice *entity.Invoice) {
	c := cloneHeader(invoice)
	c.Items = append([]entity.InvoiceItem(nil), invoice.Items...)
	c.Taxes = append([]entity.TaxLine(nil), invoice.Taxes...)
	s.invoices[c.ID] = c
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil
	}
	return s.full(inv), nil
}

// GetForUpdate fuera de una transacción no bloquea; ver TxRunner.
func (s *Store) GetForUpdate(_ context.Context, id string) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneHeader(inv), nil
}

func (s *Store) UpdateBalance(_ context.Context, invoice *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyBalance(invoice)
	return nil
}

func (s *Store) applyBalance(invoice *entity.Invoice) {
	if cur, ok := s.invoices[invoice.ID]; ok {
		cur.PaidTotal = invoice.PaidTotal
		cur.BalanceDue = invoice.BalanceDue
		cur.Status = invoice.Status
		cur.UpdatedAt = invoice.UpdatedAt
	}
}

func (s *Store) Cancel(_ context.Context, invoice *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCancel(invoice)
	return nil
}

func (s *Store) applyCancel(invoice *entity.Invoice) {
	if cur, ok := s.invoices[invoice.ID]; ok {
		cur.Status = invoice.Status
		cur.CancellationReason = invoice.CancellationReason
		cur.CancelledAt = copyTime(invoice.CancelledAt)
		cur.UpdatedAt = invoice.UpdatedAt
	}
}

func (s *Store) UpdateDetails(_ context.Context, invoice *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyDetails(invoice)
	return nil
}

func (s *Store) applyDetails(invoice *entity.Invoice) {
	if cur, ok := s.invoices[invoice.ID]; ok {
		cur.Observations = invoice.Observations
		cur.DueAt = copyTime(invoice.DueAt)
		cur.InsuranceAuthorization = invoice.InsuranceAuthorization
		cur.UpdatedAt = invoice.UpdatedAt
	}
}

// List más recientes primero.
func (s *Store) List(_ context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*entity.Invoice, 0)
	for _, inv := range s.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.PatientID != "" && inv.Patient.ID != filter.PatientID {
			continue
		}
		matched = append(matched, inv)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Consecutive > matched[j].Consecutive })
	total := len(matched)
	matched = page(matched, filter.Offset, filter.Limit)
	out := make([]*entity.Invoice, 0, len(matched))
	for _, inv := range matched {
		out = append(out, s.full(inv))
	}
	return out, total, nil
}

func (s *Store) ListByIDs(_ context.Context, ids []string) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Invoice, 0, len(ids))
	for _, id := range ids {
		if inv, ok := s.invoices[id]; ok {
			out = append(out, s.full(inv))
		}
	}
	return out, nil
}

func (s *Store) ListPendingEmission(_ context.Context, limit int) ([]*entity.Invoice, error) {
	return s.listWhere(limit, func(inv *entity.Invoice) bool {
		_, emitted := s.electronic[inv.ID]
		return inv.Status != entity.InvoiceStatusCancelled && !emitted
	}), nil
}

func (s *Store) ListEmissionErrors(_ context.Context, limit int) ([]*entity.Invoice, error) {
	return s.listWhere(limit, func(inv *entity.Invoice) bool {
		rec, ok := s.electronic[inv.ID]
		return ok && rec.Status == entity.AuthorityStatusRejected
	}), nil
}

// listWhere más antiguas primero.
func (s *Store) listWhere(limit int, keep func(*entity.Invoice) bool) []*entity.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*entity.Invoice, 0)
	for _, inv := range s.invoices {
		if keep(inv) {
			matched = append(matched, inv)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Consecutive < matched[j].Consecutive })
	matched = page(matched, 0, limit)
	out := make([]*entity.Invoice, 0, len(matched))
	for _, inv := range matched {
		out = append(out, s.full(inv))
	}
	return out
}

// ── PaymentRepository ─────────────────────────────────────────────────────────

func (s *Store) Append(_ context.Context, payment *entity.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[payment.InvoiceID] = append(s.payments[payment.InvoiceID], *payment)
	return nil
}

func (s *Store) ListByInvoice(_ context.Context, invoiceID string) ([]entity.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Payment{}, s.payments[invoiceID]...), nil
}

// ── SequenceRepository ────────────────────────────────────────────────────────

func (s *Store) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[name]++
	return s.sequences[name], nil
}

// ── ElectronicInvoiceRepository ───────────────────────────────────────────────

func (s *Store) GetByInvoiceID(_ context.Context, invoiceID string) (*entity.ElectronicInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.electronic[invoiceID]
	if !ok {
		return nil, nil
	}
	return cloneElectronic(rec), nil
}

func (s *Store) Save(_ context.Context, record *entity.ElectronicInvoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.electronic[record.InvoiceID]; ok && cur.Status == entity.AuthorityStatusAccepted {
		return nil
	}
	s.electronic[record.InvoiceID] = cloneElectronic(record)
	return nil
}

func (s *Store) TransitionStatus(_ context.Context, invoiceID string, from, to entity.AuthorityStatus, reason string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.electronic[invoiceID]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = at
	resolved := at
	cur.ResolvedAt = &resolved
	if to == entity.AuthorityStatusRejected {
		cur.RejectionReason = reason
	}
	return true, nil
}

func (s *Store) ListPending(_ context.Context, limit int) ([]*entity.ElectronicInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]*entity.ElectronicInvoice, 0)
	for _, rec := range s.electronic {
		if rec.Status == entity.AuthorityStatusPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].SubmittedAt.Before(pending[j].SubmittedAt) })
	pending = page(pending, 0, limit)
	out := make([]*entity.ElectronicInvoice, 0, len(pending))
	for _, rec := range pending {
		out = append(out, cloneElectronic(rec))
	}
	return out, nil
}

// ── copias ────────────────────────────────────────────────────────────────────

// full copia la factura con hijos, pagos y registro electrónico. Requiere s.mu tomado.
func (s *Store) full(inv *entity.Invoice) *entity.Invoice {
	c := cloneHeader(inv)
	c.Items = append([]entity.InvoiceItem{}, inv.Items...)
	c.Taxes = append([]entity.TaxLine{}, inv.Taxes...)
	c.Payments = append([]entity.Payment{}, s.payments[inv.ID]...)
	if rec, ok := s.electronic[inv.ID]; ok {
		c.Electronic = cloneElectronic(rec)
	}
	return c
}

func cloneHeader(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	c.Items = nil
	c.Taxes = nil
	c.Payments = nil
	c.Electronic = nil
	c.DueAt = copyTime(inv.DueAt)
	c.CancelledAt = copyTime(inv.CancelledAt)
	if inv.EPSAmount != nil {
		v := *inv.EPSAmount
		c.EPSAmount = &v
	}
	if inv.PatientAmount != nil {
		v := *inv.PatientAmount
		c.PatientAmount = &v
	}
	return &c
}

func cloneElectronic(rec *entity.ElectronicInvoice) *entity.ElectronicInvoice {
	c := *rec
	c.ResolvedAt = copyTime(rec.ResolvedAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
