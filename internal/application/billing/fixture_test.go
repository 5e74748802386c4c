package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/memory"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/patients"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

var ahora = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func reloj() time.Time { return ahora }

// fakeAuthority DIAN simulada y configurable por test.
type fakeAuthority struct {
	mu           sync.Mutex
	submits      int
	queries      int
	submitErr    error
	submitStatus entity.AuthorityStatus
	submitReason string
	queryStatus  entity.AuthorityStatus
	queryReason  string
	entered      chan struct{}
	block        chan struct{}
}

func (f *fakeAuthority) Submit(_ context.Context, doc *billing.AuthorityDocument) (*billing.AuthoritySubmission, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	status := f.submitStatus
	if status == "" {
		status = entity.AuthorityStatusPending
	}
	return &billing.AuthoritySubmission{
		Status:          status,
		CUFE:            "cufe-" + doc.Invoice.Number,
		TrackID:         "track-" + doc.Invoice.Number,
		QRData:          "qr",
		RejectionReason: f.submitReason,
	}, nil
}

func (f *fakeAuthority) QueryStatus(_ context.Context, _ billing.AuthorityStatusQuery) (*billing.AuthorityStatusResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	status := f.queryStatus
	if status == "" {
		status = entity.AuthorityStatusPending
	}
	return &billing.AuthorityStatusResult{Status: status, Reason: f.queryReason}, nil
}

func (f *fakeAuthority) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

type fakeMailer struct {
	sent []billing.EmailRequest
	err  error
}

func (m *fakeMailer) Dispatch(_ context.Context, req billing.EmailRequest) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, req)
	return nil
}

type fakePDF struct{ electronic *entity.ElectronicInvoice }

func (p *fakePDF) GenerateInvoicePDF(_ context.Context, _ billing.IssuerInfo, inv *entity.Invoice, e *entity.ElectronicInvoice) ([]byte, error) {
	p.electronic = e
	return []byte("%PDF-" + inv.Number), nil
}

type fakeArchive struct {
	names []string
	err   error
}

func (a *fakeArchive) Store(_ context.Context, name string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.names = append(a.names, name)
	return "s3://rips/" + name, nil
}

type fixture struct {
	store     *memory.Store
	locker    *memory.Locker
	authority *fakeAuthority
	mailer    *fakeMailer
	pdf       *fakePDF
	archive   *fakeArchive
	invoices  *billing.InvoiceUseCase
	payments  *billing.PaymentUseCase
	emission  *billing.EmissionUseCase
	rips      *billing.RIPSUseCase
	documents *billing.DocumentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	birth := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)
	dir := patients.NewStaticDirectory(
		entity.Patient{ID: "pac-1", FirstName: "Ana", LastName: "Gómez", DocumentType: "CC", DocumentNumber: "1020304050",
			Email: "ana@example.com", Gender: "Femenino", UserType: "Subsidiado", BirthDate: &birth},
		entity.Patient{ID: "pac-2", FirstName: "Luis", LastName: "Pérez", DocumentType: "TI", DocumentNumber: "99111222"},
	)
	log := logger.Nop()
	f := &fixture{
		store:     memory.NewStore(),
		locker:    memory.NewLocker(),
		authority: &fakeAuthority{},
		mailer:    &fakeMailer{},
		pdf:       &fakePDF{},
		archive:   &fakeArchive{},
	}
	tx := memory.NewTxRunner(f.store)
	f.invoices = billing.NewInvoiceUseCase(tx, f.store, dir, nil, log, reloj)
	f.payments = billing.NewPaymentUseCase(tx, f.store, f.store, nil, log, reloj)
	f.emission = billing.NewEmissionUseCase(f.store, f.store, dir, f.authority, f.locker, time.Minute, nil, log, reloj)
	f.rips = billing.NewRIPSUseCase(f.store, dir, f.archive, billing.RIPSProvider{NIT: "900.123.456-7", CodigoHabilitacion: "110010000001"}, nil, log, reloj)
	f.documents = billing.NewDocumentUseCase(f.store, dir, f.pdf, f.mailer, billing.IssuerInfo{Name: "Clínica Mía"}, "https://api.clinica.test/", log)
	return f
}

func solicitudBase() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		PatientID: "pac-1",
		Items: []dto.InvoiceItemRequest{
			{Type: "Consulta", Description: "Consulta general", Quantity: 1, UnitPrice: money.FromInt(100000)},
			{Type: "OrdenMedicamento", Description: "Acetaminofén", Quantity: 2, UnitPrice: money.FromInt(25000), Discount: money.FromInt(5000)},
		},
	}
}

func (f *fixture) crear(t *testing.T, req dto.CreateInvoiceRequest) *dto.InvoiceResponse {
	t.Helper()
	inv, err := f.invoices.CreateInvoice(context.Background(), "usr-1", req)
	require.NoError(t, err)
	return inv
}

func (f *fixture) pagar(t *testing.T, id string, monto int64) *dto.PaymentResultResponse {
	t.Helper()
	res, err := f.payments.RegisterPayment(context.Background(), "usr-1", id, dto.RegisterPaymentRequest{Amount: money.FromInt(monto), Method: "Efectivo"})
	require.NoError(t, err)
	return res
}

var errRed = errors.New("connection reset by peer")
