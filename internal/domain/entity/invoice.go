package entity

import (
	"time"

	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// InvoiceStatus estado de cobro de la factura.
type InvoiceStatus string

// Estados de la factura. Pagada y Cancelada son terminales para pagos.
const (
	InvoiceStatusPending   InvoiceStatus = "Pendiente"
	InvoiceStatusPartial   InvoiceStatus = "Parcial"
	InvoiceStatusPaid      InvoiceStatus = "Pagada"
	InvoiceStatusCancelled InvoiceStatus = "Cancelada"
)

// Valid indica si el estado es conocido.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// PatientRef referencia al paciente (servicio externo) con los datos congelados al crear la factura.
type PatientRef struct {
	ID             string
	Name           string
	DocumentType   string
	DocumentNumber string
}

// Invoice factura de la clínica. Ítems y montos se congelan al crearla.
type Invoice struct {
	ID          string
	Number      string // F-2026-00001
	Consecutive int64  // consecutivo global, base del número y del documento DIAN
	Patient     PatientRef

	Items []InvoiceItem
	Taxes []TaxLine

	Subtotal   money.Money
	Discounts  money.Money
	TaxTotal   money.Money
	Total      money.Money
	PaidTotal  money.Money
	BalanceDue money.Money

	// Distribución EPS/paciente (opcional, solo si CoveredByInsurance).
	EPSAmount     *money.Money
	PatientAmount *money.Money

	Status                 InvoiceStatus
	CoveredByInsurance     bool
	InsuranceAuthorization string
	Observations           string
	CancellationReason     string
	CancelledAt            *time.Time

	IssuedAt  time.Time
	DueAt     *time.Time
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Cargados bajo demanda por el repositorio.
	Payments   []Payment
	Electronic *ElectronicInvoice
}

// IsTerminal indica si la factura ya no admite pagos.
func (inv *Invoice) IsTerminal() bool {
	return inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled
}

// TaxLine impuesto informado al crear la factura (01 = IVA, 04 = INC).
type TaxLine struct {
	ID          string
	InvoiceID   string
	Code        string
	Description string
	Amount      money.Money
}
