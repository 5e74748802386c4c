package dto

import (
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// CreateInvoiceRequest body para POST /api/facturas.
type CreateInvoiceRequest struct {
	PatientID              string               `json:"paciente_id" validate:"required"`
	Items                  []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Taxes                  []TaxLineRequest     `json:"impuestos,omitempty" validate:"omitempty,dive"`
	Observations           string               `json:"observaciones,omitempty" validate:"max=2000"`
	CoveredByInsurance     bool                 `json:"cubierto_por_eps"`
	InsuranceAuthorization string               `json:"eps_autorizacion,omitempty" validate:"max=100"`
	EPSAmount              *money.Money         `json:"monto_eps,omitempty"`
	DueDate                *Date                `json:"fecha_vencimiento,omitempty"`
}

// InvoiceItemRequest línea de la factura.
type InvoiceItemRequest struct {
	Type        string      `json:"tipo" validate:"required,oneof=Consulta OrdenMedica OrdenMedicamento Hospitalizacion Otro"`
	Description string      `json:"descripcion" validate:"required,max=500"`
	Quantity    int64       `json:"cantidad" validate:"min=1"`
	UnitPrice   money.Money `json:"precio_unitario"`
	Discount    money.Money `json:"descuento"`
}

// TaxLineRequest impuesto informado por el llamador.
type TaxLineRequest struct {
	Code        string      `json:"codigo" validate:"required,oneof=01 04"`
	Description string      `json:"descripcion,omitempty"`
	Amount      money.Money `json:"valor"`
}

// UpdateInvoiceRequest body para PUT /api/facturas/:id. Solo metadatos.
type UpdateInvoiceRequest struct {
	Observations           *string `json:"observaciones,omitempty" validate:"omitempty,max=2000"`
	DueDate                *Date   `json:"fecha_vencimiento,omitempty"`
	InsuranceAuthorization *string `json:"eps_autorizacion,omitempty" validate:"omitempty,max=100"`
}

// CancelInvoiceRequest body para POST /api/facturas/:id/cancelar.
type CancelInvoiceRequest struct {
	Reason             string `json:"motivo" validate:"required,max=500"`
	RefundAcknowledged bool   `json:"reembolso_confirmado"`
}

// ListInvoicesRequest filtros de GET /api/facturas.
type ListInvoicesRequest struct {
	PageRequest
	Status    string `query:"estado" validate:"omitempty,oneof=Pendiente Parcial Pagada Cancelada"`
	PatientID string `query:"paciente_id"`
}

// PatientSummary paciente embebido en la factura.
type PatientSummary struct {
	ID             string `json:"id"`
	Name           string `json:"nombre"`
	DocumentType   string `json:"tipoDocumento,omitempty"`
	DocumentNumber string `json:"documento,omitempty"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string      `json:"id"`
	Type        string      `json:"tipo"`
	Description string      `json:"descripcion"`
	Quantity    int64       `json:"cantidad"`
	UnitPrice   money.Money `json:"precioUnitario"`
	Discount    money.Money `json:"descuento"`
	Subtotal    money.Money `json:"subtotal"`
}

// TaxLineResponse impuesto en la respuesta.
type TaxLineResponse struct {
	Code        string      `json:"codigo"`
	Description string      `json:"descripcion,omitempty"`
	Amount      money.Money `json:"valor"`
}

// InvoiceResponse factura con paciente, ítems, pagos y estado DIAN.
type InvoiceResponse struct {
	ID                     string                     `json:"id"`
	Number                 string                     `json:"numero"`
	Patient                PatientSummary             `json:"paciente"`
	Items                  []InvoiceItemResponse      `json:"items"`
	Taxes                  []TaxLineResponse          `json:"impuestosDetalle,omitempty"`
	Subtotal               money.Money                `json:"subtotal"`
	Discounts              money.Money                `json:"descuentos"`
	TaxTotal               money.Money                `json:"impuestos"`
	Total                  money.Money                `json:"total"`
	PaidTotal              money.Money                `json:"totalPagado"`
	BalanceDue             money.Money                `json:"saldoPendiente"`
	EPSAmount              *money.Money               `json:"montoEPS,omitempty"`
	PatientAmount          *money.Money               `json:"montoPaciente,omitempty"`
	Status                 string                     `json:"estado"`
	CoveredByInsurance     bool                       `json:"cubiertoPorEPS"`
	InsuranceAuthorization string                     `json:"epsAutorizacion,omitempty"`
	Observations           string                     `json:"observaciones,omitempty"`
	CancellationReason     string                     `json:"motivoCancelacion,omitempty"`
	CancelledAt            *time.Time                 `json:"fechaCancelacion,omitempty"`
	IssuedAt               time.Time                  `json:"fechaEmision"`
	DueAt                  *time.Time                 `json:"fechaVencimiento,omitempty"`
	Payments               []PaymentResponse          `json:"pagos"`
	CUFE                   string                     `json:"cufe,omitempty"`
	AuthorityStatus        string                     `json:"estadoDian,omitempty"`
	Electronic             *ElectronicInvoiceResponse `json:"facturaElectronica,omitempty"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Data       []InvoiceResponse `json:"data"`
	Pagination PageResponse      `json:"pagination"`
}

// NewInvoiceResponse mapea la entidad a la respuesta.
func NewInvoiceResponse(inv *entity.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:     inv.ID,
		Number: inv.Number,
		Patient: PatientSummary{
			ID:             inv.Patient.ID,
			Name:           inv.Patient.Name,
			DocumentType:   inv.Patient.DocumentType,
			DocumentNumber: inv.Patient.DocumentNumber,
		},
		Items:                  make([]InvoiceItemResponse, 0, len(inv.Items)),
		Subtotal:               inv.Subtotal,
		Discounts:              inv.Discounts,
		TaxTotal:               inv.TaxTotal,
		Total:                  inv.Total,
		PaidTotal:              inv.PaidTotal,
		BalanceDue:             inv.BalanceDue,
		EPSAmount:              inv.EPSAmount,
		PatientAmount:          inv.PatientAmount,
		Status:                 string(inv.Status),
		CoveredByInsurance:     inv.CoveredByInsurance,
		InsuranceAuthorization: inv.InsuranceAuthorization,
		Observations:           inv.Observations,
		CancellationReason:     inv.CancellationReason,
		CancelledAt:            inv.CancelledAt,
		IssuedAt:               inv.IssuedAt,
		DueAt:                  inv.DueAt,
		Payments:               make([]PaymentResponse, 0, len(inv.Payments)),
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			ID:          it.ID,
			Type:        string(it.Type),
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Subtotal:    it.Subtotal,
		})
	}
	for _, tx := range inv.Taxes {
		resp.Taxes = append(resp.Taxes, TaxLineResponse{Code: tx.Code, Description: tx.Description, Amount: tx.Amount})
	}
	for i := range inv.Payments {
		resp.Payments = append(resp.Payments, NewPaymentResponse(&inv.Payments[i]))
	}
	if inv.Electronic != nil {
		e := NewElectronicInvoiceResponse(inv.Electronic)
		resp.Electronic = &e
		resp.CUFE = inv.Electronic.CUFE
		resp.AuthorityStatus = string(inv.Electronic.Status)
	}
	return resp
}
