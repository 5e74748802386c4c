package dto

import (
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// ElectronicInvoiceResponse registro de factura electrónica.
type ElectronicInvoiceResponse struct {
	CUFE            string     `json:"cufe"`
	AuthorityStatus string     `json:"estadoDian"`
	TrackID         string     `json:"trackId,omitempty"`
	QRData          string     `json:"qr,omitempty"`
	RejectionReason string     `json:"motivoRechazo,omitempty"`
	Attempts        int        `json:"intentos"`
	SubmittedAt     time.Time  `json:"fechaEnvio"`
	ResolvedAt      *time.Time `json:"fechaRespuesta,omitempty"`
}

// NewElectronicInvoiceResponse mapea la entidad.
func NewElectronicInvoiceResponse(e *entity.ElectronicInvoice) ElectronicInvoiceResponse {
	return ElectronicInvoiceResponse{
		CUFE:            e.CUFE,
		AuthorityStatus: string(e.Status),
		TrackID:         e.TrackID,
		QRData:          e.QRData,
		RejectionReason: e.RejectionReason,
		Attempts:        e.Attempts,
		SubmittedAt:     e.SubmittedAt,
		ResolvedAt:      e.ResolvedAt,
	}
}

// AuthorityCallbackRequest body para POST /api/facturas/:id/estado-dian.
type AuthorityCallbackRequest struct {
	Status string `json:"estado" validate:"required,oneof=PENDIENTE ACEPTADA RECHAZADA"`
	Reason string `json:"motivo,omitempty" validate:"max=2000"`
}

// EmissionErrorResponse GET /api/facturas/:id/errores-dian.
type EmissionErrorResponse struct {
	InvoiceID       string `json:"facturaId"`
	Number          string `json:"numero"`
	AuthorityStatus string `json:"estadoDian,omitempty"`
	RejectionReason string `json:"motivoRechazo,omitempty"`
	Attempts        int    `json:"intentos"`
}

// SendEmailRequest body para POST /api/facturas/:id/enviar-email.
type SendEmailRequest struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// SendEmailResponse confirmación del encolado.
type SendEmailResponse struct {
	Queued bool   `json:"encolado"`
	To     string `json:"destinatario"`
}
