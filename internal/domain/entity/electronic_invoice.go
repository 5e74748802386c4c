package entity

import "time"

// AuthorityStatus estado del documento electrónico ante la DIAN.
type AuthorityStatus string

const (
	AuthorityStatusPending  AuthorityStatus = "PENDIENTE"
	AuthorityStatusAccepted AuthorityStatus = "ACEPTADA"
	AuthorityStatusRejected AuthorityStatus = "RECHAZADA"
)

// ElectronicInvoice registro de la factura electrónica. Se crea en el primer envío
// exitoso (o rechazado) y se actualiza en sitio.
type ElectronicInvoice struct {
	InvoiceID       string
	CUFE            string // Código Único de Factura Electrónica (SHA-384)
	TrackID         string // ZipKey devuelto por SendBillAsync / SendTestSetAsync
	Status          AuthorityStatus
	QRData          string
	RejectionReason string
	Attempts        int
	SubmittedAt     time.Time
	ResolvedAt      *time.Time
	UpdatedAt       time.Time
}
