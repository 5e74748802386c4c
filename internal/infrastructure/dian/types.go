// Package dian implementa la factura electrónica de venta DIAN (Anexo Técnico 1.9) para la
// clínica: XML UBL 2.1, empaquetado ZIP, cliente SOAP y el adaptador que la facturación usa
// como autoridad electrónica.
package dian

import (
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// Issuer datos del emisor (la IPS) en AccountingSupplierParty.
type Issuer struct {
	NIT      string
	Name     string
	Address  string
	CityCode string // DIVIPOLA
	City     string
	Email    string
}

// BillingResolutionData datos de la resolución de facturación DIAN (obligatorios en ExtensionContent).
type BillingResolutionData struct {
	Number   string // Número de resolución (ej: 18764000000001)
	Prefix   string // Prefijo autorizado (ej: SETP)
	From     int64
	To       int64
	DateFrom time.Time
	DateTo   time.Time
}

// InvoiceBuildContext contexto con todos los datos necesarios para construir el XML de la factura.
type InvoiceBuildContext struct {
	Invoice    *entity.Invoice
	Patient    *entity.Patient // Adquiriente (AccountingCustomerParty)
	Issuer     Issuer
	Resolution *BillingResolutionData

	DocumentID   string    // prefijo + consecutivo
	CUFE         string    // va en cbc:UUID
	QRData       string    // sts:QRCode
	IssuedAt     time.Time // en hora de Colombia
	TipoAmbiente string    // 1 = producción, 2 = pruebas

	PaymentMeansCode string // Tabla 13; vacío = efectivo
}
