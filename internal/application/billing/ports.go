package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios ligados a ella.
// Si fn devuelve error se hace rollback y nada queda persistido.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		sequenceRepo repository.SequenceRepository,
	) error) error
}

// PatientDirectory servicio externo de pacientes. GetPatient devuelve (nil, nil) si no existe
// y un error que envuelve domain.ErrDependencyUnavailable si el servicio no responde.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id string) (*entity.Patient, error)
}

// AuthorityDocument instantánea congelada que se envía a la DIAN.
type AuthorityDocument struct {
	Invoice *entity.Invoice
	Patient *entity.Patient
}

// AuthoritySubmission resultado de negocio de un envío. Status es PENDIENTE (recibido,
// en validación) o RECHAZADA (con RejectionReason).
type AuthoritySubmission struct {
	Status          entity.AuthorityStatus
	CUFE            string
	TrackID         string
	QRData          string
	RejectionReason string
}

// AuthorityStatusQuery referencia para consultar el estado de un documento.
type AuthorityStatusQuery struct {
	CUFE    string
	TrackID string
}

// AuthorityStatusResult estado informado por la DIAN.
type AuthorityStatusResult struct {
	Status entity.AuthorityStatus
	Reason string
}

// ElectronicAuthority puerto hacia la DIAN. Un error devuelto es de transporte
// (*domain.AuthorityTransportError: red, timeout, SOAP fault o respuesta ilegible) salvo que
// envuelva domain.ErrInvalidInput, cuando el documento no se puede armar con los datos actuales.
// Los rechazos de negocio llegan como AuthoritySubmission con Status RECHAZADA.
type ElectronicAuthority interface {
	Submit(ctx context.Context, doc *AuthorityDocument) (*AuthoritySubmission, error)
	QueryStatus(ctx context.Context, ref AuthorityStatusQuery) (*AuthorityStatusResult, error)
}

// EmissionLocker bloqueo corto por factura mientras se envía a la DIAN.
type EmissionLocker interface {
	// TryLock devuelve ok=false si otro proceso tiene el bloqueo.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock libera el bloqueo solo si token sigue siendo el dueño.
	Unlock(ctx context.Context, key, token string) error
}

// EmailRequest mensaje de correo de factura para el servicio de envío.
type EmailRequest struct {
	InvoiceID string `json:"factura_id"`
	Number    string `json:"numero"`
	To        string `json:"destinatario"`
	Subject   string `json:"asunto"`
	CUFE      string `json:"cufe,omitempty"`
	PDFLink   string `json:"enlace_pdf"`
}

// EmailDispatcher publica solicitudes de correo; la entrega la hace un servicio externo.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, req EmailRequest) error
}

// RIPSArchive guarda lotes RIPS generados. Devuelve la ubicación del objeto.
type RIPSArchive interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// IssuerInfo datos del emisor impresos en el PDF.
type IssuerInfo struct {
	Name    string
	NIT     string
	Address string
	City    string
	Email   string
}

// InvoicePDFGenerator renderiza la factura. Con electronic != nil se imprime la
// representación gráfica (CUFE + QR).
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, issuer IssuerInfo, invoice *entity.Invoice, electronic *entity.ElectronicInvoice) ([]byte, error)
}

// Metrics contadores del libro de facturación.
type Metrics interface {
	InvoiceCreated(status entity.InvoiceStatus)
	PaymentRegistered(method entity.PaymentMethod, resulting entity.InvoiceStatus)
	EmissionSubmitted(outcome string, elapsed time.Duration)
	AuthorityTransition(to entity.AuthorityStatus)
	AuthorityAnomaly()
	RIPSExported(exported, skipped int)
}

type noopMetrics struct{}

func (noopMetrics) InvoiceCreated(entity.InvoiceStatus)                          {}
func (noopMetrics) PaymentRegistered(entity.PaymentMethod, entity.InvoiceStatus) {}
func (noopMetrics) EmissionSubmitted(string, time.Duration)                      {}
func (noopMetrics) AuthorityTransition(entity.AuthorityStatus)                   {}
func (noopMetrics) AuthorityAnomaly()                                            {}
func (noopMetrics) RIPSExported(int, int)                                        {}

// NoopMetrics implementación vacía para tests y para METRICS_ENABLED=false.
var NoopMetrics Metrics = noopMetrics{}

// Clock fuente de tiempo inyectable.
type Clock func() time.Time
