package dian

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// bogota zona de las fechas del CUFE y del XML (UTC-5, sin horario de verano).
var bogota = time.FixedZone("COT", -5*3600)

const qrBaseURL = "https://catalogo-vpfe.dian.gov.co/document/searchqr?documentkey="

// AuthorityConfig datos fijos de la emisión: emisor, resolución y ambiente.
type AuthorityConfig struct {
	Issuer       Issuer
	Resolution   BillingResolutionData
	TechnicalKey string
	TipoAmbiente string // "1" producción, "2" habilitación
}

// Submitter operaciones del WS DIAN que usa el adaptador (SOAPDIANClient en producción).
type Submitter interface {
	SubmitZip(ctx context.Context, zipBytes []byte, filename string) (*SubmitResult, error)
	GetStatusZip(ctx context.Context, trackID string) (*StatusResult, error)
	GetStatus(ctx context.Context, cufe string) (*StatusResult, error)
}

// Authority adaptador de billing.ElectronicAuthority:
//
//	CUFE → XML UBL 2.1 → Firma XAdES-EPES → ZIP → Envío SOAP
type Authority struct {
	cfg       AuthorityConfig
	builder   *XMLBuilderService
	signer    pkgdian.Signer
	submitter Submitter
	log       *logger.Logger
}

var _ billing.ElectronicAuthority = (*Authority)(nil)

// NewAuthority signer es obligatorio: la DIAN rechaza documentos sin firma.
func NewAuthority(cfg AuthorityConfig, builder *XMLBuilderService, signer pkgdian.Signer, submitter Submitter, log *logger.Logger) (*Authority, error) {
	if signer == nil {
		return nil, fmt.Errorf("dian: se requiere certificado de firma para enviar a la DIAN")
	}
	if submitter == nil {
		return nil, fmt.Errorf("dian: cliente SOAP no configurado")
	}
	if cfg.TipoAmbiente == "" {
		cfg.TipoAmbiente = pkgdian.AmbientePruebas
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Authority{cfg: cfg, builder: builder, signer: signer, submitter: submitter, log: log}, nil
}

// Submit arma y envía el documento. Un rechazo de negocio vuelve como RECHAZADA; la regla 90
// (documento procesado anteriormente) se registra como PENDIENTE porque la DIAN ya lo tiene.
func (a *Authority) Submit(ctx context.Context, doc *billing.AuthorityDocument) (*billing.AuthoritySubmission, error) {
	build, err := prepareDocument(a.cfg, doc)
	if err != nil {
		return nil, err
	}

	xmlBytes, err := a.builder.Build(build)
	if err != nil {
		return nil, err
	}
	signed, err := a.signer.Sign(xmlBytes)
	if err != nil {
		return nil, err
	}
	xmlName, zipName := DIANFilenames(a.cfg.Issuer.NIT, a.cfg.Resolution.Prefix, doc.Invoice.Consecutive)
	zipBytes, err := CompressXMLToZip(signed, xmlName)
	if err != nil {
		return nil, err
	}

	res, err := a.submitter.SubmitZip(ctx, zipBytes, zipName)
	if err != nil {
		return nil, err
	}

	sub := &billing.AuthoritySubmission{
		Status:  entity.AuthorityStatusPending,
		CUFE:    build.CUFE,
		TrackID: res.TrackID,
		QRData:  build.QRData,
	}
	switch {
	case alreadyProcessed(res.Errors):
		a.log.Info().Str("numero", doc.Invoice.Number).Str("zip", zipName).Msg("DIAN: documento procesado anteriormente, se consulta su estado")
	case len(res.Errors) > 0 && res.TrackID == "":
		sub.Status = entity.AuthorityStatusRejected
		sub.RejectionReason = strings.Join(res.Errors, "; ")
	}
	return sub, nil
}

// QueryStatus consulta por trackId (GetStatusZip) o, sin él, por CUFE (GetStatus).
func (a *Authority) QueryStatus(ctx context.Context, ref billing.AuthorityStatusQuery) (*billing.AuthorityStatusResult, error) {
	var (
		res *StatusResult
		err error
	)
	if ref.TrackID != "" {
		res, err = a.submitter.GetStatusZip(ctx, ref.TrackID)
	} else {
		res, err = a.submitter.GetStatus(ctx, ref.CUFE)
	}
	if err != nil {
		return nil, err
	}
	return mapStatus(res), nil
}

// Códigos de StatusCode en DianResponse.
const (
	statusProcessed = "00" // procesado correctamente
	statusRejected  = "99" // validaciones con errores
)

func mapStatus(res *StatusResult) *billing.AuthorityStatusResult {
	switch {
	case res.IsValid || res.StatusCode == statusProcessed:
		return &billing.AuthorityStatusResult{Status: entity.AuthorityStatusAccepted}
	case res.StatusCode == statusRejected:
		reason := strings.Join(res.Errors, "; ")
		if reason == "" {
			reason = firstNonEmpty(res.StatusDescription, res.StatusMessage)
		}
		return &billing.AuthorityStatusResult{Status: entity.AuthorityStatusRejected, Reason: reason}
	}
	return &billing.AuthorityStatusResult{Status: entity.AuthorityStatusPending}
}

// alreadyProcessed detecta la regla 90 en los mensajes de SendBillAsync.
func alreadyProcessed(msgs []string) bool {
	for _, m := range msgs {
		l := strings.ToLower(m)
		if strings.Contains(l, "regla: 90") || strings.Contains(l, "procesado anteriormente") {
			return true
		}
	}
	return false
}

// prepareDocument calcula CUFE y QR y arma el contexto del XML.
func prepareDocument(cfg AuthorityConfig, doc *billing.AuthorityDocument) (*InvoiceBuildContext, error) {
	if doc == nil || doc.Invoice == nil || doc.Patient == nil {
		return nil, fmt.Errorf("dian: documento incompleto")
	}
	inv := doc.Invoice
	if err := ValidateInvoice(inv, doc.Patient); err != nil {
		return nil, err
	}
	issued := inv.IssuedAt.In(bogota)
	documentID := strings.TrimSpace(cfg.Resolution.Prefix) + strconv.FormatInt(inv.Consecutive, 10)

	params := pkgdian.CufeParams{
		NumFac:         documentID,
		FecFac:         issued.Format("2006-01-02"),
		HorFac:         issued.Format("15:04:05-07:00"),
		ValFac:         inv.Subtotal.Sub(inv.Discounts).Decimal(),
		ValIVA:         taxAmount(inv.Taxes, pkgdian.TaxCodeIVA).Decimal(),
		ValINC:         taxAmount(inv.Taxes, pkgdian.TaxCodeINC).Decimal(),
		ValICA:         taxAmount(inv.Taxes, pkgdian.TaxCodeICA).Decimal(),
		ValTot:         inv.Total.Decimal(),
		NitOferente:    normalizeNIT(cfg.Issuer.NIT),
		DocAdquiriente: doc.Patient.DocumentNumber,
		ClaveTecnica:   cfg.TechnicalKey,
		TipoAmbiente:   cfg.TipoAmbiente,
	}
	cufe, err := pkgdian.CUFE(params)
	if err != nil {
		return nil, err
	}

	var res *BillingResolutionData
	if cfg.Resolution.Number != "" {
		r := cfg.Resolution
		res = &r
	}
	return &InvoiceBuildContext{
		Invoice:          inv,
		Patient:          doc.Patient,
		Issuer:           cfg.Issuer,
		Resolution:       res,
		DocumentID:       documentID,
		CUFE:             cufe,
		QRData:           BuildQR(documentID, issued, inv, cufe),
		IssuedAt:         issued,
		TipoAmbiente:     cfg.TipoAmbiente,
		PaymentMeansCode: paymentMeans(inv),
	}, nil
}

// BuildQR contenido del código QR de la representación gráfica:
// NumFac|FecFac|ValTot|01|ValImp|CUFE|URL de consulta.
func BuildQR(documentID string, issued time.Time, inv *entity.Invoice, cufe string) string {
	return strings.Join([]string{
		documentID,
		issued.Format("2006-01-02"),
		inv.Total.String(),
		pkgdian.InvoiceTypeSale,
		inv.TaxTotal.String(),
		cufe,
		qrBaseURL + cufe,
	}, "|")
}

// paymentMeans medio del último pago registrado; efectivo si no hay pagos.
func paymentMeans(inv *entity.Invoice) string {
	if n := len(inv.Payments); n > 0 {
		return pkgdian.PaymentMeansCode(string(inv.Payments[n-1].Method))
	}
	return pkgdian.PaymentMeansCash
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
