package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// DocumentUseCase PDFs de la factura y envío por correo.
type DocumentUseCase struct {
	invoiceRepo   repository.InvoiceRepository
	patients      PatientDirectory
	pdf           InvoicePDFGenerator
	email         EmailDispatcher
	issuer        IssuerInfo
	publicBaseURL string
	log           *logger.Logger
}

// NewDocumentUseCase construye el caso de uso. publicBaseURL se usa para los enlaces del correo.
func NewDocumentUseCase(
	invoiceRepo repository.InvoiceRepository,
	patients PatientDirectory,
	pdf InvoicePDFGenerator,
	email EmailDispatcher,
	issuer IssuerInfo,
	publicBaseURL string,
	log *logger.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		invoiceRepo:   invoiceRepo,
		patients:      patients,
		pdf:           pdf,
		email:         email,
		issuer:        issuer,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// InvoicePDF PDF de la factura (sin CUFE). Devuelve el contenido y el nombre de archivo.
func (uc *DocumentUseCase) InvoicePDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.load(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.pdf.GenerateInvoicePDF(ctx, uc.issuer, inv, nil)
	if err != nil {
		return nil, "", err
	}
	return data, "factura_" + inv.Number + ".pdf", nil
}

// ElectronicPDF representación gráfica de la factura electrónica con CUFE y QR.
func (uc *DocumentUseCase) ElectronicPDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.load(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv.Electronic == nil || inv.Electronic.CUFE == "" {
		return nil, "", notEmitted(inv, "generar la representación gráfica de")
	}
	data, err := uc.pdf.GenerateInvoicePDF(ctx, uc.issuer, inv, inv.Electronic)
	if err != nil {
		return nil, "", err
	}
	return data, "factura_electronica_" + inv.Number + ".pdf", nil
}

// SendEmail encola el correo de la factura. Sin email explícito se usa el del paciente.
func (uc *DocumentUseCase) SendEmail(ctx context.Context, invoiceID string, in dto.SendEmailRequest) (*dto.SendEmailResponse, error) {
	inv, err := uc.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSpace(in.Email)
	if to == "" {
		patient, err := uc.patients.GetPatient(ctx, inv.Patient.ID)
		if err != nil {
			return nil, err
		}
		if patient != nil {
			to = strings.TrimSpace(patient.Email)
		}
	}
	if to == "" {
		return nil, domain.NewValidationError([]domain.FieldError{{Field: "email", Message: "el paciente no tiene correo registrado; indique uno"}})
	}

	req := EmailRequest{
		InvoiceID: inv.ID,
		Number:    inv.Number,
		To:        to,
		Subject:   "Factura " + inv.Number + " - " + uc.issuer.Name,
		PDFLink:   uc.publicBaseURL + "/api/facturas/" + inv.ID + "/pdf",
	}
	if inv.Electronic != nil && inv.Electronic.Status == entity.AuthorityStatusAccepted {
		req.CUFE = inv.Electronic.CUFE
		req.PDFLink = uc.publicBaseURL + "/api/facturas/" + inv.ID + "/pdf-electronico"
	}
	if err := uc.email.Dispatch(ctx, req); err != nil {
		if !errors.Is(err, domain.ErrDependencyUnavailable) {
			err = errors.Join(domain.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	uc.log.Info().Str("factura_id", inv.ID).Str("numero", inv.Number).Str("destinatario", to).Msg("correo de factura encolado")
	return &dto.SendEmailResponse{Queued: true, To: to}, nil
}

func (uc *DocumentUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("obtener factura", err)
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}
