package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/ledger"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// InvoiceUseCase crea, consulta, actualiza y cancela facturas.
type InvoiceUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	patients    PatientDirectory
	metrics     Metrics
	log         *logger.Logger
	now         Clock
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	patients PatientDirectory,
	metrics Metrics,
	log *logger.Logger,
	now Clock,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		patients:    patients,
		metrics:     orNoop(metrics),
		log:         log,
		now:         orNow(now),
	}
}

// CreateInvoice valida ítems y paciente, calcula totales y persiste la factura con el
// siguiente consecutivo en una sola transacción.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	now := uc.now()
	draft := toDraft(in, userID)

	var fields []domain.FieldError
	if strings.TrimSpace(in.PatientID) != "" {
		patient, err := uc.patients.GetPatient(ctx, in.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			fields = append(fields, domain.FieldError{Field: "paciente_id", Message: "paciente no encontrado"})
		} else {
			draft.Patient = patient.Ref()
		}
	}
	if err := draft.Validate(now); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		fields = append(fields, verr.Fields...)
	}
	if err := domain.NewValidationError(fields); err != nil {
		return nil, err
	}

	inv, err := draft.Build(now)
	if err != nil {
		return nil, err
	}
	inv.ID = uuid.NewString()
	for i := range inv.Items {
		inv.Items[i].ID = uuid.NewString()
		inv.Items[i].InvoiceID = inv.ID
	}
	for i := range inv.Taxes {
		inv.Taxes[i].ID = uuid.NewString()
		inv.Taxes[i].InvoiceID = inv.ID
	}

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		sequenceRepo repository.SequenceRepository,
	) error {
		// El consecutivo se toma dentro de la transacción: un rollback no deja huecos.
		consecutive, err := sequenceRepo.Next(ctx, repository.InvoiceSequenceName)
		if err != nil {
			return storageErr("siguiente consecutivo", err)
		}
		inv.Consecutive = consecutive
		inv.Number = ledger.FormatNumber(now.In(bogota).Year(), consecutive)
		return storageErr("crear factura", invoiceRepo.Create(ctx, inv))
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.InvoiceCreated(inv.Status)
	uc.log.Info().
		Str("factura_id", inv.ID).
		Str("numero", inv.Number).
		Str("estado", string(inv.Status)).
		Str("total", inv.Total.String()).
		Msg("factura creada")

	resp := dto.NewInvoiceResponse(inv)
	return &resp, nil
}

// DraftErrors reglas de negocio del borrador (ítems, descuentos, impuestos, EPS, fechas)
// sin consultar el directorio de pacientes ni persistir.
func (uc *InvoiceUseCase) DraftErrors(in dto.CreateInvoiceRequest) []domain.FieldError {
	var verr *domain.ValidationError
	if errors.As(toDraft(in, "").Validate(uc.now()), &verr) {
		return verr.Fields
	}
	return nil
}

func toDraft(in dto.CreateInvoiceRequest, userID string) ledger.Draft {
	d := ledger.Draft{
		Patient:                entity.PatientRef{ID: strings.TrimSpace(in.PatientID)},
		Items:                  make([]ledger.ItemInput, 0, len(in.Items)),
		Taxes:                  make([]ledger.TaxInput, 0, len(in.Taxes)),
		CoveredByInsurance:     in.CoveredByInsurance,
		InsuranceAuthorization: in.InsuranceAuthorization,
		EPSAmount:              in.EPSAmount,
		Observations:           in.Observations,
		DueAt:                  in.DueDate.Ptr(),
		CreatedBy:              userID,
	}
	for _, it := range in.Items {
		d.Items = append(d.Items, ledger.ItemInput{
			Type:        entity.ItemType(it.Type),
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
		})
	}
	for _, tx := range in.Taxes {
		d.Taxes = append(d.Taxes, ledger.TaxInput{Code: tx.Code, Description: tx.Description, Amount: tx.Amount})
	}
	return d
}

// GetInvoice obtiene una factura con ítems, pagos y registro electrónico.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewInvoiceResponse(inv)
	return &resp, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("obtener factura", err)
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

// ListInvoices listado paginado filtrado por estado y paciente.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, in dto.ListInvoicesRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	status := entity.InvoiceStatus(in.Status)
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError([]domain.FieldError{{Field: "estado", Message: "estado desconocido"}})
	}
	invoices, total, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		Status:    status,
		PatientID: strings.TrimSpace(in.PatientID),
		Limit:     in.Limit,
		Offset:    in.Offset(),
	})
	if err != nil {
		return nil, storageErr("listar facturas", err)
	}
	out := &dto.InvoiceListResponse{
		Data:       make([]dto.InvoiceResponse, 0, len(invoices)),
		Pagination: dto.NewPageResponse(in.PageRequest, total),
	}
	for _, inv := range invoices {
		out.Data = append(out.Data, dto.NewInvoiceResponse(inv))
	}
	return out, nil
}

// UpdateInvoice modifica solo metadatos (observaciones, vencimiento, autorización EPS).
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	now := uc.now()
	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.SequenceRepository,
	) error {
		inv, err := invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return storageErr("bloquear factura", err)
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		if err := ledger.ApplyDetails(inv, ledger.DetailsUpdate{
			Observations:           in.Observations,
			DueAt:                  in.DueDate.Ptr(),
			InsuranceAuthorization: in.InsuranceAuthorization,
		}, now); err != nil {
			return err
		}
		return storageErr("actualizar factura", invoiceRepo.UpdateDetails(ctx, inv))
	})
	if err != nil {
		return nil, err
	}
	return uc.GetInvoice(ctx, id)
}

// CancelInvoice anula la factura bajo el bloqueo de la fila. Los abonos existentes se
// reembolsan por fuera del sistema y exigen confirmación explícita.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, userID, id string, in dto.CancelInvoiceRequest) (*dto.InvoiceResponse, error) {
	now := uc.now()
	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.PaymentRepository,
		_ repository.SequenceRepository,
	) error {
		inv, err := invoiceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return storageErr("bloquear factura", err)
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		if err := ledger.Cancel(inv, ledger.CancelInput{
			Reason:             in.Reason,
			RefundAcknowledged: in.RefundAcknowledged,
		}, now); err != nil {
			return err
		}
		return storageErr("cancelar factura", invoiceRepo.Cancel(ctx, inv))
	})
	if err != nil {
		return nil, err
	}

	inv, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := uc.log.Info()
	if inv.Electronic != nil && inv.Electronic.Status == entity.AuthorityStatusAccepted {
		// La DIAN ya tiene la factura: la anulación fiscal requiere nota crédito.
		ev = uc.log.Warn().Str("cufe", inv.Electronic.CUFE)
	}
	ev.Str("factura_id", inv.ID).
		Str("numero", inv.Number).
		Str("usuario", userID).
		Str("reembolso_pendiente", inv.PaidTotal.String()).
		Msg("factura cancelada")

	resp := dto.NewInvoiceResponse(inv)
	return &resp, nil
}
