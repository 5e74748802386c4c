package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/ledger"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// Resultados de envío reportados a métricas.
const (
	OutcomePending   = "pendiente"
	OutcomeAccepted  = "aceptada"
	OutcomeRejected  = "rechazada"
	OutcomeTransport = "error_transporte"
)

const defaultEmissionLockTTL = 90 * time.Second

// EmissionUseCase emisión electrónica ante la DIAN y seguimiento de su estado.
//
// Flujo de Emit:
//
//	leer factura → decidir (cancelada / ya emitida) → bloqueo por factura →
//	releer → Submit (CUFE, XML, firma, ZIP, SOAP) → guardar registro
//
// Un error de transporte no modifica nada: la factura queda sin registro (o con el
// RECHAZADA anterior) y el llamador puede reintentar.
type EmissionUseCase struct {
	invoiceRepo    repository.InvoiceRepository
	electronicRepo repository.ElectronicInvoiceRepository
	patients       PatientDirectory
	authority      ElectronicAuthority
	locker         EmissionLocker
	lockTTL        time.Duration
	metrics        Metrics
	log            *logger.Logger
	now            Clock
}

// NewEmissionUseCase construye el caso de uso. lockTTL <= 0 usa 90 s.
func NewEmissionUseCase(
	invoiceRepo repository.InvoiceRepository,
	electronicRepo repository.ElectronicInvoiceRepository,
	patients PatientDirectory,
	authority ElectronicAuthority,
	locker EmissionLocker,
	lockTTL time.Duration,
	metrics Metrics,
	log *logger.Logger,
	now Clock,
) *EmissionUseCase {
	if lockTTL <= 0 {
		lockTTL = defaultEmissionLockTTL
	}
	return &EmissionUseCase{
		invoiceRepo:    invoiceRepo,
		electronicRepo: electronicRepo,
		patients:       patients,
		authority:      authority,
		locker:         locker,
		lockTTL:        lockTTL,
		metrics:        orNoop(metrics),
		log:            log,
		now:            orNow(now),
	}
}

// Emit envía la factura a la DIAN. Es idempotente: una factura ACEPTADA o PENDIENTE
// devuelve su registro sin reenviar.
func (uc *EmissionUseCase) Emit(ctx context.Context, invoiceID string) (*dto.ElectronicInvoiceResponse, error) {
	inv, err := uc.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	decision, err := ledger.DecideEmission(inv, inv.Electronic)
	if err != nil {
		return nil, err
	}
	if decision == ledger.EmissionReturnExisting {
		return electronicResponse(inv.Electronic), nil
	}

	lockKey := "emision:" + invoiceID
	token, ok, err := uc.locker.TryLock(ctx, lockKey, uc.lockTTL)
	if err != nil {
		return nil, errors.Join(domain.ErrDependencyUnavailable, err)
	}
	if !ok {
		return nil, domain.ErrEmissionInProgress
	}
	defer func() {
		if err := uc.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			uc.log.Warn().Err(err).Str("factura_id", invoiceID).Msg("no se pudo liberar el bloqueo de emisión")
		}
	}()

	// Otro proceso pudo completar la emisión entre la primera lectura y el bloqueo.
	inv, err = uc.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	decision, err = ledger.DecideEmission(inv, inv.Electronic)
	if err != nil {
		return nil, err
	}
	if decision == ledger.EmissionReturnExisting {
		return electronicResponse(inv.Electronic), nil
	}

	patient, err := uc.patients.GetPatient(ctx, inv.Patient.ID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		patient = patientFromSnapshot(inv.Patient)
	}

	start := uc.now()
	sub, err := uc.authority.Submit(ctx, &AuthorityDocument{Invoice: inv, Patient: patient})
	if err != nil {
		uc.metrics.EmissionSubmitted(OutcomeTransport, uc.now().Sub(start))
		uc.log.Warn().Err(err).Str("factura_id", inv.ID).Str("numero", inv.Number).Msg("envío a la DIAN fallido; sin cambios")
		var te *domain.AuthorityTransportError
		if !errors.As(err, &te) && !errors.Is(err, domain.ErrInvalidInput) {
			err = &domain.AuthorityTransportError{Op: "enviar factura", Err: err}
		}
		return nil, err
	}

	now := uc.now()
	record := &entity.ElectronicInvoice{
		InvoiceID:       inv.ID,
		CUFE:            sub.CUFE,
		TrackID:         sub.TrackID,
		Status:          sub.Status,
		QRData:          sub.QRData,
		RejectionReason: sub.RejectionReason,
		Attempts:        1,
		SubmittedAt:     now,
		UpdatedAt:       now,
	}
	if inv.Electronic != nil {
		record.Attempts = inv.Electronic.Attempts + 1
	}
	if record.Status != entity.AuthorityStatusPending {
		record.ResolvedAt = &now
	}
	if err := uc.electronicRepo.Save(ctx, record); err != nil {
		return nil, storageErr("guardar factura electrónica", err)
	}

	uc.metrics.EmissionSubmitted(outcomeOf(record.Status), now.Sub(start))
	ev := uc.log.Info()
	if record.Status == entity.AuthorityStatusRejected {
		ev = uc.log.Warn().Str("motivo", record.RejectionReason)
	}
	ev.Str("factura_id", inv.ID).
		Str("numero", inv.Number).
		Str("cufe", record.CUFE).
		Str("track_id", record.TrackID).
		Str("estado_dian", string(record.Status)).
		Int("intento", record.Attempts).
		Msg("factura enviada a la DIAN")

	return electronicResponse(record), nil
}

// FetchStatus consulta a la DIAN el estado de un registro PENDIENTE. Los registros
// resueltos se devuelven sin consultar.
func (uc *EmissionUseCase) FetchStatus(ctx context.Context, invoiceID string) (*dto.ElectronicInvoiceResponse, error) {
	inv, err := uc.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Electronic == nil {
		return nil, notEmitted(inv, "consultar el estado DIAN de")
	}
	rec, err := uc.refresh(ctx, inv.Electronic)
	if err != nil {
		return nil, err
	}
	return electronicResponse(rec), nil
}

// ApplyCallback aplica un estado informado por un proceso externo (notificación DIAN o
// conciliación manual). Las transiciones no monótonas se registran y se ignoran.
func (uc *EmissionUseCase) ApplyCallback(ctx context.Context, invoiceID string, in dto.AuthorityCallbackRequest) (*dto.ElectronicInvoiceResponse, error) {
	to := entity.AuthorityStatus(in.Status)
	switch to {
	case entity.AuthorityStatusPending, entity.AuthorityStatusAccepted, entity.AuthorityStatusRejected:
	default:
		return nil, domain.NewValidationError([]domain.FieldError{{Field: "estado", Message: "debe ser PENDIENTE, ACEPTADA o RECHAZADA"}})
	}
	inv, err := uc.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Electronic == nil {
		return nil, notEmitted(inv, "actualizar el estado DIAN de")
	}
	rec, err := uc.transition(ctx, inv.Electronic, to, in.Reason, "notificacion")
	if err != nil {
		return nil, err
	}
	return electronicResponse(rec), nil
}

// PendingEmission facturas no canceladas que aún no se han enviado a la DIAN.
func (uc *EmissionUseCase) PendingEmission(ctx context.Context, limit int) ([]dto.InvoiceResponse, error) {
	invoices, err := uc.invoiceRepo.ListPendingEmission(ctx, clampLimit(limit))
	if err != nil {
		return nil, storageErr("listar pendientes de emisión", err)
	}
	return invoiceResponses(invoices), nil
}

// EmissionErrors facturas cuyo último envío fue RECHAZADA.
func (uc *EmissionUseCase) EmissionErrors(ctx context.Context, limit int) ([]dto.InvoiceResponse, error) {
	invoices, err := uc.invoiceRepo.ListEmissionErrors(ctx, clampLimit(limit))
	if err != nil {
		return nil, storageErr("listar errores de emisión", err)
	}
	return invoiceResponses(invoices), nil
}

// InvoiceEmissionErrors detalle del rechazo DIAN de una factura.
func (uc *EmissionUseCase) InvoiceEmissionErrors(ctx context.Context, invoiceID string) (*dto.EmissionErrorResponse, error) {
	inv, err := uc.loadInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := &dto.EmissionErrorResponse{InvoiceID: inv.ID, Number: inv.Number}
	if inv.Electronic != nil {
		out.AuthorityStatus = string(inv.Electronic.Status)
		out.RejectionReason = inv.Electronic.RejectionReason
		out.Attempts = inv.Electronic.Attempts
	}
	return out, nil
}

// refresh consulta a la DIAN si el registro sigue PENDIENTE.
func (uc *EmissionUseCase) refresh(ctx context.Context, rec *entity.ElectronicInvoice) (*entity.ElectronicInvoice, error) {
	if rec.Status != entity.AuthorityStatusPending {
		return rec, nil
	}
	res, err := uc.authority.QueryStatus(ctx, AuthorityStatusQuery{CUFE: rec.CUFE, TrackID: rec.TrackID})
	if err != nil {
		var te *domain.AuthorityTransportError
		if !errors.As(err, &te) {
			err = &domain.AuthorityTransportError{Op: "consultar estado", Err: err}
		}
		return nil, err
	}
	return uc.transition(ctx, rec, res.Status, res.Reason, "consulta")
}

func (uc *EmissionUseCase) transition(ctx context.Context, rec *entity.ElectronicInvoice, to entity.AuthorityStatus, reason, source string) (*entity.ElectronicInvoice, error) {
	switch ledger.EvaluateAuthorityTransition(rec.Status, to) {
	case ledger.TransitionNoop:
		return rec, nil
	case ledger.TransitionAnomaly:
		uc.metrics.AuthorityAnomaly()
		uc.log.Warn().
			Str("factura_id", rec.InvoiceID).
			Str("desde", string(rec.Status)).
			Str("hacia", string(to)).
			Str("origen", source).
			Msg("transición de estado DIAN no permitida; se ignora")
		return rec, nil
	}

	now := uc.now()
	applied, err := uc.electronicRepo.TransitionStatus(ctx, rec.InvoiceID, rec.Status, to, reason, now)
	if err != nil {
		return nil, storageErr("actualizar estado DIAN", err)
	}
	if !applied {
		// Otro proceso resolvió el registro primero; se devuelve lo que quedó guardado.
		current, err := uc.electronicRepo.GetByInvoiceID(ctx, rec.InvoiceID)
		if err != nil {
			return nil, storageErr("obtener factura electrónica", err)
		}
		if current == nil {
			return rec, nil
		}
		return current, nil
	}

	updated := *rec
	updated.Status = to
	updated.ResolvedAt = &now
	updated.UpdatedAt = now
	if to == entity.AuthorityStatusRejected {
		updated.RejectionReason = reason
	}
	uc.metrics.AuthorityTransition(to)
	uc.log.Info().
		Str("factura_id", rec.InvoiceID).
		Str("cufe", rec.CUFE).
		Str("estado_dian", string(to)).
		Str("origen", source).
		Msg("estado DIAN actualizado")
	return &updated, nil
}

func (uc *EmissionUseCase) loadInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("obtener factura", err)
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func notEmitted(inv *entity.Invoice, op string) error {
	return &domain.InvalidStateError{
		Current:   string(inv.Status),
		Operation: op,
		Reason:    "la factura no ha sido emitida electrónicamente",
	}
}

func outcomeOf(s entity.AuthorityStatus) string {
	switch s {
	case entity.AuthorityStatusAccepted:
		return OutcomeAccepted
	case entity.AuthorityStatusRejected:
		return OutcomeRejected
	default:
		return OutcomePending
	}
}

func electronicResponse(rec *entity.ElectronicInvoice) *dto.ElectronicInvoiceResponse {
	r := dto.NewElectronicInvoiceResponse(rec)
	return &r
}

func invoiceResponses(invoices []*entity.Invoice) []dto.InvoiceResponse {
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, dto.NewInvoiceResponse(inv))
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
