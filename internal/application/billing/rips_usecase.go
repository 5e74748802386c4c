package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// patientLookupConcurrency consultas simultáneas al servicio de pacientes por lote.
const patientLookupConcurrency = 8

// RIPSUseCase genera lotes RIPS para las facturas pagadas solicitadas.
type RIPSUseCase struct {
	invoiceRepo repository.InvoiceRepository
	patients    PatientDirectory
	archive     RIPSArchive // opcional
	provider    RIPSProvider
	metrics     Metrics
	log         *logger.Logger
	now         Clock
}

// NewRIPSUseCase construye el caso de uso. archive puede ser nil.
func NewRIPSUseCase(
	invoiceRepo repository.InvoiceRepository,
	patients PatientDirectory,
	archive RIPSArchive,
	provider RIPSProvider,
	metrics Metrics,
	log *logger.Logger,
	now Clock,
) *RIPSUseCase {
	return &RIPSUseCase{
		invoiceRepo: invoiceRepo,
		patients:    patients,
		archive:     archive,
		provider:    provider,
		metrics:     orNoop(metrics),
		log:         log,
		now:         orNow(now),
	}
}

// ExportBatch exporta las facturas Pagadas del lote y reporta las omitidas con su motivo.
// Si ninguna es exportable devuelve *domain.NoEligibleInvoicesError.
func (uc *RIPSUseCase) ExportBatch(ctx context.Context, invoiceIDs []string) (*dto.RIPSBatchResponse, error) {
	ids := dedupe(invoiceIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError([]domain.FieldError{{Field: "factura_ids", Message: "debe incluir al menos una factura"}})
	}

	invoices, err := uc.invoiceRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("cargar facturas del lote RIPS", err)
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	skipped := make([]domain.SkippedInvoice, 0)
	eligible := make([]*entity.Invoice, 0, len(invoices))
	for _, id := range ids {
		inv, ok := byID[id]
		switch {
		case !ok:
			skipped = append(skipped, domain.SkippedInvoice{InvoiceID: id, Reason: "factura no encontrada"})
		case inv.Status != entity.InvoiceStatusPaid:
			skipped = append(skipped, domain.SkippedInvoice{
				InvoiceID: id,
				Number:    inv.Number,
				Reason:    fmt.Sprintf("estado %s: solo se exportan facturas Pagadas", inv.Status),
			})
		default:
			eligible = append(eligible, inv)
		}
	}
	if len(eligible) == 0 {
		return nil, &domain.NoEligibleInvoicesError{Skipped: skipped}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].Consecutive < eligible[j].Consecutive })

	patients := make([]*entity.Patient, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(patientLookupConcurrency)
	for i, inv := range eligible {
		i, inv := i, inv
		g.Go(func() error {
			p, err := uc.patients.GetPatient(gctx, inv.Patient.ID)
			if err != nil {
				return err
			}
			if p == nil {
				p = patientFromSnapshot(inv.Patient)
			}
			patients[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := uc.now().In(bogota)
	resp := &dto.RIPSBatchResponse{
		GeneratedAt: now.Format("2006-01-02T15:04:05-07:00"),
		Documents:   make([]dto.RIPSDocument, 0, len(eligible)),
		Skipped:     skipped,
	}
	for i, inv := range eligible {
		resp.Documents = append(resp.Documents, buildRIPSDocument(uc.provider, inv, patients[i]))
	}

	if uc.archive != nil {
		uc.store(ctx, resp, now.Format("20060102T150405"))
	}

	uc.metrics.RIPSExported(len(resp.Documents), len(skipped))
	uc.log.Info().
		Int("exportadas", len(resp.Documents)).
		Int("omitidas", len(skipped)).
		Str("archivo", resp.Archive).
		Msg("lote RIPS generado")
	return resp, nil
}

// store archiva el lote; una falla del archivo no invalida la exportación.
func (uc *RIPSUseCase) store(ctx context.Context, resp *dto.RIPSBatchResponse, stamp string) {
	data, err := json.Marshal(resp)
	if err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo serializar el lote RIPS para archivo")
		return
	}
	name := fmt.Sprintf("rips_%s_%s.json", stamp, resp.Documents[0].NumFactura)
	location, err := uc.archive.Store(ctx, name, data)
	if err != nil {
		uc.log.Warn().Err(err).Str("archivo", name).Msg("no se pudo archivar el lote RIPS")
		return
	}
	resp.Archive = location
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
