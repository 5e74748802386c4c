package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// StatusPoller resuelve en segundo plano los registros DIAN que siguen PENDIENTE.
type StatusPoller struct {
	emission       *EmissionUseCase
	electronicRepo repository.ElectronicInvoiceRepository
	interval       time.Duration
	batch          int
	log            *logger.Logger
}

// NewStatusPoller construye el poller. interval <= 0 lo deshabilita.
func NewStatusPoller(emission *EmissionUseCase, electronicRepo repository.ElectronicInvoiceRepository, interval time.Duration, log *logger.Logger) *StatusPoller {
	return &StatusPoller{
		emission:       emission,
		electronicRepo: electronicRepo,
		interval:       interval,
		batch:          50,
		log:            log,
	}
}

// Run consulta cada intervalo hasta que ctx se cancele.
func (p *StatusPoller) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.log.Info().Msg("consulta periódica de estado DIAN deshabilitada")
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.log.Error().Err(err).Msg("error listando registros DIAN pendientes")
			}
		}
	}
}

// PollOnce consulta un lote de registros pendientes y devuelve cuántos quedaron resueltos.
// Los fallos individuales se registran y no detienen el lote.
func (p *StatusPoller) PollOnce(ctx context.Context) (int, error) {
	pending, err := p.electronicRepo.ListPending(ctx, p.batch)
	if err != nil {
		return 0, storageErr("listar registros pendientes", err)
	}
	resolved := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			break
		}
		updated, err := p.emission.refresh(ctx, rec)
		if err != nil {
			p.log.Warn().Err(err).Str("factura_id", rec.InvoiceID).Msg("no se pudo consultar el estado DIAN")
			continue
		}
		if updated.Status != rec.Status {
			resolved++
		}
	}
	if len(pending) > 0 {
		p.log.Debug().Int("pendientes", len(pending)).Int("resueltos", resolved).Msg("consulta periódica DIAN")
	}
	return resolved, nil
}
