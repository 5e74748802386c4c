package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

func TestEmit_PendienteYLuegoIdempotente(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())

	rec, err := f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", rec.AuthorityStatus)
	assert.Equal(t, "cufe-F-2026-00001", rec.CUFE)
	assert.Equal(t, 1, rec.Attempts)

	again, err := f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.CUFE, again.CUFE)
	assert.Equal(t, 1, f.authority.submitCount(), "un registro PENDIENTE no se reenvía")

	pending, err := f.emission.PendingEmission(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEmit_FacturaCanceladaNoSeEnvia(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())
	_, err := f.invoices.CancelInvoice(context.Background(), "usr-1", inv.ID, dto.CancelInvoiceRequest{Reason: "duplicada"})
	require.NoError(t, err)

	_, err = f.emission.Emit(context.Background(), inv.ID)
	var serr *domain.InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, f.authority.submitCount())
}

func TestEmit_ErrorDeTransporteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())
	f.authority.submitErr = errRed

	_, err := f.emission.Emit(context.Background(), inv.ID)
	var terr *domain.AuthorityTransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, errRed)

	got, err := f.invoices.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Electronic)
	assert.Empty(t, got.AuthorityStatus)

	// El bloqueo se liberó: el reintento procede.
	f.authority.submitErr = nil
	rec, err := f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", rec.AuthorityStatus)
}

func TestEmit_RechazoSeGuardaYPermiteReenvio(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())
	f.authority.submitStatus = entity.AuthorityStatusRejected
	f.authority.submitReason = "FAD06: NIT del adquiriente no válido"

	rec, err := f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "RECHAZADA", rec.AuthorityStatus)
	assert.Contains(t, rec.RejectionReason, "FAD06")

	errs, err := f.emission.EmissionErrors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, inv.ID, errs[0].ID)

	detail, err := f.emission.InvoiceEmissionErrors(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Contains(t, detail.RejectionReason, "FAD06")

	f.authority.submitStatus = entity.AuthorityStatusPending
	f.authority.submitReason = ""
	rec, err = f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", rec.AuthorityStatus)
	assert.Equal(t, 2, rec.Attempts)
}

func TestEmit_EmisionEnCurso(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())
	f.authority.entered = make(chan struct{}, 1)
	f.authority.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.emission.Emit(context.Background(), inv.ID)
	}()

	// El primer envío ya tiene el bloqueo cuando llega a la DIAN.
	select {
	case <-f.authority.entered:
	case <-time.After(time.Second):
		t.Fatal("el primer envío no llegó a la DIAN")
	}

	_, err := f.emission.Emit(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrEmissionInProgress)

	close(f.authority.block)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, f.authority.submitCount())
}

func TestFetchStatus_AceptadaEsDefinitiva(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())

	_, err := f.emission.FetchStatus(context.Background(), inv.ID)
	var serr *domain.InvalidStateError
	require.ErrorAs(t, err, &serr, "sin emitir no hay estado que consultar")

	_, err = f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)

	f.authority.queryStatus = entity.AuthorityStatusAccepted
	rec, err := f.emission.FetchStatus(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACEPTADA", rec.AuthorityStatus)
	require.NotNil(t, rec.ResolvedAt)

	// Una notificación tardía de rechazo no revierte la aceptación.
	rec, err = f.emission.ApplyCallback(context.Background(), inv.ID, dto.AuthorityCallbackRequest{Status: "RECHAZADA", Reason: "tarde"})
	require.NoError(t, err)
	assert.Equal(t, "ACEPTADA", rec.AuthorityStatus)

	// Resuelta no vuelve a consultar a la DIAN.
	queries := f.authority.queries
	_, err = f.emission.FetchStatus(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, queries, f.authority.queries)

	// Emitir una factura aceptada devuelve el registro sin reenviar.
	again, err := f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACEPTADA", again.AuthorityStatus)
	assert.Equal(t, 1, f.authority.submitCount())
}

func TestApplyCallback_RechazoDesdePendiente(t *testing.T) {
	f := newFixture(t)
	inv := f.crear(t, solicitudBase())
	_, err := f.emission.Emit(context.Background(), inv.ID)
	require.NoError(t, err)

	rec, err := f.emission.ApplyCallback(context.Background(), inv.ID, dto.AuthorityCallbackRequest{Status: "RECHAZADA", Reason: "Regla 90: documento procesado anteriormente"})
	require.NoError(t, err)
	assert.Equal(t, "RECHAZADA", rec.AuthorityStatus)
	assert.Contains(t, rec.RejectionReason, "Regla 90")

	_, err = f.emission.ApplyCallback(context.Background(), inv.ID, dto.AuthorityCallbackRequest{Status: "DESCONOCIDO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStatusPoller_ResuelvePendientes(t *testing.T) {
	f := newFixture(t)
	a := f.crear(t, solicitudBase())
	b := f.crear(t, solicitudBase())
	for _, id := range []string{a.ID, b.ID} {
		_, err := f.emission.Emit(context.Background(), id)
		require.NoError(t, err)
	}

	poller := billing.NewStatusPoller(f.emission, f.store, time.Minute, logger.Nop())

	resolved, err := poller.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resolved, "la DIAN aún no responde")

	f.authority.queryStatus = entity.AuthorityStatusAccepted
	resolved, err = poller.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	got, err := f.invoices.GetInvoice(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACEPTADA", got.AuthorityStatus)
}
