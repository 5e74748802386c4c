package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/ledger"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

var ahora = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func borradorBase() ledger.Draft {
	return ledger.Draft{
		Patient: entity.PatientRef{ID: "pac-1", Name: "Ana Gómez"},
		Items: []ledger.ItemInput{
			{Type: entity.ItemTypeConsultation, Description: "Consulta general", Quantity: 1, UnitPrice: money.FromInt(100000), Discount: money.Zero},
			{Type: entity.ItemTypeMedication, Description: "Acetaminofén", Quantity: 2, UnitPrice: money.FromInt(25000), Discount: money.FromInt(5000)},
		},
	}
}

func pago(monto int64) ledger.PaymentInput {
	return ledger.PaymentInput{Amount: money.FromInt(monto), Method: entity.PaymentMethodCash}
}

// ─── Creación y totales ─────────────────────────────────────────────────────

func TestBuild_EscenarioDosItems(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)

	assert.Equal(t, "150000.00", inv.Subtotal.String())
	assert.Equal(t, "5000.00", inv.Discounts.String())
	assert.Equal(t, "0.00", inv.TaxTotal.String())
	assert.Equal(t, "145000.00", inv.Total.String())
	assert.True(t, inv.BalanceDue.Equal(inv.Total))
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "45000.00", inv.Items[1].Subtotal.String())
	assert.Equal(t, 2, inv.Items[1].Position)
	assert.True(t, inv.Total.Equal(inv.Subtotal.Sub(inv.Discounts).Add(inv.TaxTotal)))
}

func TestBuild_ConImpuestos(t *testing.T) {
	d := borradorBase()
	d.Taxes = []ledger.TaxInput{{Code: ledger.TaxCodeIVA, Description: "IVA", Amount: money.MustParse("1900.50")}}

	inv, err := d.Build(ahora)
	require.NoError(t, err)
	assert.Equal(t, "146900.50", inv.Total.String())
	require.Len(t, inv.Taxes, 1)
}

func TestBuild_TotalCeroQuedaPagada(t *testing.T) {
	d := ledger.Draft{
		Patient: entity.PatientRef{ID: "pac-1"},
		Items: []ledger.ItemInput{
			{Type: entity.ItemTypeConsultation, Description: "Control EPS", Quantity: 1, UnitPrice: money.FromInt(80000), Discount: money.FromInt(80000)},
		},
		CoveredByInsurance: true,
	}
	inv, err := d.Build(ahora)
	require.NoError(t, err)
	assert.True(t, inv.Total.IsZero())
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.Empty(t, inv.Payments)
}

func TestBuild_ReportaTodosLosCampos(t *testing.T) {
	vence := ahora.AddDate(0, 0, -2)
	d := ledger.Draft{
		Items: []ledger.ItemInput{
			{Type: "Cirugia", Description: "", Quantity: 0, UnitPrice: money.FromInt(-1), Discount: money.Zero},
			{Type: entity.ItemTypeOther, Description: "Kit", Quantity: 1, UnitPrice: money.FromInt(1000), Discount: money.FromInt(2000)},
		},
		Taxes: []ledger.TaxInput{{Code: "99", Amount: money.FromInt(-5)}},
		DueAt: &vence,
	}
	_, err := d.Build(ahora)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, campo := range []string{
		"paciente_id",
		"items[0].tipo", "items[0].descripcion", "items[0].cantidad", "items[0].precio_unitario",
		"items[1].descuento",
		"impuestos[0].codigo", "impuestos[0].valor",
		"fecha_vencimiento",
	} {
		assert.True(t, verr.Has(campo), "falta el campo %s", campo)
	}
}

func TestBuild_SinItems(t *testing.T) {
	_, err := ledger.Draft{Patient: entity.PatientRef{ID: "p"}}.Build(ahora)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("items"))
}

func TestBuild_DistribucionEPS(t *testing.T) {
	d := borradorBase()
	d.CoveredByInsurance = true
	eps := money.FromInt(100000)
	d.EPSAmount = &eps

	inv, err := d.Build(ahora)
	require.NoError(t, err)
	require.NotNil(t, inv.PatientAmount)
	assert.Equal(t, "45000.00", inv.PatientAmount.String())

	excedido := money.FromInt(200000)
	d.EPSAmount = &excedido
	_, err = d.Build(ahora)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("monto_eps"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "F-2026-00001", ledger.FormatNumber(2026, 1))
	assert.Equal(t, "F-2026-123456", ledger.FormatNumber(2026, 123456))
}

// ─── Máquina de estados ─────────────────────────────────────────────────────

func TestDeriveStatus(t *testing.T) {
	total := money.FromInt(145000)
	casos := []struct {
		nombre    string
		pagado    money.Money
		cancelada bool
		esperado  entity.InvoiceStatus
	}{
		{"sin pagos", money.Zero, false, entity.InvoiceStatusPending},
		{"abono parcial", money.FromInt(100000), false, entity.InvoiceStatusPartial},
		{"pago exacto", money.FromInt(145000), false, entity.InvoiceStatusPaid},
		{"un centavo menos", money.MustParse("144999.99"), false, entity.InvoiceStatusPartial},
		{"cancelada con abonos", money.FromInt(1000), true, entity.InvoiceStatusCancelled},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			assert.Equal(t, c.esperado, ledger.DeriveStatus(total, c.pagado, c.cancelada))
		})
	}
	assert.Equal(t, entity.InvoiceStatusPaid, ledger.DeriveStatus(money.Zero, money.Zero, false))
}

func TestReplay_IndependienteDelOrden(t *testing.T) {
	total := money.FromInt(145000)
	a := entity.Payment{Amount: money.FromInt(45000)}
	b := entity.Payment{Amount: money.FromInt(60000)}
	c := entity.Payment{Amount: money.FromInt(40000)}

	ordenes := [][]entity.Payment{{a, b, c}, {c, b, a}, {b, a, c}}
	for _, pagos := range ordenes {
		pagado, saldo, estado := ledger.Replay(total, pagos, false)
		assert.Equal(t, "145000.00", pagado.String())
		assert.True(t, saldo.IsZero())
		assert.Equal(t, entity.InvoiceStatusPaid, estado)
	}
	_, saldo, estado := ledger.Replay(total, []entity.Payment{c, a}, false)
	assert.Equal(t, "60000.00", saldo.String())
	assert.Equal(t, entity.InvoiceStatusPartial, estado)
}

// ─── Pagos ──────────────────────────────────────────────────────────────────

func TestApplyPayment_PendienteParcialPagada(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)

	p, err := ledger.ApplyPayment(inv, pago(100000), ahora)
	require.NoError(t, err)
	assert.Equal(t, "100000.00", p.Amount.String())
	assert.Equal(t, entity.InvoiceStatusPartial, inv.Status)
	assert.Equal(t, "45000.00", inv.BalanceDue.String())

	_, err = ledger.ApplyPayment(inv, pago(45000), ahora)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.BalanceDue.IsZero())

	_, err = ledger.ApplyPayment(inv, pago(1), ahora)
	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &stateErr))
}

func TestApplyPayment_SobrepagoNoModifica(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)

	_, err = ledger.ApplyPayment(inv, pago(145001), ahora)
	var balErr *domain.InsufficientBalanceError
	require.True(t, errors.As(err, &balErr))
	assert.Equal(t, "145000.00", balErr.Balance)
	assert.Equal(t, "145000.00", inv.BalanceDue.String())
	assert.True(t, inv.PaidTotal.IsZero())
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
}

func TestApplyPayment_MontoYMetodoInvalidos(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)

	_, err = ledger.ApplyPayment(inv, ledger.PaymentInput{Amount: money.Zero, Method: "Bitcoin"}, ahora)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("monto"))
	assert.True(t, verr.Has("metodo_pago"))
}

func TestApplyPayment_FacturaCancelada(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)
	require.NoError(t, ledger.Cancel(inv, ledger.CancelInput{Reason: "error de digitación"}, ahora))

	_, err = ledger.ApplyPayment(inv, pago(1000), ahora)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// ─── Cancelación ────────────────────────────────────────────────────────────

func TestCancel_ConAbonosExigeConfirmacion(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)
	_, err = ledger.ApplyPayment(inv, pago(50000), ahora)
	require.NoError(t, err)

	err = ledger.Cancel(inv, ledger.CancelInput{Reason: "paciente desiste"}, ahora)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("reembolso_confirmado"))
	assert.Equal(t, entity.InvoiceStatusPartial, inv.Status)

	require.NoError(t, ledger.Cancel(inv, ledger.CancelInput{Reason: "paciente desiste", RefundAcknowledged: true}, ahora))
	assert.Equal(t, entity.InvoiceStatusCancelled, inv.Status)
	require.NotNil(t, inv.CancelledAt)
	assert.Equal(t, "paciente desiste", inv.CancellationReason)
}

func TestCancel_PagadaOCanceladaRechaza(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)
	_, err = ledger.ApplyPayment(inv, pago(145000), ahora)
	require.NoError(t, err)

	err = ledger.Cancel(inv, ledger.CancelInput{Reason: "x", RefundAcknowledged: true}, ahora)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
}

// ─── Metadatos ──────────────────────────────────────────────────────────────

func TestApplyDetails(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)
	obs := "  revisar autorización  "
	vence := ahora.AddDate(0, 1, 0)
	require.NoError(t, ledger.ApplyDetails(inv, ledger.DetailsUpdate{Observations: &obs, DueAt: &vence}, ahora))
	assert.Equal(t, "revisar autorización", inv.Observations)
	assert.Equal(t, vence, *inv.DueAt)
	assert.Equal(t, "145000.00", inv.Total.String())

	require.NoError(t, ledger.Cancel(inv, ledger.CancelInput{Reason: "duplicada"}, ahora))
	err = ledger.ApplyDetails(inv, ledger.DetailsUpdate{Observations: &obs}, ahora)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// ─── Estado DIAN ────────────────────────────────────────────────────────────

func TestEvaluateAuthorityTransition(t *testing.T) {
	p, a, r := entity.AuthorityStatusPending, entity.AuthorityStatusAccepted, entity.AuthorityStatusRejected
	assert.Equal(t, ledger.TransitionApply, ledger.EvaluateAuthorityTransition(p, a))
	assert.Equal(t, ledger.TransitionApply, ledger.EvaluateAuthorityTransition(p, r))
	assert.Equal(t, ledger.TransitionNoop, ledger.EvaluateAuthorityTransition(a, a))
	assert.Equal(t, ledger.TransitionAnomaly, ledger.EvaluateAuthorityTransition(a, r))
	assert.Equal(t, ledger.TransitionAnomaly, ledger.EvaluateAuthorityTransition(r, a))
	assert.Equal(t, ledger.TransitionAnomaly, ledger.EvaluateAuthorityTransition(a, p))
}

func TestDecideEmission(t *testing.T) {
	inv, err := borradorBase().Build(ahora)
	require.NoError(t, err)

	d, err := ledger.DecideEmission(inv, nil)
	require.NoError(t, err)
	assert.Equal(t, ledger.EmissionSubmit, d)

	d, err = ledger.DecideEmission(inv, &entity.ElectronicInvoice{Status: entity.AuthorityStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, ledger.EmissionSubmit, d)

	d, err = ledger.DecideEmission(inv, &entity.ElectronicInvoice{Status: entity.AuthorityStatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, ledger.EmissionReturnExisting, d)

	require.NoError(t, ledger.Cancel(inv, ledger.CancelInput{Reason: "x"}, ahora))
	_, err = ledger.DecideEmission(inv, nil)
	var stateErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &stateErr))
}
