package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

func facturaDePrueba() *entity.Invoice {
	issued := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	return &entity.Invoice{
		ID:          "f-1",
		Number:      "F-2026-00001",
		Consecutive: 1,
		Patient: entity.PatientRef{
			ID: "p-1", Name: "Ana Gómez", DocumentType: "CC", DocumentNumber: "1020304050",
		},
		Items: []entity.InvoiceItem{{
			Position: 1, Type: entity.ItemTypeConsultation, Description: "Consulta medicina general",
			Quantity: 1, UnitPrice: money.FromInt(150000), Discount: money.FromInt(5000),
			Subtotal: money.FromInt(145000),
		}},
		Subtotal:   money.FromInt(150000),
		Discounts:  money.FromInt(5000),
		TaxTotal:   money.FromInt(0),
		Total:      money.FromInt(145000),
		PaidTotal:  money.FromInt(45000),
		BalanceDue: money.FromInt(100000),
		Status:     entity.InvoiceStatusPartial,
		IssuedAt:   issued,
		Payments: []entity.Payment{{
			ID: "pg-1", Amount: money.FromInt(45000), Method: entity.PaymentMethodCash, RecordedAt: issued,
		}},
	}
}

var emisor = billing.IssuerInfo{Name: "Clínica Prueba", NIT: "900123456-8", City: "Bogotá"}

func TestGenerateInvoicePDF_Interno(t *testing.T) {
	g := NewMarotoPDFGenerator()
	out, err := g.GenerateInvoicePDF(context.Background(), emisor, facturaDePrueba(), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_ElectronicaConQR(t *testing.T) {
	g := NewMarotoPDFGenerator()
	plain, err := g.GenerateInvoicePDF(context.Background(), emisor, facturaDePrueba(), nil)
	require.NoError(t, err)

	electronic := &entity.ElectronicInvoice{
		InvoiceID: "f-1",
		CUFE:      "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Status:    entity.AuthorityStatusAccepted,
		QRData:    "SETP1|2026-03-10|145000.00|01|0.00|cufe|https://catalogo-vpfe-hab.dian.gov.co",
	}
	out, err := g.GenerateInvoicePDF(context.Background(), emisor, facturaDePrueba(), electronic)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), len(plain))
}

func TestGenerateInvoicePDF_FacturaNula(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), emisor, nil, nil)
	assert.Error(t, err)
}

func TestFormatCOP(t *testing.T) {
	g := NewMarotoPDFGenerator()
	assert.Equal(t, "$ 145.000,00", g.formatCOP(money.FromInt(145000)))
	assert.Equal(t, "$ 1.250.000,50", g.formatCOP(money.MustParse("1250000.50")))
}

func TestSplitEvery(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, splitEvery("abcdefg", 3))
	assert.Nil(t, splitEvery("", 3))
}
