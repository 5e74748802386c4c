// Package pdf genera el PDF de la factura de la clínica y, cuando ya fue emitida, su
// Representación Gráfica de Factura Electrónica DIAN (Resolución 000042/2020).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: IPS + NIT            │  N° Factura + Fecha + Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Ciudad / Email                         │
//	│  PACIENTE: Nombre + documento                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Tipo | Descripción | P.Unit | Desc. | Subtotal│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuentos / Impuestos / TOTAL / Saldo │
//	│  PAGOS: fecha | medio | referencia | monto                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER DIAN: CUFE + QR + Leyenda legal                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 102, Blue: 102}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorHeader  = &props.Color{Red: 0, Green: 102, Blue: 102}
)

var bogota = time.FixedZone("COT", -5*3600)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador. Los montos usan separador de miles ".".
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	issuer billing.IssuerInfo,
	invoice *entity.Invoice,
	electronic *entity.ElectronicInvoice,
) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("pdf: factura nula")
	}
	title := "Factura " + invoice.Number
	if electronic != nil {
		title = "Factura Electrónica " + invoice.Number
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice, issuer, electronic != nil))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(issuer))
	m.AddRows(pacienteRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(invoice.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(invoice))
	if len(invoice.Payments) > 0 {
		m.AddRows(g.paymentRows(invoice.Payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	if electronic != nil {
		m.AddRows(dianFooterRows(electronic)...)
	} else {
		m.AddRows(draftFooterRow())
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice, issuer billing.IssuerInfo, electronic bool) core.Row {
	kind := "FACTURA DE VENTA"
	if electronic {
		kind = "FACTURA ELECTRÓNICA DE VENTA"
	}
	fecha := invoice.IssuedAt.In(bogota).Format("02/01/2006 15:04")

	return row.New(22).Add(
		col.New(7).Add(
			text.New(issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+issuer.NIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(kind, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
			text.New("Estado: "+string(invoice.Status), props.Text{
				Size: 8, Align: align.Right, Top: 18, Color: colorGray,
			}),
		),
	)
}

func emisorRow(issuer billing.IssuerInfo) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Ciudad: %s   |   Email: %s",
				nonEmpty(issuer.Address, "—"),
				nonEmpty(issuer.City, "—"),
				nonEmpty(issuer.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func pacienteRow(invoice *entity.Invoice) core.Row {
	p := invoice.Patient
	detail := fmt.Sprintf("%s %s", nonEmpty(p.DocumentType, "Doc."), nonEmpty(p.DocumentNumber, "—"))
	if invoice.CoveredByInsurance {
		detail += "   |   Cubierto por EPS"
		if invoice.InsuranceAuthorization != "" {
			detail += " (autorización " + invoice.InsuranceAuthorization + ")"
		}
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PACIENTE / ADQUIRIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(p.Name, p.ID), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Tipo", 2, align.Left),
		h("Descripción del servicio", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc.", 1, align.Right),
		h("Subtotal", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func (g *MarotoPDFGenerator) tableDetailRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprint(it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				itemTypeLabel(it.Type),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.formatCOP(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				g.formatCOP(it.Discount),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				g.formatCOP(it.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(invoice *entity.Invoice) core.Row {
	type entry struct {
		label, value string
		grand        bool
	}
	entries := []entry{
		{"Subtotal:", g.formatCOP(invoice.Subtotal), false},
		{"Descuentos:", g.formatCOP(invoice.Discounts), false},
		{"Impuestos:", g.formatCOP(invoice.TaxTotal), false},
		{"TOTAL:", g.formatCOP(invoice.Total), true},
		{"Pagado:", g.formatCOP(invoice.PaidTotal), false},
		{"Saldo pendiente:", g.formatCOP(invoice.BalanceDue), true},
	}
	if invoice.EPSAmount != nil && invoice.PatientAmount != nil {
		entries = append(entries,
			entry{"A cargo de la EPS:", g.formatCOP(*invoice.EPSAmount), false},
			entry{"A cargo del paciente:", g.formatCOP(*invoice.PatientAmount), false},
		)
	}

	labels := col.New(3)
	values := col.New(3)
	for i, e := range entries {
		top := float64(i * 5)
		lp := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}
		vp := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if e.grand {
			lp.Size, lp.Color = 10, colorPrimary
			vp.Style, vp.Size, vp.Color = fontstyle.Bold, 10, colorPrimary
		}
		labels.Add(text.New(e.label, lp))
		values.Add(text.New(e.value, vp))
	}

	return row.New(float64(len(entries)*5+2)).Add(
		col.New(6), // espacio izquierdo
		labels,
		values,
	)
}

func (g *MarotoPDFGenerator) paymentRows(payments []entity.Payment) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("PAGOS REGISTRADOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
		)),
	}
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(p.RecordedAt.In(bogota).Format("02/01/2006 15:04"), props.Text{Size: 8, Left: 1})),
			col.New(3).Add(text.New(string(p.Method), props.Text{Size: 8})),
			col.New(3).Add(text.New(nonEmpty(p.Reference, "—"), props.Text{Size: 8, Color: colorGray})),
			col.New(3).Add(text.New(g.formatCOP(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// dianFooterRows CUFE partido + código QR + leyenda legal.
func dianFooterRows(electronic *entity.ElectronicInvoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMACIÓN ELECTRÓNICA DIAN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Estado DIAN: %s", electronic.Status), props.Text{Size: 7, Top: 1, Color: colorGray}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New("CUFE (Código Único de Factura Electrónica):", props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1,
			}),
		)),
	}
	for _, chunk := range splitEvery(electronic.CUFE, 80) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}

	rows = append(rows, row.New(3))

	if electronic.QRData != "" {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(code.NewQr(electronic.QRData, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Escanea el código QR para validar\nesta factura en el Portal DIAN.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Representación gráfica de\nFACTURA ELECTRÓNICA DE VENTA", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Esta factura electrónica fue generada conforme a la normativa DIAN "+
				"(Decreto 2242/2015, Resolución 000042/2020). "+
				"Conserve este documento como soporte fiscal.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

func draftFooterRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("Documento interno. La factura electrónica se expide al emitirla ante la DIAN.", props.Text{
			Size: 8, Align: align.Center, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func itemTypeLabel(t entity.ItemType) string {
	switch t {
	case entity.ItemTypeConsultation:
		return "Consulta"
	case entity.ItemTypeMedicalOrder:
		return "Procedimiento"
	case entity.ItemTypeMedication:
		return "Medicamento"
	case entity.ItemTypeHospitalization:
		return "Hospitalización"
	}
	return "Otro"
}

// formatCOP monto en pesos con separador de miles ".": 145000 → "$ 145.000,00".
func (g *MarotoPDFGenerator) formatCOP(m money.Money) string {
	fixed := m.String()
	intPart := m.Decimal().Truncate(0).IntPart()
	cents := fixed[len(fixed)-2:]
	return g.printer.Sprintf("$ %d,%s", intPart, cents)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
