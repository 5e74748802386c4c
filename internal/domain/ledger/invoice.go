package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// Códigos de impuesto admitidos en las líneas de impuesto.
const (
	TaxCodeIVA = "01"
	TaxCodeINC = "04"
)

// ItemInput línea solicitada al crear la factura.
type ItemInput struct {
	Type        entity.ItemType
	Description string
	Quantity    int64
	UnitPrice   money.Money
	Discount    money.Money
}

// TaxInput impuesto informado por el llamador (no se calcula).
type TaxInput struct {
	Code        string
	Description string
	Amount      money.Money
}

// Draft datos de entrada de una factura nueva.
type Draft struct {
	Patient                entity.PatientRef
	Items                  []ItemInput
	Taxes                  []TaxInput
	CoveredByInsurance     bool
	InsuranceAuthorization string
	EPSAmount              *money.Money
	Observations           string
	DueAt                  *time.Time
	CreatedBy              string
}

// Totals montos derivados de la factura.
type Totals struct {
	Subtotal  money.Money
	Discounts money.Money
	Taxes     money.Money
	Total     money.Money
}

// ComputeTotals subtotal = Σ precio*cantidad, descuentos = Σ descuento, total = subtotal - descuentos + impuestos.
func ComputeTotals(items []ItemInput, taxes []TaxInput) Totals {
	t := Totals{Subtotal: money.Zero, Discounts: money.Zero, Taxes: money.Zero}
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.UnitPrice.MulInt(it.Quantity))
		t.Discounts = t.Discounts.Add(it.Discount)
	}
	for _, tx := range taxes {
		t.Taxes = t.Taxes.Add(tx.Amount)
	}
	t.Total = t.Subtotal.Sub(t.Discounts).Add(t.Taxes)
	return t
}

// Validate revisa todos los campos y devuelve un *domain.ValidationError con cada violación.
func (d Draft) Validate(issuedAt time.Time) error {
	var fields []domain.FieldError
	add := func(field, msg string) {
		fields = append(fields, domain.FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(d.Patient.ID) == "" {
		add("paciente_id", "es obligatorio")
	}
	if len(d.Items) == 0 {
		add("items", "la factura debe tener al menos un ítem")
	}
	for i, it := range d.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if !it.Type.Valid() {
			add(prefix+".tipo", "tipo de ítem desconocido")
		}
		if strings.TrimSpace(it.Description) == "" {
			add(prefix+".descripcion", "es obligatoria")
		}
		if it.Quantity < 1 {
			add(prefix+".cantidad", "debe ser mayor o igual a 1")
		}
		if it.UnitPrice.IsNegative() {
			add(prefix+".precio_unitario", "no puede ser negativo")
		}
		if it.Discount.IsNegative() {
			add(prefix+".descuento", "no puede ser negativo")
		} else if it.Quantity >= 1 && it.Discount.GreaterThan(it.UnitPrice.MulInt(it.Quantity)) {
			add(prefix+".descuento", "no puede superar precio_unitario * cantidad")
		}
	}
	for i, tx := range d.Taxes {
		prefix := fmt.Sprintf("impuestos[%d]", i)
		if tx.Code != TaxCodeIVA && tx.Code != TaxCodeINC {
			add(prefix+".codigo", "debe ser 01 (IVA) o 04 (INC)")
		}
		if tx.Amount.IsNegative() {
			add(prefix+".valor", "no puede ser negativo")
		}
	}
	if d.EPSAmount != nil {
		switch {
		case !d.CoveredByInsurance:
			add("monto_eps", "solo aplica cuando cubierto_por_eps es verdadero")
		case d.EPSAmount.IsNegative():
			add("monto_eps", "no puede ser negativo")
		case len(fields) == 0 && d.EPSAmount.GreaterThan(ComputeTotals(d.Items, d.Taxes).Total):
			add("monto_eps", "no puede superar el total de la factura")
		}
	}
	if d.DueAt != nil && truncateDay(*d.DueAt).Before(truncateDay(issuedAt)) {
		add("fecha_vencimiento", "no puede ser anterior a la fecha de emisión")
	}
	return domain.NewValidationError(fields)
}

// Build valida el borrador y arma la factura con totales, saldo y estado inicial.
// IDs, número y consecutivo los asigna el llamador.
func (d Draft) Build(issuedAt time.Time) (*entity.Invoice, error) {
	if err := d.Validate(issuedAt); err != nil {
		return nil, err
	}
	totals := ComputeTotals(d.Items, d.Taxes)

	inv := &entity.Invoice{
		Patient:                d.Patient,
		Items:                  make([]entity.InvoiceItem, 0, len(d.Items)),
		Taxes:                  make([]entity.TaxLine, 0, len(d.Taxes)),
		Subtotal:               totals.Subtotal,
		Discounts:              totals.Discounts,
		TaxTotal:               totals.Taxes,
		Total:                  totals.Total,
		PaidTotal:              money.Zero,
		BalanceDue:             totals.Total,
		Status:                 DeriveStatus(totals.Total, money.Zero, false),
		CoveredByInsurance:     d.CoveredByInsurance,
		InsuranceAuthorization: strings.TrimSpace(d.InsuranceAuthorization),
		Observations:           strings.TrimSpace(d.Observations),
		IssuedAt:               issuedAt,
		DueAt:                  d.DueAt,
		CreatedBy:              d.CreatedBy,
		CreatedAt:              issuedAt,
		UpdatedAt:              issuedAt,
	}
	for i, it := range d.Items {
		inv.Items = append(inv.Items, entity.InvoiceItem{
			Position:    i + 1,
			Type:        it.Type,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Subtotal:    it.UnitPrice.MulInt(it.Quantity).Sub(it.Discount),
		})
	}
	for _, tx := range d.Taxes {
		inv.Taxes = append(inv.Taxes, entity.TaxLine{Code: tx.Code, Description: tx.Description, Amount: tx.Amount})
	}
	if d.CoveredByInsurance && d.EPSAmount != nil {
		eps := *d.EPSAmount
		patient := totals.Total.Sub(eps)
		inv.EPSAmount = &eps
		inv.PatientAmount = &patient
	}
	return inv, nil
}

// FormatNumber número visible de la factura: F-{año}-{consecutivo:05d}.
func FormatNumber(year int, consecutive int64) string {
	return fmt.Sprintf("F-%d-%05d", year, consecutive)
}

// DetailsUpdate cambios de metadatos permitidos después de crear la factura.
type DetailsUpdate struct {
	Observations           *string
	DueAt                  *time.Time
	InsuranceAuthorization *string
}

// ApplyDetails aplica la actualización de metadatos. Montos e ítems no se tocan.
func ApplyDetails(inv *entity.Invoice, u DetailsUpdate, at time.Time) error {
	if inv.Status == entity.InvoiceStatusCancelled {
		return &domain.InvalidStateError{Current: string(inv.Status), Operation: "modificar"}
	}
	if u.DueAt != nil && truncateDay(*u.DueAt).Before(truncateDay(inv.IssuedAt)) {
		return domain.NewValidationError([]domain.FieldError{{Field: "fecha_vencimiento", Message: "no puede ser anterior a la fecha de emisión"}})
	}
	if u.Observations != nil {
		inv.Observations = strings.TrimSpace(*u.Observations)
	}
	if u.DueAt != nil {
		due := *u.DueAt
		inv.DueAt = &due
	}
	if u.InsuranceAuthorization != nil {
		inv.InsuranceAuthorization = strings.TrimSpace(*u.InsuranceAuthorization)
	}
	inv.UpdatedAt = at
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
