package entity

import "github.com/jhoicas/facturacion-clinica/pkg/money"

// ItemType tipo de servicio facturado; determina el grupo de servicios RIPS.
type ItemType string

const (
	ItemTypeConsultation    ItemType = "Consulta"
	ItemTypeMedicalOrder    ItemType = "OrdenMedica"
	ItemTypeMedication      ItemType = "OrdenMedicamento"
	ItemTypeHospitalization ItemType = "Hospitalizacion"
	ItemTypeOther           ItemType = "Otro"
)

// Valid indica si el tipo es conocido.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeConsultation, ItemTypeMedicalOrder, ItemTypeMedication, ItemTypeHospitalization, ItemTypeOther:
		return true
	}
	return false
}

// InvoiceItem línea de la factura. Subtotal = precio unitario * cantidad - descuento.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Position    int
	Type        ItemType
	Description string
	Quantity    int64
	UnitPrice   money.Money
	Discount    money.Money
	Subtotal    money.Money
}

// Gross precio unitario * cantidad, antes del descuento.
func (it InvoiceItem) Gross() money.Money {
	return it.UnitPrice.MulInt(it.Quantity)
}
