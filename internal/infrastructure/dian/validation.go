package dian

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// ErrInvalidInvoice agrupa errores de validación previos al envío.
var ErrInvalidInvoice = fmt.Errorf("factura inválida para DIAN: %w", domain.ErrInvalidInput)

// ValidateInvoice revisa lo que la DIAN rechazaría de entrada: adquiriente sin documento,
// factura sin ítems o totales que no cuadran con las líneas.
func ValidateInvoice(inv *entity.Invoice, patient *entity.Patient) error {
	if inv == nil {
		return fmt.Errorf("%w: factura nula", ErrInvalidInvoice)
	}
	var errs []error

	if patient == nil || pkgdian.OnlyDigits(patient.DocumentNumber) == "" {
		errs = append(errs, errors.New("el adquiriente no tiene número de documento"))
	} else if pkgdian.IdentificationTypeCode(patient.DocumentType) == pkgdian.IdentificationTypeNIT {
		if err := pkgdian.ValidateNIT(patient.DocumentNumber); err != nil {
			errs = append(errs, fmt.Errorf("adquiriente NIT: %w", err))
		}
	}

	if len(inv.Items) == 0 {
		errs = append(errs, errors.New("la factura debe tener al menos un ítem"))
	} else {
		lines := money.Zero
		for _, it := range inv.Items {
			lines = lines.Add(it.Subtotal)
			if strings.TrimSpace(it.Description) == "" {
				errs = append(errs, fmt.Errorf("ítem %d sin descripción", it.Position))
			}
		}
		if net := inv.Subtotal.Sub(inv.Discounts); !net.Equal(lines) {
			errs = append(errs, fmt.Errorf("valor neto (%s) no coincide con la suma de las líneas (%s)", net, lines))
		}
	}

	taxes := money.Zero
	for _, t := range inv.Taxes {
		taxes = taxes.Add(t.Amount)
	}
	if !inv.TaxTotal.Equal(taxes) {
		errs = append(errs, fmt.Errorf("impuestos (%s) no coinciden con la suma de tributos (%s)", inv.TaxTotal, taxes))
	}
	if expected := inv.Subtotal.Sub(inv.Discounts).Add(inv.TaxTotal); !inv.Total.Equal(expected) {
		errs = append(errs, fmt.Errorf("total (%s) no coincide con neto + impuestos (%s)", inv.Total, expected))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidInvoice}, errs...)...)
	}
	return nil
}
