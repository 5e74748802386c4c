// Package dian reúne lo que la facturación electrónica DIAN (Anexo Técnico 1.9) exige
// fuera de la capa de transporte: CUFE, catálogos, dígito de verificación del NIT y
// la interfaz de firma.
package dian

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CufeParams datos de la cadena CUFE. Los tres impuestos del anexo son fijos:
// 01 (IVA), 04 (INC) y 03 (ICA); los que no aplican van en cero.
type CufeParams struct {
	NumFac         string // prefijo + consecutivo, sin espacios
	FecFac         string // YYYY-MM-DD
	HorFac         string // HH:MM:SS-05:00
	ValFac         decimal.Decimal
	ValIVA         decimal.Decimal
	ValINC         decimal.Decimal
	ValICA         decimal.Decimal
	ValTot         decimal.Decimal
	NitOferente    string
	DocAdquiriente string
	ClaveTecnica   string
	TipoAmbiente   string // "1" producción, "2" habilitación
}

// String cadena de concatenación en el orden del anexo.
func (p CufeParams) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(strings.Fields(p.NumFac), ""))
	b.WriteString(p.FecFac)
	b.WriteString(p.HorFac)
	b.WriteString(cufeAmount(p.ValFac))
	b.WriteString(TaxCodeIVA + cufeAmount(p.ValIVA))
	b.WriteString(TaxCodeINC + cufeAmount(p.ValINC))
	b.WriteString(TaxCodeICA + cufeAmount(p.ValICA))
	b.WriteString(cufeAmount(p.ValTot))
	b.WriteString(OnlyDigits(p.NitOferente))
	b.WriteString(OnlyDigits(p.DocAdquiriente))
	b.WriteString(p.ClaveTecnica)
	b.WriteString(p.TipoAmbiente)
	return b.String()
}

// CUFE SHA-384 en hexadecimal minúscula de la cadena de concatenación.
func CUFE(p CufeParams) (string, error) {
	switch {
	case strings.TrimSpace(p.NumFac) == "":
		return "", fmt.Errorf("dian: NumFac es obligatorio")
	case p.FecFac == "" || p.HorFac == "":
		return "", fmt.Errorf("dian: fecha y hora de emisión son obligatorias")
	case OnlyDigits(p.NitOferente) == "":
		return "", fmt.Errorf("dian: NitOferente es obligatorio para el CUFE")
	case OnlyDigits(p.DocAdquiriente) == "":
		return "", fmt.Errorf("dian: DocAdquiriente es obligatorio para el CUFE")
	case p.ClaveTecnica == "":
		return "", fmt.Errorf("dian: ClaveTecnica es obligatoria para el CUFE")
	case p.TipoAmbiente != AmbienteProduccion && p.TipoAmbiente != AmbientePruebas:
		return "", fmt.Errorf("dian: TipoAmbiente inválido %q", p.TipoAmbiente)
	}
	sum := sha512.Sum384([]byte(p.String()))
	return hex.EncodeToString(sum[:]), nil
}

func cufeAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// OnlyDigits deja solo los dígitos 0-9.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
