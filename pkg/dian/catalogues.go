package dian

import "strings"

// Tipo de ambiente (Anexo 1.9, tabla 13.1.3).
const (
	AmbienteProduccion = "1"
	AmbientePruebas    = "2"
)

// Tabla 11 - Tipos de impuesto.
const (
	TaxCodeIVA = "01"
	TaxCodeICA = "03"
	TaxCodeINC = "04"
)

// TaxName nombre corto del tributo para cac:TaxScheme.
func TaxName(code string) string {
	switch code {
	case TaxCodeIVA:
		return "IVA"
	case TaxCodeINC:
		return "INC"
	case TaxCodeICA:
		return "ICA"
	}
	return "ZZ"
}

// Tabla 14 - Forma de pago.
const (
	PaymentFormContado = "1"
	PaymentFormCredito = "2"
)

// Tabla 13 - Medios de pago (los que usa la caja de la clínica).
const (
	PaymentMeansCash            = "10"
	PaymentMeansBankTransfer    = "47"
	PaymentMeansCreditCard      = "48"
	PaymentMeansMutualAgreement = "ZZZ"
)

// PaymentMeansCode traduce el método de pago de caja al código DIAN.
func PaymentMeansCode(method string) string {
	switch method {
	case "Efectivo":
		return PaymentMeansCash
	case "Tarjeta":
		return PaymentMeansCreditCard
	case "Transferencia":
		return PaymentMeansBankTransfer
	}
	return PaymentMeansMutualAgreement
}

// Tabla 3 - Tipos de identificación.
const (
	IdentificationTypeRC  = "11"
	IdentificationTypeTI  = "12"
	IdentificationTypeCC  = "13"
	IdentificationTypeCE  = "22"
	IdentificationTypeNIT = "31"
	IdentificationTypePA  = "41"
	IdentificationTypePEP = "47"
)

// IdentificationTypeCode acepta la sigla ("CC") o el nombre largo ("Cédula de Ciudadanía").
// Desconocidos se tratan como cédula.
func IdentificationTypeCode(docType string) string {
	switch normalizeDocType(docType) {
	case "RC":
		return IdentificationTypeRC
	case "TI":
		return IdentificationTypeTI
	case "CE":
		return IdentificationTypeCE
	case "NIT":
		return IdentificationTypeNIT
	case "PA":
		return IdentificationTypePA
	case "PE":
		return IdentificationTypePEP
	}
	return IdentificationTypeCC
}

// DocTypeAbbreviation devuelve la sigla RIPS (CC, TI, CE, PA, RC, PE, NIT) del tipo de documento.
func DocTypeAbbreviation(docType string) string {
	if abbr := normalizeDocType(docType); abbr != "" {
		return abbr
	}
	return "CC"
}

func normalizeDocType(docType string) string {
	s := strings.ToUpper(strings.TrimSpace(docType))
	switch s {
	case "CC", "TI", "CE", "PA", "RC", "PE", "NIT":
		return s
	}
	switch {
	case strings.Contains(s, "CIUDADAN"):
		return "CC"
	case strings.Contains(s, "TARJETA"):
		return "TI"
	case strings.Contains(s, "EXTRANJER"):
		return "CE"
	case strings.Contains(s, "PASAPORTE"):
		return "PA"
	case strings.Contains(s, "REGISTRO"):
		return "RC"
	case strings.Contains(s, "PERMISO"):
		return "PE"
	}
	return ""
}

// Responsabilidad fiscal para adquirientes personas naturales sin RUT.
const TaxLevelNoAplica = "R-99-PN"

// Unidad de medida para servicios de salud (unidad).
const UnitUnit = "94"

// Tipo de operación "Salud" (Anexo 1.9 + Res. 506/2022) y tipo de factura de venta.
const (
	OperationTypeHealth = "SS-CUFE"
	InvoiceTypeSale     = "01"
)
