package dian

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsBase() CufeParams {
	return CufeParams{
		NumFac:         "SETP 990000001",
		FecFac:         "2026-03-10",
		HorFac:         "09:30:00-05:00",
		ValFac:         decimal.RequireFromString("145000"),
		ValIVA:         decimal.Zero,
		ValINC:         decimal.Zero,
		ValICA:         decimal.Zero,
		ValTot:         decimal.RequireFromString("145000"),
		NitOferente:    "900.123.456",
		DocAdquiriente: "1.020.304.050",
		ClaveTecnica:   "fc8eac422eba16e22ffd8c6f94b3f40a6e38162c",
		TipoAmbiente:   AmbientePruebas,
	}
}

func TestCufeParams_Cadena(t *testing.T) {
	esperada := "SETP990000001" + "2026-03-10" + "09:30:00-05:00" + "145000.00" +
		"010.00" + "040.00" + "030.00" + "145000.00" +
		"900123456" + "1020304050" + "fc8eac422eba16e22ffd8c6f94b3f40a6e38162c" + "2"
	assert.Equal(t, esperada, paramsBase().String())
}

func TestCUFE_SHA384(t *testing.T) {
	p := paramsBase()
	cufe, err := CUFE(p)
	require.NoError(t, err)

	sum := sha512.Sum384([]byte(p.String()))
	assert.Equal(t, hex.EncodeToString(sum[:]), cufe)
	assert.Len(t, cufe, 96)

	p.ValFac = decimal.RequireFromString("145000.01")
	otro, err := CUFE(p)
	require.NoError(t, err)
	assert.NotEqual(t, cufe, otro)
}

func TestCUFE_CamposObligatorios(t *testing.T) {
	p := paramsBase()
	p.ClaveTecnica = ""
	_, err := CUFE(p)
	assert.Error(t, err)

	p = paramsBase()
	p.TipoAmbiente = "3"
	_, err = CUFE(p)
	assert.Error(t, err)
}

func TestNITCheckDigit(t *testing.T) {
	dv, err := NITCheckDigit("800197268")
	require.NoError(t, err)
	assert.Equal(t, 4, dv)

	assert.NoError(t, ValidateNIT("800.197.268-4"))
	assert.Error(t, ValidateNIT("800197268-5"))
}

func TestCatalogos(t *testing.T) {
	assert.Equal(t, PaymentMeansCash, PaymentMeansCode("Efectivo"))
	assert.Equal(t, PaymentMeansCreditCard, PaymentMeansCode("Tarjeta"))
	assert.Equal(t, PaymentMeansBankTransfer, PaymentMeansCode("Transferencia"))
	assert.Equal(t, PaymentMeansMutualAgreement, PaymentMeansCode("EPS"))

	assert.Equal(t, IdentificationTypeCC, IdentificationTypeCode("Cédula de Ciudadanía"))
	assert.Equal(t, IdentificationTypeTI, IdentificationTypeCode("ti"))
	assert.Equal(t, IdentificationTypeCE, IdentificationTypeCode("Cédula de Extranjería"))
	assert.Equal(t, IdentificationTypeCC, IdentificationTypeCode(""))
	assert.Equal(t, "PA", DocTypeAbbreviation("Pasaporte"))
}
