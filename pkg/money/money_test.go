package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

func TestMoney_SumaExactaSinDeriva(t *testing.T) {
	// 0.1 * 10 en float64 no da 1.0 exacto; con Money sí.
	total := money.Zero
	for i := 0; i < 10; i++ {
		total = total.Add(money.MustParse("0.10"))
	}
	assert.True(t, total.Equal(money.FromInt(1)), "la suma debe ser exacta: %s", total)
}

func TestMoney_UnmarshalNumeroYCadena(t *testing.T) {
	var body struct {
		A money.Money `json:"a"`
		B money.Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 145000.50, "b": "25000"}`), &body))
	assert.Equal(t, "145000.50", body.A.String())
	assert.Equal(t, "25000.00", body.B.String())
}

func TestMoney_UnmarshalInvalido(t *testing.T) {
	var m money.Money
	err := json.Unmarshal([]byte(`"abc"`), &m)
	assert.Error(t, err)
}

func TestMoney_RechazaFraccionesDeCentavo(t *testing.T) {
	_, err := money.Parse("145000.004")
	assert.ErrorIs(t, err, money.ErrPrecision)

	var body struct {
		Monto money.Money `json:"monto"`
	}
	err = json.Unmarshal([]byte(`{"monto": "145000.004"}`), &body)
	assert.ErrorIs(t, err, money.ErrPrecision)
	err = json.Unmarshal([]byte(`{"monto": 0.001}`), &body)
	assert.ErrorIs(t, err, money.ErrPrecision)
}

func TestMoney_CerosFinalesNoSonFraccion(t *testing.T) {
	m, err := money.Parse("145000.000")
	require.NoError(t, err)
	assert.Equal(t, "145000.00", m.String())
}

func TestMoney_MarshalComoNumero(t *testing.T) {
	out, err := json.Marshal(map[string]money.Money{"monto": money.MustParse("45000")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"monto": 45000.00}`, string(out))
}

func TestMoney_Comparaciones(t *testing.T) {
	a := money.FromInt(100000)
	b := money.FromInt(45000)

	assert.True(t, a.GreaterThan(b))
	assert.True(t, b.LessThan(a))
	assert.True(t, a.Sub(b).Sub(a).IsNegative())
	assert.True(t, b.MulInt(2).Add(money.FromInt(10000)).Equal(a))
	assert.True(t, money.Sum(b, b, money.FromInt(10000)).Equal(a))
}
