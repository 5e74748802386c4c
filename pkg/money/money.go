// Package money implementa el tipo Money de punto fijo usado en toda la facturación.
// Nunca se opera con float64: los montos se parsean desde su representación decimal exacta.
package money

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale es el número de decimales con que se almacenan y transmiten los montos (COP).
const Scale = 2

// Money monto monetario en pesos colombianos con aritmética exacta.
type Money struct {
	d decimal.Decimal
}

// Zero monto cero.
var Zero = Money{d: decimal.Zero}

// ErrPrecision el texto trae fracciones de centavo.
var ErrPrecision = errors.New("money: el monto admite máximo 2 decimales")

// New construye un Money a partir de un decimal, redondeado a Scale.
func New(d decimal.Decimal) Money {
	return Money{d: d.Round(Scale)}
}

// FromInt construye un Money entero (pesos).
func FromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// Parse interpreta una cadena decimal ("145000", "1500.50"). Un valor con fracciones de
// centavo ("145000.004") es ErrPrecision; nunca se redondea la entrada.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: monto inválido %q: %w", s, err)
	}
	if !d.Equal(d.Round(Scale)) {
		return Zero, fmt.Errorf("%w: %q", ErrPrecision, s)
	}
	return New(d), nil
}

// MustParse como Parse pero entra en pánico; solo para constantes y tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money        { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money        { return Money{d: m.d.Sub(o.d)} }
func (m Money) MulInt(n int64) Money     { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }
func (m Money) Cmp(o Money) int          { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }

// Decimal devuelve el valor subyacente (para persistencia y formatos externos).
func (m Money) Decimal() decimal.Decimal { return m.d }

// String representación con dos decimales fijos ("145000.00").
func (m Money) String() string { return m.d.StringFixed(Scale) }

// Sum suma una lista de montos.
func Sum(ms ...Money) Money {
	total := Zero
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// MarshalJSON serializa como número JSON (sin comillas).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON acepta número o cadena decimal. El texto se interpreta directamente,
// sin pasar por float64.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*m = Zero
		return nil
	}
	raw = bytes.Trim(raw, `"`)
	parsed, err := Parse(string(raw))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
