package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isUUID los ids de fila son columnas uuid; otro texto haría fallar la consulta con 22P02.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

func moneyPtr(d decimal.NullDecimal) *money.Money {
	if !d.Valid {
		return nil
	}
	m := money.New(d.Decimal)
	return &m
}

func nullDecimal(m *money.Money) decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: m.Decimal(), Valid: true}
}
