package dto

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout formato de fechas en el cuerpo de las peticiones.
const DateLayout = "2006-01-02"

// Date fecha sin hora ("2026-04-30"); también acepta RFC 3339.
type Date struct {
	time.Time
}

// UnmarshalJSON interpreta "YYYY-MM-DD" o un timestamp RFC 3339.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if raw == "" || raw == "null" {
		return nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("fecha inválida %q (use YYYY-MM-DD)", raw)
	}
	d.Time = t
	return nil
}

// MarshalJSON serializa como "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// Ptr devuelve la fecha como *time.Time (nil si d es nil).
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
