package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// bogota zona horaria de Colombia (UTC-5, sin horario de verano).
var bogota = time.FixedZone("COT", -5*60*60)

// storageErr envuelve fallas del repositorio como PersistenceError, sin tocar errores de dominio.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// patientFromSnapshot reconstruye el paciente a partir de la referencia congelada en la factura.
func patientFromSnapshot(ref entity.PatientRef) *entity.Patient {
	first, last := ref.Name, ""
	if i := strings.Index(ref.Name, " "); i > 0 {
		first, last = ref.Name[:i], ref.Name[i+1:]
	}
	return &entity.Patient{
		ID:             ref.ID,
		FirstName:      first,
		LastName:       last,
		DocumentType:   ref.DocumentType,
		DocumentNumber: ref.DocumentNumber,
	}
}

func orNow(now Clock) Clock {
	if now == nil {
		return time.Now
	}
	return now
}

func orNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics
	}
	return m
}
