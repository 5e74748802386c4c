package entity

import (
	"strings"
	"time"
)

// Patient datos del paciente provistos por el servicio externo de pacientes.
// La facturación no los persiste salvo la referencia congelada en Invoice.Patient.
type Patient struct {
	ID               string
	FirstName        string
	LastName         string
	DocumentType     string // "CC", "TI", "CE", "PA", "RC", "PE" o el nombre largo
	DocumentNumber   string
	Email            string
	Phone            string
	Address          string
	Gender           string // Masculino | Femenino | Otro
	UserType         string // Contributivo | Subsidiado | Vinculado | Particular | Otro
	MunicipalityCode string // DIVIPOLA, ej. 11001
	BirthDate        *time.Time
}

// FullName nombre completo del paciente.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Ref construye la referencia congelada para la factura.
func (p *Patient) Ref() PatientRef {
	return PatientRef{
		ID:             p.ID,
		Name:           p.FullName(),
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
	}
}
