// Package patients implementa billing.PatientDirectory: cliente HTTP del servicio de
// pacientes de la clínica y un directorio estático leído de un archivo JSON.
package patients

import (
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// patientPayload representación JSON de un paciente en el servicio de la clínica.
type patientPayload struct {
	ID              string `json:"id"`
	Nombre          string `json:"nombre"`
	Apellido        string `json:"apellido"`
	TipoDocumento   string `json:"tipoDocumento"`
	Cedula          string `json:"cedula"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono"`
	Direccion       string `json:"direccion"`
	Genero          string `json:"genero"`
	TipoUsuario     string `json:"tipoUsuario"`
	CodigoMunicipio string `json:"codigoMunicipio"`
	FechaNacimiento string `json:"fechaNacimiento"`
}

func (p patientPayload) toEntity() *entity.Patient {
	out := &entity.Patient{
		ID:               p.ID,
		FirstName:        strings.TrimSpace(p.Nombre),
		LastName:         strings.TrimSpace(p.Apellido),
		DocumentType:     p.TipoDocumento,
		DocumentNumber:   strings.TrimSpace(p.Cedula),
		Email:            strings.TrimSpace(p.Email),
		Phone:            p.Telefono,
		Address:          p.Direccion,
		Gender:           p.Genero,
		UserType:         p.TipoUsuario,
		MunicipalityCode: p.CodigoMunicipio,
	}
	if t, ok := parseBirthDate(p.FechaNacimiento); ok {
		out.BirthDate = &t
	}
	return out
}

func parseBirthDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
