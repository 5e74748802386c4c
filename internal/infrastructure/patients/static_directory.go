package patients

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

var _ billing.PatientDirectory = (*StaticDirectory)(nil)

// StaticDirectory directorio fijo de pacientes para desarrollo y pruebas.
type StaticDirectory struct {
	byID map[string]entity.Patient
}

// NewStaticDirectory crea el directorio con los pacientes dados.
func NewStaticDirectory(patients ...entity.Patient) *StaticDirectory {
	d := &StaticDirectory{byID: make(map[string]entity.Patient, len(patients))}
	for _, p := range patients {
		d.byID[p.ID] = p
	}
	return d
}

// LoadStaticDirectory lee un arreglo JSON de pacientes (mismo formato que el servicio).
func LoadStaticDirectory(path string) (*StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer directorio de pacientes: %w", err)
	}
	var payloads []patientPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("directorio de pacientes %s: %w", path, err)
	}
	d := NewStaticDirectory()
	for _, p := range payloads {
		if p.ID == "" {
			return nil, fmt.Errorf("directorio de pacientes %s: paciente sin id", path)
		}
		d.byID[p.ID] = *p.toEntity()
	}
	return d, nil
}

func (d *StaticDirectory) GetPatient(_ context.Context, id string) (*entity.Patient, error) {
	p, ok := d.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
