package patients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

var _ billing.PatientDirectory = (*HTTPDirectory)(nil)

// HTTPDirectory consulta GET {baseURL}/{id} en el servicio de pacientes.
// Acepta el paciente plano o envuelto en {"data": {...}}.
type HTTPDirectory struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPDirectory construye el cliente. timeout <= 0 usa 10 s.
func NewHTTPDirectory(baseURL, token string, timeout time.Duration) *HTTPDirectory {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetPatient devuelve (nil, nil) ante un 404.
func (d *HTTPDirectory) GetPatient(ctx context.Context, id string) (*entity.Patient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("pacientes: crear petición: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, unavailable(fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, unavailable(err)
	}
	var envelope struct {
		Data *patientPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, unavailable(fmt.Errorf("respuesta ilegible: %w", err))
	}
	payload := envelope.Data
	if payload == nil {
		payload = new(patientPayload)
		if err := json.Unmarshal(body, payload); err != nil {
			return nil, unavailable(fmt.Errorf("respuesta ilegible: %w", err))
		}
	}
	if payload.ID == "" {
		payload.ID = id
	}
	return payload.toEntity(), nil
}

func unavailable(err error) error {
	return errors.Join(domain.ErrDependencyUnavailable, fmt.Errorf("pacientes: %w", err))
}
