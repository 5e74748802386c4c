package patients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
)

func TestHTTPDirectory_PacienteEnvuelto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pacientes/pac-1", r.URL.Path)
		assert.Equal(t, "Bearer secreto", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"pac-1","nombre":"Ana","apellido":"Gómez",
			"tipoDocumento":"Cédula de Ciudadanía","cedula":"1020304050","email":"ana@example.com",
			"genero":"Femenino","tipoUsuario":"Subsidiado","fechaNacimiento":"1990-05-12T00:00:00.000Z"}}`))
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL+"/pacientes/", "secreto", time.Second)
	p, err := dir.GetPatient(context.Background(), "pac-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ana Gómez", p.FullName())
	assert.Equal(t, "1020304050", p.DocumentNumber)
	assert.Equal(t, "Subsidiado", p.UserType)
	require.NotNil(t, p.BirthDate)
	assert.Equal(t, 1990, p.BirthDate.Year())
}

func TestHTTPDirectory_PacientePlano(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"nombre":"Luis","apellido":"Pérez","cedula":"80111222","fechaNacimiento":"1985-01-30"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPDirectory(srv.URL, "", time.Second).GetPatient(context.Background(), "pac-9")
	require.NoError(t, err)
	assert.Equal(t, "pac-9", p.ID)
	assert.Equal(t, "80111222", p.DocumentNumber)
	require.NotNil(t, p.BirthDate)
}

func TestHTTPDirectory_NoEncontrado(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p, err := NewHTTPDirectory(srv.URL, "", time.Second).GetPatient(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestHTTPDirectory_ServicioCaido(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPDirectory(srv.URL, "", time.Second).GetPatient(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestLoadStaticDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacientes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"pac-1","nombre":"Ana","apellido":"Gómez","cedula":"1020304050"}]`), 0o600))

	dir, err := LoadStaticDirectory(path)
	require.NoError(t, err)

	p, err := dir.GetPatient(context.Background(), "pac-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", p.FullName())

	missing, err := dir.GetPatient(context.Background(), "otro")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
