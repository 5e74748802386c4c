package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/memory"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/patients"
	apphttp "github.com/jhoicas/facturacion-clinica/internal/interfaces/http"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

type autoridadFalsa struct{}

func (autoridadFalsa) Submit(_ context.Context, doc *billing.AuthorityDocument) (*billing.AuthoritySubmission, error) {
	return &billing.AuthoritySubmission{
		Status:  entity.AuthorityStatusAccepted,
		CUFE:    "cufe-" + doc.Invoice.Number,
		TrackID: "track-" + doc.Invoice.Number,
		QRData:  "qr",
	}, nil
}

func (autoridadFalsa) QueryStatus(_ context.Context, _ billing.AuthorityStatusQuery) (*billing.AuthorityStatusResult, error) {
	return &billing.AuthorityStatusResult{Status: entity.AuthorityStatusAccepted}, nil
}

type pdfFalso struct{}

func (pdfFalso) GenerateInvoicePDF(_ context.Context, _ billing.IssuerInfo, inv *entity.Invoice, _ *entity.ElectronicInvoice) ([]byte, error) {
	return []byte("%PDF-" + inv.Number), nil
}

type correoFalso struct{ enviados []billing.EmailRequest }

func (m *correoFalso) Dispatch(_ context.Context, req billing.EmailRequest) error {
	m.enviados = append(m.enviados, req)
	return nil
}

func buildBillingApp(t *testing.T) (*fiber.App, *correoFalso) {
	t.Helper()
	now := func() time.Time { return time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC) }
	dir := patients.NewStaticDirectory(
		entity.Patient{ID: "pac-1", FirstName: "Ana", LastName: "Gómez", DocumentType: "CC", DocumentNumber: "1020304050", Email: "ana@example.com"},
	)
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	log := logger.Nop()
	mailer := &correoFalso{}

	app := apphttp.NewApp(apphttp.AppConfig{Name: "facturacion-test", Log: log})
	apphttp.Router(app, apphttp.RouterDeps{
		Invoices:    billing.NewInvoiceUseCase(tx, store, dir, nil, log, now),
		Payments:    billing.NewPaymentUseCase(tx, store, store, nil, log, now),
		Emission:    billing.NewEmissionUseCase(store, store, dir, autoridadFalsa{}, memory.NewLocker(), time.Minute, nil, log, now),
		Documents:   billing.NewDocumentUseCase(store, dir, pdfFalso{}, mailer, billing.IssuerInfo{Name: "Clínica"}, "https://api.clinica.test/", log),
		RIPS:        billing.NewRIPSUseCase(store, dir, nil, billing.RIPSProvider{NIT: "900123456", CodigoHabilitacion: "110010000001"}, nil, log, now),
		JWTSecret:   testJWTSecret,
		Log:         log,
		ServiceName: "facturacion-test",
	})
	return app, mailer
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func facturaBase() map[string]any {
	return map[string]any{
		"paciente_id": "pac-1",
		"items": []map[string]any{
			{"tipo": "Consulta", "descripcion": "Consulta general", "cantidad": 1, "precio_unitario": 100000},
			{"tipo": "OrdenMedicamento", "descripcion": "Acetaminofén", "cantidad": 2, "precio_unitario": "25000", "descuento": 5000},
		},
	}
}

func crearFactura(t *testing.T, app *fiber.App) map[string]any {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/facturas", "recepcion", facturaBase())
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body
}

func TestHealth_Publico(t *testing.T) {
	app, _ := buildBillingApp(t)
	resp, body := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestFacturas_SinToken_Retorna401(t *testing.T) {
	app, _ := buildBillingApp(t)
	resp, body := call(t, app, http.MethodGet, "/api/facturas", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestCrearFactura_CalculaTotales(t *testing.T) {
	app, _ := buildBillingApp(t)
	body := crearFactura(t, app)

	assert.Equal(t, "F-2026-00001", body["numero"])
	assert.Equal(t, "Pendiente", body["estado"])
	assert.EqualValues(t, 145000, body["total"])
	assert.EqualValues(t, 145000, body["saldoPendiente"])
	assert.EqualValues(t, 5000, body["descuentos"])

	resp, detalle := call(t, app, http.MethodGet, "/api/facturas/"+body["id"].(string), "recepcion", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, body["numero"], detalle["numero"])
}

func TestCrearFactura_SinItems_Retorna400ConCampos(t *testing.T) {
	app, _ := buildBillingApp(t)
	req := facturaBase()
	req["items"] = []map[string]any{}

	resp, body := call(t, app, http.MethodPost, "/api/facturas", "recepcion", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.NotEmpty(t, body["fields"])
}

func campos(body map[string]any) []string {
	var out []string
	list, _ := body["fields"].([]any)
	for _, f := range list {
		if m, ok := f.(map[string]any); ok {
			out = append(out, m["campo"].(string))
		}
	}
	return out
}

func TestCrearFactura_ReportaErroresDeFormatoYDeNegocioJuntos(t *testing.T) {
	app, _ := buildBillingApp(t)
	req := facturaBase()
	req["items"] = []map[string]any{
		{"tipo": "Nope", "descripcion": "Consulta general", "cantidad": 1, "precio_unitario": 100000},
		{"tipo": "Consulta", "descripcion": "Control", "cantidad": 1, "precio_unitario": -5, "descuento": 999},
	}

	resp, body := call(t, app, http.MethodPost, "/api/facturas", "recepcion", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.ElementsMatch(t,
		[]string{"items[0].tipo", "items[1].precio_unitario", "items[1].descuento"},
		campos(body))
}

func TestCrearFactura_CuerpoVacio_Retorna400(t *testing.T) {
	app, _ := buildBillingApp(t)
	resp, body := call(t, app, http.MethodPost, "/api/facturas", "recepcion", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestFactura_Inexistente_Retorna404(t *testing.T) {
	app, _ := buildBillingApp(t)
	resp, _ := call(t, app, http.MethodGet, "/api/facturas/no-existe", "recepcion", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegistrarPago_ParcialYExceso(t *testing.T) {
	app, _ := buildBillingApp(t)
	id := crearFactura(t, app)["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": 45000, "metodo_pago": "Efectivo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Parcial", body["estado"])
	assert.EqualValues(t, 100000, body["saldoPendiente"])

	resp, body = call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": 100000.01, "metodo_pago": "Tarjeta"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "SALDO_INSUFICIENTE", body["code"])

	resp, body = call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": 100000, "metodo_pago": "Transferencia"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Pagada", body["estado"])
	assert.EqualValues(t, 0, body["saldoPendiente"])

	req := httptest.NewRequest(http.MethodGet, "/api/facturas/"+id+"/pagos", nil)
	req.Header.Set("Authorization", tokenForRole(t, "recepcion"))
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var pagos []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&pagos))
	assert.Len(t, pagos, 2)
}

func TestRegistrarPago_FraccionDeCentavo_Retorna400SinAplicar(t *testing.T) {
	app, _ := buildBillingApp(t)
	id := crearFactura(t, app)["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": "145000.004", "metodo_pago": "Efectivo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, detalle := call(t, app, http.MethodGet, "/api/facturas/"+id, "recepcion", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Pendiente", detalle["estado"])
	assert.EqualValues(t, 145000, detalle["saldoPendiente"])
}

func TestListarPagos_FacturaInexistente_Retorna404(t *testing.T) {
	app, _ := buildBillingApp(t)
	resp, _ := call(t, app, http.MethodGet, "/api/facturas/abc/pagos", "recepcion", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegistrarPago_MetodoInvalido_Retorna400(t *testing.T) {
	app, _ := buildBillingApp(t)
	id := crearFactura(t, app)["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": 1000, "metodo_pago": "Cheque"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestCancelar_RequiereRolDeFacturacion(t *testing.T) {
	app, _ := buildBillingApp(t)
	id := crearFactura(t, app)["id"].(string)
	motivo := map[string]any{"motivo": "Error en la orden"}

	resp, _ := call(t, app, http.MethodPost, "/api/facturas/"+id+"/cancelar", "recepcion", motivo)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/"+id+"/cancelar", "facturador", motivo)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Cancelada", body["estado"])

	resp, body = call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": 1000, "metodo_pago": "Efectivo"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ESTADO_INVALIDO", body["code"])
}

func TestRIPS_SinFacturasPagadas_Retorna422(t *testing.T) {
	app, _ := buildBillingApp(t)
	id := crearFactura(t, app)["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/rips/generar", "facturador",
		map[string]any{"factura_ids": []string{id}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "SIN_FACTURAS_ELEGIBLES", body["code"])
	assert.NotEmpty(t, body["omitidas"])
}

func TestRIPS_FacturaPagada_DescargaAdjunto(t *testing.T) {
	app, _ := buildBillingApp(t)
	factura := crearFactura(t, app)
	id := factura["id"].(string)
	resp, _ := call(t, app, http.MethodPost, "/api/facturas/"+id+"/pagos", "recepcion",
		map[string]any{"monto": 145000, "metodo_pago": "Efectivo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/rips/generar", "admin",
		map[string]any{"factura_ids": []string{id}})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "rips_F-2026-00001.json")
	assert.Len(t, body["documentos"], 1)
}

func TestEmitir_AceptadaYPDFElectronico(t *testing.T) {
	app, mailer := buildBillingApp(t)
	id := crearFactura(t, app)["id"].(string)

	resp, body := call(t, app, http.MethodPost, "/api/facturas/"+id+"/emitir-electronica", "facturador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "cufe-F-2026-00001", body["cufe"])

	req := httptest.NewRequest(http.MethodGet, "/api/facturas/"+id+"/pdf-electronico", nil)
	req.Header.Set("Authorization", tokenForRole(t, "recepcion"))
	pdfResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer pdfResp.Body.Close()
	assert.Equal(t, http.StatusOK, pdfResp.StatusCode)
	assert.Equal(t, "application/pdf", pdfResp.Header.Get("Content-Type"))

	resp, _ = call(t, app, http.MethodPost, "/api/facturas/"+id+"/enviar-email", "recepcion", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, mailer.enviados, 1)
	assert.Equal(t, "ana@example.com", mailer.enviados[0].To)
}
