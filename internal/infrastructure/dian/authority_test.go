package dian_test

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/dian"
	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/dian/signer"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// ─── fixtures ────────────────────────────────────────────────────────────────

type firmaFalsa struct{}

func (firmaFalsa) Sign(xmlBytes []byte) ([]byte, error) { return xmlBytes, nil }

func configBase() dian.AuthorityConfig {
	return dian.AuthorityConfig{
		Issuer: dian.Issuer{
			NIT:      "900123456-8",
			Name:     "Clínica de Prueba S.A.S.",
			Address:  "Calle 1 # 2-3",
			CityCode: "11001",
			City:     "Bogotá",
		},
		Resolution: dian.BillingResolutionData{
			Number:   "18760000001",
			Prefix:   "SETP",
			From:     1,
			To:       5000,
			DateFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		TechnicalKey: "fc8eac422eba16e22ffd8c6f94b3f40a6e38162c",
		TipoAmbiente: "2",
	}
}

func documento() *billing.AuthorityDocument {
	inv := &entity.Invoice{
		ID:          "inv-1",
		Number:      "F-2026-00001",
		Consecutive: 1,
		Patient:     entity.PatientRef{ID: "pac-1", Name: "Ana Gómez", DocumentType: "CC", DocumentNumber: "1020304050"},
		Items: []entity.InvoiceItem{{
			ID: "it-1", Position: 1, Type: entity.ItemTypeConsultation, Description: "Consulta medicina general",
			Quantity: 1, UnitPrice: money.FromInt(150000), Discount: money.FromInt(5000), Subtotal: money.FromInt(145000),
		}},
		Subtotal:   money.FromInt(150000),
		Discounts:  money.FromInt(5000),
		TaxTotal:   money.Zero,
		Total:      money.FromInt(145000),
		PaidTotal:  money.Zero,
		BalanceDue: money.FromInt(145000),
		Status:     entity.InvoiceStatusPending,
		IssuedAt:   time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}
	return &billing.AuthorityDocument{
		Invoice: inv,
		Patient: &entity.Patient{ID: "pac-1", FirstName: "Ana", LastName: "Gómez", DocumentType: "CC", DocumentNumber: "1020304050", Email: "ana@example.com"},
	}
}

var contentFileRe = regexp.MustCompile(`<wcf:contentFile>([^<]+)</wcf:contentFile>`)

// servidorDIAN responde siempre con body y registra la última acción y el ZIP recibido.
type servidorDIAN struct {
	srv     *httptest.Server
	action  atomic.Value
	zip     atomic.Value
	llamado atomic.Int32
}

func nuevoServidor(t *testing.T, status int, body string) *servidorDIAN {
	t.Helper()
	s := &servidorDIAN{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.llamado.Add(1)
		s.action.Store(r.Header.Get("SOAPAction"))
		raw, _ := io.ReadAll(r.Body)
		if m := contentFileRe.FindSubmatch(raw); m != nil {
			data, _ := base64.StdEncoding.DecodeString(string(m[1]))
			s.zip.Store(data)
		}
		w.Header().Set("Content-Type", "application/soap+xml")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *servidorDIAN) autoridad(t *testing.T, env string) *dian.Authority {
	t.Helper()
	client, err := dian.NewSOAPDIANClient(dian.SOAPClientConfig{Env: env, Endpoint: s.srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	a, err := dian.NewAuthority(configBase(), dian.NewXMLBuilderService(), firmaFalsa{}, client, logger.Nop())
	require.NoError(t, err)
	return a
}

func envelope(inner string) string {
	return `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"><s:Body>` + inner + `</s:Body></s:Envelope>`
}

// ─── Submit ──────────────────────────────────────────────────────────────────

func TestSubmit_EnviaZipFirmadoYQuedaPendiente(t *testing.T) {
	s := nuevoServidor(t, http.StatusOK, envelope(
		`<SendTestSetAsyncResponse><SendTestSetAsyncResult><ErrorMessageList/><ZipKey>zip-123</ZipKey></SendTestSetAsyncResult></SendTestSetAsyncResponse>`))

	sub, err := s.autoridad(t, dian.AppEnvTest).Submit(context.Background(), documento())
	require.NoError(t, err)

	assert.Equal(t, entity.AuthorityStatusPending, sub.Status)
	assert.Equal(t, "zip-123", sub.TrackID)
	assert.Len(t, sub.CUFE, 96)
	assert.True(t, strings.HasPrefix(sub.QRData, "SETP1|2026-03-10|145000.00|01|0.00|"+sub.CUFE))
	assert.Contains(t, s.action.Load(), "SendTestSetAsync")

	data, ok := s.zip.Load().([]byte)
	require.True(t, ok, "el servidor debe recibir el ZIP")
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "900123456SETP1.xml", zr.File[0].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	xmlBytes, err := io.ReadAll(f)
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	assert.Equal(t, sub.CUFE, doc.Root().FindElement("./cbc:UUID").Text())
	assert.Equal(t, "SETP1", doc.Root().FindElement("./cbc:ID").Text())
	assert.Equal(t, "09:30:00-05:00", doc.Root().FindElement("./cbc:IssueTime").Text())
	assert.Equal(t, "145000.00", doc.Root().FindElement("./cac:LegalMonetaryTotal/cbc:PayableAmount").Text())
}

func TestSubmit_ProduccionUsaSendBillAsync(t *testing.T) {
	s := nuevoServidor(t, http.StatusOK, envelope(
		`<SendBillAsyncResponse><SendBillAsyncResult><ZipKey>zip-prod</ZipKey></SendBillAsyncResult></SendBillAsyncResponse>`))

	sub, err := s.autoridad(t, dian.AppEnvProd).Submit(context.Background(), documento())
	require.NoError(t, err)
	assert.Equal(t, "zip-prod", sub.TrackID)
	assert.Contains(t, s.action.Load(), "SendBillAsync")
}

func TestSubmit_RechazoDeNegocio(t *testing.T) {
	s := nuevoServidor(t, http.StatusOK, envelope(
		`<SendTestSetAsyncResponse><SendTestSetAsyncResult><ErrorMessageList><string>Regla: FAD06, Rechazo: NIT del emisor no autorizado</string></ErrorMessageList><ZipKey/></SendTestSetAsyncResult></SendTestSetAsyncResponse>`))

	sub, err := s.autoridad(t, dian.AppEnvTest).Submit(context.Background(), documento())
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorityStatusRejected, sub.Status)
	assert.Contains(t, sub.RejectionReason, "FAD06")
	assert.NotEmpty(t, sub.CUFE)
}

func TestSubmit_Regla90NoEsRechazo(t *testing.T) {
	s := nuevoServidor(t, http.StatusOK, envelope(
		`<SendTestSetAsyncResponse><SendTestSetAsyncResult><ErrorMessageList><string>Regla: 90, Rechazo: Documento procesado anteriormente.</string></ErrorMessageList><ZipKey/></SendTestSetAsyncResult></SendTestSetAsyncResponse>`))

	sub, err := s.autoridad(t, dian.AppEnvTest).Submit(context.Background(), documento())
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorityStatusPending, sub.Status)
	assert.Empty(t, sub.RejectionReason)
}

func TestSubmit_ErroresDeTransporte(t *testing.T) {
	casos := []struct {
		nombre string
		status int
		body   string
	}{
		{"soap fault", http.StatusInternalServerError, envelope(`<s:Fault><s:Code><s:Value>s:Receiver</s:Value></s:Code><s:Reason><s:Text>Servicio no disponible</s:Text></s:Reason></s:Fault>`)},
		{"http 503 sin xml", http.StatusServiceUnavailable, "upstream connect error"},
		{"respuesta vacía", http.StatusOK, envelope(``)},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			s := nuevoServidor(t, c.status, c.body)
			_, err := s.autoridad(t, dian.AppEnvTest).Submit(context.Background(), documento())
			require.Error(t, err)
			var te *domain.AuthorityTransportError
			assert.True(t, errors.As(err, &te), "debe ser error de transporte: %v", err)
		})
	}
}

func TestSubmit_FacturaInvalidaNoSeEnvia(t *testing.T) {
	s := nuevoServidor(t, http.StatusOK, envelope(``))
	doc := documento()
	doc.Invoice.Items = nil

	_, err := s.autoridad(t, dian.AppEnvTest).Submit(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, s.llamado.Load())
}

// ─── QueryStatus ─────────────────────────────────────────────────────────────

func TestQueryStatus_MapeaRespuestaDIAN(t *testing.T) {
	casos := []struct {
		nombre   string
		body     string
		esperado entity.AuthorityStatus
		motivo   string
	}{
		{
			"aceptada",
			`<GetStatusZipResponse><GetStatusZipResult><DianResponse><IsValid>true</IsValid><StatusCode>00</StatusCode><StatusDescription>Procesado Correctamente.</StatusDescription></DianResponse></GetStatusZipResult></GetStatusZipResponse>`,
			entity.AuthorityStatusAccepted, "",
		},
		{
			"rechazada",
			`<GetStatusZipResponse><GetStatusZipResult><DianResponse><IsValid>false</IsValid><StatusCode>99</StatusCode><ErrorMessage><string>Regla: FAJ44b, Rechazo: CUFE inválido</string></ErrorMessage></DianResponse></GetStatusZipResult></GetStatusZipResponse>`,
			entity.AuthorityStatusRejected, "FAJ44b",
		},
		{
			"en proceso",
			`<GetStatusZipResponse><GetStatusZipResult><DianResponse><IsValid>false</IsValid><StatusCode>66</StatusCode></DianResponse></GetStatusZipResult></GetStatusZipResponse>`,
			entity.AuthorityStatusPending, "",
		},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			s := nuevoServidor(t, http.StatusOK, envelope(c.body))
			res, err := s.autoridad(t, dian.AppEnvTest).QueryStatus(context.Background(), billing.AuthorityStatusQuery{TrackID: "zip-123", CUFE: "abc"})
			require.NoError(t, err)
			assert.Equal(t, c.esperado, res.Status)
			assert.Contains(t, res.Reason, c.motivo)
			assert.Contains(t, s.action.Load(), "GetStatusZip")
		})
	}
}

func TestQueryStatus_SinTrackIDConsultaPorCUFE(t *testing.T) {
	s := nuevoServidor(t, http.StatusOK, envelope(
		`<GetStatusResponse><GetStatusResult><IsValid>true</IsValid><StatusCode>00</StatusCode></GetStatusResult></GetStatusResponse>`))

	res, err := s.autoridad(t, dian.AppEnvTest).QueryStatus(context.Background(), billing.AuthorityStatusQuery{CUFE: "abc"})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorityStatusAccepted, res.Status)
	assert.True(t, strings.HasSuffix(s.action.Load().(string), "/GetStatus"))
}

// ─── XML + firma ─────────────────────────────────────────────────────────────

func certificado(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tpl := &x509.Certificate{
		SerialNumber: big.NewInt(7),
		Subject:      pkix.Name{CommonName: "Clínica de Prueba"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &key.PublicKey, key)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func TestSimulatedAuthority_FirmaEnLaRanuraDelXML(t *testing.T) {
	firmador, err := signer.New(certificado(t))
	require.NoError(t, err)

	a := dian.NewSimulatedAuthority(configBase(), dian.NewXMLBuilderService(), firmador, logger.Nop())
	sub, err := a.Submit(context.Background(), documento())
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorityStatusPending, sub.Status)
	assert.True(t, strings.HasPrefix(sub.TrackID, "SIM-"))

	res, err := a.QueryStatus(context.Background(), billing.AuthorityStatusQuery{TrackID: sub.TrackID})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorityStatusAccepted, res.Status)
}

func TestXMLBuilder_EstructuraUBL(t *testing.T) {
	doc := documento()
	doc.Invoice.Taxes = []entity.TaxLine{{Code: "01", Description: "IVA", Amount: money.FromInt(1900)}}
	doc.Invoice.TaxTotal = money.FromInt(1900)
	doc.Invoice.Total = money.FromInt(146900)

	out, err := dian.NewXMLBuilderService().Build(&dian.InvoiceBuildContext{
		Invoice:      doc.Invoice,
		Patient:      doc.Patient,
		Issuer:       configBase().Issuer,
		DocumentID:   "SETP1",
		CUFE:         "cufe-prueba",
		IssuedAt:     doc.Invoice.IssuedAt,
		TipoAmbiente: "2",
	})
	require.NoError(t, err)

	x := etree.NewDocument()
	require.NoError(t, x.ReadFromBytes(out))
	root := x.Root()
	assert.Equal(t, "UBLExtensions", root.ChildElements()[0].Tag)
	slots := root.FindElements("./ext:UBLExtensions/ext:UBLExtension/ext:ExtensionContent")
	require.Len(t, slots, 2)
	assert.Empty(t, slots[1].ChildElements())

	assert.Equal(t, "1900.00", root.FindElement("./cac:TaxTotal/cbc:TaxAmount").Text())
	assert.Equal(t, "01", root.FindElement("./cac:TaxTotal/cac:TaxSubtotal/cac:TaxCategory/cac:TaxScheme/cbc:ID").Text())
	assert.Equal(t, "146900.00", root.FindElement("./cac:LegalMonetaryTotal/cbc:PayableAmount").Text())
	assert.Equal(t, "5000.00", root.FindElement("./cac:InvoiceLine/cac:AllowanceCharge/cbc:Amount").Text())
	assert.Equal(t, "13", root.FindElement("./cac:AccountingCustomerParty/cac:Party/cac:PartyIdentification/cbc:ID").SelectAttrValue("schemeName", ""))
	assert.Equal(t, "8", root.FindElement("./cac:AccountingSupplierParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID").SelectAttrValue("schemeID", ""))
}

func TestDIANFilenames(t *testing.T) {
	xmlName, zipName := dian.DIANFilenames("900.123.456-8", "SETP", 42)
	assert.Equal(t, "900123456SETP42.xml", xmlName)
	assert.Equal(t, "900123456SETP42.zip", zipName)
}
