package dian

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	// AppEnvTest es el identificador de ambiente de habilitación/pruebas DIAN.
	AppEnvTest = "test"
	// AppEnvProd es el identificador de ambiente de producción DIAN.
	AppEnvProd = "prod"
	// AppEnvDev es el identificador local: no envía al WS DIAN.
	AppEnvDev = "dev"

	soapURLTest = "https://vpfe-hab.dian.gov.co/WcfDianCustomerServices.svc"
	soapURLProd = "https://vpfe.dian.gov.co/WcfDianCustomerServices.svc"

	soapNS         = "http://www.w3.org/2003/05/soap-envelope"
	soapNSWcf      = "http://wcf.dian.colombia"
	soapActionBase = "http://wcf.dian.colombia/IWcfDianCustomerServices/"

	maxResponseBytes = 4 << 20
)

// SOAPClientConfig parámetros del cliente. Endpoint vacío = URL oficial del entorno.
type SOAPClientConfig struct {
	Env       string // test | prod
	TestSetID string
	Endpoint  string
	Timeout   time.Duration
}

// SubmitResult resultado de la entrega al WS DIAN.
type SubmitResult struct {
	TrackID string   // ZipKey devuelto por SendBillAsync / SendTestSetAsync
	Errors  []string // mensajes de rechazo de la DIAN (puede ser vacío)
}

// StatusResult respuesta de GetStatusZip / GetStatus (DianResponse).
type StatusResult struct {
	IsValid           bool
	StatusCode        string
	StatusDescription string
	StatusMessage     string
	DocumentKey       string
	Errors            []string
}

// SOAPDIANClient cliente del WS SOAP de la DIAN sobre net/http.
// Todo error devuelto es *domain.AuthorityTransportError.
type SOAPDIANClient struct {
	cfg        SOAPClientConfig
	endpoint   string
	httpClient *http.Client
}

// NewSOAPDIANClient construye el cliente. El WS DIAN puede tardar varios segundos en responder:
// sin Timeout configurado se usan 60 s.
func NewSOAPDIANClient(cfg SOAPClientConfig) (*SOAPDIANClient, error) {
	endpoint := cfg.Endpoint
	switch cfg.Env {
	case AppEnvTest:
		if endpoint == "" {
			endpoint = soapURLTest
		}
	case AppEnvProd:
		if endpoint == "" {
			endpoint = soapURLProd
		}
	default:
		return nil, fmt.Errorf("soap: entorno desconocido %q (usar 'test' o 'prod')", cfg.Env)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SOAPDIANClient{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

// TODO: agregar la cabecera WS-Security (wsse:BinarySecurityToken + Timestamp firmado) que
// exige el WS de producción; hoy solo se valida contra habilitación detrás de un proxy firmante.
type soapEnvelope struct {
	XMLName xml.Name   `xml:"soap:Envelope"`
	XmlnsS  string     `xml:"xmlns:soap,attr"`
	XmlnsW  string     `xml:"xmlns:wcf,attr"`
	Header  soapHeader `xml:"soap:Header"`
	Body    soapBody   `xml:"soap:Body"`
}

type soapHeader struct{}

type soapBody struct {
	Content any
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soap:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// sendBillAsyncBody cuerpo para la operación SendBillAsync (producción).
type sendBillAsyncBody struct {
	XMLName     xml.Name `xml:"wcf:SendBillAsync"`
	FileName    string   `xml:"wcf:fileName"`
	ContentFile string   `xml:"wcf:contentFile"` // ZIP en Base64
}

// sendTestSetAsyncBody cuerpo para la operación SendTestSetAsync (habilitación).
type sendTestSetAsyncBody struct {
	XMLName     xml.Name `xml:"wcf:SendTestSetAsync"`
	FileName    string   `xml:"wcf:fileName"`
	ContentFile string   `xml:"wcf:contentFile"`
	TestSetID   string   `xml:"wcf:testSetId"`
}

type getStatusZipBody struct {
	XMLName xml.Name `xml:"wcf:GetStatusZip"`
	TrackID string   `xml:"wcf:trackId"`
}

type getStatusBody struct {
	XMLName xml.Name `xml:"wcf:GetStatus"`
	TrackID string   `xml:"wcf:trackId"`
}

// ── Estructuras de respuesta SOAP ─────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	SendBill     *asyncResponse     `xml:"SendBillAsyncResponse"`
	SendTestSet  *testSetResponse   `xml:"SendTestSetAsyncResponse"`
	GetStatusZip *statusZipResponse `xml:"GetStatusZipResponse"`
	GetStatus    *statusResponse    `xml:"GetStatusResponse"`
	Fault        *soapFault         `xml:"Fault"`
}

type asyncResponse struct {
	Result asyncResult `xml:"SendBillAsyncResult"`
}

type testSetResponse struct {
	Result asyncResult `xml:"SendTestSetAsyncResult"`
}

type asyncResult struct {
	ErrorMessages  []string `xml:"ErrorMessageList>string"`
	ProcessedItems []string `xml:"ErrorMessageList>XmlParamsResponseTrackId>ProcessedMessage"`
	ZipKey         string   `xml:"ZipKey"`
}

type statusZipResponse struct {
	Responses []dianResponse `xml:"GetStatusZipResult>DianResponse"`
}

type statusResponse struct {
	Result dianResponse `xml:"GetStatusResult"`
}

type dianResponse struct {
	IsValid           bool     `xml:"IsValid"`
	StatusCode        string   `xml:"StatusCode"`
	StatusDescription string   `xml:"StatusDescription"`
	StatusMessage     string   `xml:"StatusMessage"`
	XMLDocumentKey    string   `xml:"XmlDocumentKey"`
	ErrorMessages     []string `xml:"ErrorMessage>string"`
}

// soapFault cubre SOAP 1.1 (faultstring) y 1.2 (Reason/Text).
type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
	Code        string `xml:"Code>Value"`
	Reason      string `xml:"Reason>Text"`
}

func (f *soapFault) message() string {
	code, msg := f.FaultCode, f.FaultString
	if code == "" {
		code = f.Code
	}
	if msg == "" {
		msg = f.Reason
	}
	return fmt.Sprintf("SOAP Fault [%s]: %s", code, msg)
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// SubmitZip envía el ZIP con SendTestSetAsync (habilitación) o SendBillAsync (producción).
func (c *SOAPDIANClient) SubmitZip(ctx context.Context, zipBytes []byte, filename string) (*SubmitResult, error) {
	b64Content := base64.StdEncoding.EncodeToString(zipBytes)
	var (
		action string
		body   any
	)
	if c.cfg.Env == AppEnvProd {
		action = "SendBillAsync"
		body = &sendBillAsyncBody{FileName: filename, ContentFile: b64Content}
	} else {
		action = "SendTestSetAsync"
		body = &sendTestSetAsyncBody{FileName: filename, ContentFile: b64Content, TestSetID: c.cfg.TestSetID}
	}

	resp, err := c.call(ctx, action, body)
	if err != nil {
		return nil, err
	}
	var result *asyncResult
	switch {
	case resp.SendBill != nil:
		result = &resp.SendBill.Result
	case resp.SendTestSet != nil:
		result = &resp.SendTestSet.Result
	default:
		return nil, transportErr(action, errors.New("respuesta SOAP vacía o inesperada"))
	}
	msgs := append([]string{}, result.ErrorMessages...)
	msgs = append(msgs, result.ProcessedItems...)
	return &SubmitResult{TrackID: strings.TrimSpace(result.ZipKey), Errors: compact(msgs)}, nil
}

// GetStatusZip estado del lote enviado (trackId = ZipKey). Devuelve la primera respuesta del lote.
func (c *SOAPDIANClient) GetStatusZip(ctx context.Context, trackID string) (*StatusResult, error) {
	resp, err := c.call(ctx, "GetStatusZip", &getStatusZipBody{TrackID: trackID})
	if err != nil {
		return nil, err
	}
	if resp.GetStatusZip == nil || len(resp.GetStatusZip.Responses) == 0 {
		return nil, transportErr("GetStatusZip", errors.New("respuesta SOAP vacía o inesperada"))
	}
	return resp.GetStatusZip.Responses[0].toResult(), nil
}

// GetStatus estado de un documento por su CUFE.
func (c *SOAPDIANClient) GetStatus(ctx context.Context, cufe string) (*StatusResult, error) {
	resp, err := c.call(ctx, "GetStatus", &getStatusBody{TrackID: cufe})
	if err != nil {
		return nil, err
	}
	if resp.GetStatus == nil {
		return nil, transportErr("GetStatus", errors.New("respuesta SOAP vacía o inesperada"))
	}
	return resp.GetStatus.Result.toResult(), nil
}

func (r dianResponse) toResult() *StatusResult {
	return &StatusResult{
		IsValid:           r.IsValid,
		StatusCode:        strings.TrimSpace(r.StatusCode),
		StatusDescription: strings.TrimSpace(r.StatusDescription),
		StatusMessage:     strings.TrimSpace(r.StatusMessage),
		DocumentKey:       strings.TrimSpace(r.XMLDocumentKey),
		Errors:            compact(r.ErrorMessages),
	}
}

// call ejecuta la operación y desempaqueta el Body. Fault, HTTP >= 500, timeout o XML ilegible
// son errores de transporte.
func (c *SOAPDIANClient) call(ctx context.Context, action string, body any) (*soapResponseBody, error) {
	envelope := soapEnvelope{XmlnsS: soapNS, XmlnsW: soapNSWcf, Body: soapBody{Content: body}}
	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, transportErr(action, fmt.Errorf("serializar envelope: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, transportErr(action, fmt.Errorf("crear request: %w", err))
	}
	req.Header.Set("Content-Type", `application/soap+xml; charset=utf-8; action="`+soapActionBase+action+`"`)
	req.Header.Set("SOAPAction", soapActionBase+action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, transportErr(action, fmt.Errorf("timeout o cancelación: %w", ctx.Err()))
		}
		return nil, transportErr(action, fmt.Errorf("llamada HTTP fallida: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportErr(action, fmt.Errorf("leer respuesta: %w", err))
	}

	var env soapResponseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, transportErr(action, fmt.Errorf("HTTP %d, respuesta ilegible: %w", resp.StatusCode, err))
	}
	if env.Body.Fault != nil {
		return nil, transportErr(action, errors.New(env.Body.Fault.message()))
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, transportErr(action, fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	return &env.Body, nil
}

func transportErr(op string, err error) error {
	return &domain.AuthorityTransportError{Op: op, Err: err}
}

func compact(msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
