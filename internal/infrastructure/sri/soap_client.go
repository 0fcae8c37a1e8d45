package sri

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SOAPSRIClient implementa AuthoritySubmitter y AuthorityQuerier contra los
// web services SOAP del SRI. Usa net/http de la stdlib; los endpoints del SRI
// no requieren autenticación, la identidad va en la firma XAdES del comprobante.
type SOAPSRIClient struct {
	httpClient *http.Client
}

// NewSOAPSRIClient construye el cliente con un timeout de red generoso (60 s);
// el SRI puede tardar varios segundos en responder en horas pico.
func NewSOAPSRIClient() *SOAPSRIClient {
	return &SOAPSRIClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ── Estructuras SOAP de request ───────────────────────────────────────────────

type soapEnvelope struct {
	XMLName xml.Name   `xml:"soapenv:Envelope"`
	XmlnsS  string     `xml:"xmlns:soapenv,attr"`
	XmlnsEc string     `xml:"xmlns:ec,attr"`
	Header  soapHeader `xml:"soapenv:Header"`
	Body    soapBody   `xml:"soapenv:Body"`
}

type soapHeader struct{}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// validarComprobanteBody cuerpo de la operación validarComprobante (recepción).
type validarComprobanteBody struct {
	XMLName xml.Name `xml:"ec:validarComprobante"`
	XML     string   `xml:"xml"` // comprobante firmado en Base64
}

// autorizacionComprobanteBody cuerpo de la operación autorizacionComprobante.
type autorizacionComprobanteBody struct {
	XMLName   xml.Name `xml:"ec:autorizacionComprobante"`
	AccessKey string   `xml:"claveAccesoComprobante"`
}

// ── Estructuras SOAP de respuesta ─────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	ValidarResponse      *validarComprobanteResponse      `xml:"validarComprobanteResponse"`
	AutorizacionResponse *autorizacionComprobanteResponse `xml:"autorizacionComprobanteResponse"`
	Fault                *soapFault                       `xml:"Fault"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type validarComprobanteResponse struct {
	Respuesta respuestaRecepcion `xml:"RespuestaRecepcionComprobante"`
}

type respuestaRecepcion struct {
	Estado       string           `xml:"estado"`
	Comprobantes []comprobanteWS  `xml:"comprobantes>comprobante"`
}

type comprobanteWS struct {
	ClaveAcceso string      `xml:"claveAcceso"`
	Mensajes    []mensajeWS `xml:"mensajes>mensaje"`
}

type mensajeWS struct {
	Identificador        string `xml:"identificador"`
	Mensaje              string `xml:"mensaje"`
	InformacionAdicional string `xml:"informacionAdicional"`
	Tipo                 string `xml:"tipo"`
}

type autorizacionComprobanteResponse struct {
	Respuesta respuestaAutorizacion `xml:"RespuestaAutorizacionComprobante"`
}

type respuestaAutorizacion struct {
	ClaveAccesoConsultada string           `xml:"claveAccesoConsultada"`
	NumeroComprobantes    string           `xml:"numeroComprobantes"`
	Autorizaciones        []autorizacionWS `xml:"autorizaciones>autorizacion"`
}

type autorizacionWS struct {
	Estado             string      `xml:"estado"`
	NumeroAutorizacion string      `xml:"numeroAutorizacion"`
	FechaAutorizacion  string      `xml:"fechaAutorizacion"`
	Ambiente           string      `xml:"ambiente"`
	Mensajes           []mensajeWS `xml:"mensajes>mensaje"`
}

// ── SubmitDocument ────────────────────────────────────────────────────────────

// SubmitDocument envía el XML firmado a RecepcionComprobantesOffline.
func (c *SOAPSRIClient) SubmitDocument(ctx context.Context, signedXML []byte, env string) (*ReceptionResult, error) {
	url, err := receptionURL(env)
	if err != nil {
		return nil, err
	}

	body := &validarComprobanteBody{
		XML: base64.StdEncoding.EncodeToString(signedXML),
	}
	raw, err := c.call(ctx, url, nsRecepcion, body)
	if err != nil {
		return nil, err
	}

	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(raw, &envResp); err != nil {
		return nil, fmt.Errorf("sri: parsear respuesta de recepción: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, fmt.Errorf("sri: SOAP Fault [%s]: %s",
			envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}
	if envResp.Body.ValidarResponse == nil {
		return nil, fmt.Errorf("sri: respuesta de recepción vacía o inesperada")
	}

	resp := envResp.Body.ValidarResponse.Respuesta
	result := &ReceptionResult{RawState: resp.Estado}
	for _, comp := range resp.Comprobantes {
		result.Messages = append(result.Messages, toMessages(comp.Mensajes)...)
	}
	return result, nil
}

// QueryAuthorization consulta AutorizacionComprobantesOffline por clave de acceso.
func (c *SOAPSRIClient) QueryAuthorization(ctx context.Context, accessKey, env string) (*AuthorizationResult, error) {
	url, err := authorizationURL(env)
	if err != nil {
		return nil, err
	}

	body := &autorizacionComprobanteBody{AccessKey: accessKey}
	raw, err := c.call(ctx, url, nsAutorizacion, body)
	if err != nil {
		return nil, err
	}

	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(raw, &envResp); err != nil {
		return nil, fmt.Errorf("sri: parsear respuesta de autorización: %w", err)
	}
	if envResp.Body.Fault != nil {
		return nil, fmt.Errorf("sri: SOAP Fault [%s]: %s",
			envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString)
	}
	if envResp.Body.AutorizacionResponse == nil {
		return nil, fmt.Errorf("sri: respuesta de autorización vacía o inesperada")
	}

	resp := envResp.Body.AutorizacionResponse.Respuesta
	if len(resp.Autorizaciones) == 0 {
		// Sin autorizaciones todavía: el comprobante sigue en cola del SRI.
		return &AuthorizationResult{RawState: "EN PROCESAMIENTO"}, nil
	}

	auth := resp.Autorizaciones[0]
	result := &AuthorizationResult{
		RawState:            auth.Estado,
		AuthorizationNumber: auth.NumeroAutorizacion,
		Environment:         auth.Ambiente,
		Messages:            toMessages(auth.Mensajes),
	}
	if ts := parseAuthorizationTime(auth.FechaAutorizacion); ts != nil {
		result.AuthorizedAt = ts
	}
	return result, nil
}

// ── helpers privados ──────────────────────────────────────────────────────────

func (c *SOAPSRIClient) call(ctx context.Context, url, ns string, content interface{}) ([]byte, error) {
	envelope := soapEnvelope{
		XmlnsS:  soapNS,
		XmlnsEc: ns,
		Body:    soapBody{Content: content},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sri: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("sri: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sri: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("sri: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("sri: leer respuesta: %w", err)
	}
	return raw, nil
}

func receptionURL(env string) (string, error) {
	switch env {
	case AppEnvTest:
		return receptionURLTest, nil
	case AppEnvProd:
		return receptionURLProd, nil
	}
	return "", fmt.Errorf("sri: entorno desconocido %q (usar 'test' o 'prod')", env)
}

func authorizationURL(env string) (string, error) {
	switch env {
	case AppEnvTest:
		return authorizationURLTest, nil
	case AppEnvProd:
		return authorizationURLProd, nil
	}
	return "", fmt.Errorf("sri: entorno desconocido %q (usar 'test' o 'prod')", env)
}

func toMessages(raw []mensajeWS) []AuthorityMessage {
	out := make([]AuthorityMessage, 0, len(raw))
	for _, m := range raw {
		out = append(out, AuthorityMessage{
			Identifier:     m.Identificador,
			Message:        m.Mensaje,
			AdditionalInfo: m.InformacionAdicional,
			Type:           m.Tipo,
		})
	}
	return out
}

// parseAuthorizationTime tolera los dos formatos que devuelve el SRI.
func parseAuthorizationTime(raw string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000-07:00", "02/01/2006 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

var (
	_ AuthoritySubmitter = (*SOAPSRIClient)(nil)
	_ AuthorityQuerier   = (*SOAPSRIClient)(nil)
)
