// Package sri implementa la integración con los web services de comprobantes
// electrónicos del SRI (Ecuador): construcción de XML, recepción y autorización.
package sri

import (
	"context"
	"time"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	// AppEnvTest apunta al ambiente de certificación del SRI (celcer).
	AppEnvTest = "test"
	// AppEnvProd apunta al ambiente de producción del SRI (cel).
	AppEnvProd = "prod"
	// AppEnvDev no envía nada al SRI: simula recepción y autorización.
	AppEnvDev = "dev"

	receptionURLTest = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"
	receptionURLProd = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"

	authorizationURLTest = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"
	authorizationURLProd = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"

	soapNS            = "http://schemas.xmlsoap.org/soap/envelope/"
	nsRecepcion       = "http://ec.gob.sri.ws.recepcion"
	nsAutorizacion    = "http://ec.gob.sri.ws.autorizacion"
)

// ── Resultados ─────────────────────────────────────────────────────────────────

// AuthorityMessage mensaje informativo o de error devuelto por el SRI.
type AuthorityMessage struct {
	Identifier     string
	Message        string
	AdditionalInfo string
	Type           string // ERROR | ADVERTENCIA
}

// ReceptionResult resultado de validarComprobante.
// RawState es el vocabulario crudo del SRI (RECIBIDA, DEVUELTA).
type ReceptionResult struct {
	RawState string
	Messages []AuthorityMessage
}

// AuthorizationResult resultado de autorizacionComprobante.
// RawState es el vocabulario crudo (AUTORIZADO, NO AUTORIZADO, EN PROCESAMIENTO...).
type AuthorizationResult struct {
	RawState            string
	AuthorizationNumber string
	AuthorizedAt        *time.Time
	Environment         string
	Messages            []AuthorityMessage
}

// ── Puertos ────────────────────────────────────────────────────────────────────

// AuthoritySubmitter define el puerto de entrega de comprobantes firmados al SRI.
// La implementación concreta usa SOAP; para tests se inyecta un fake.
type AuthoritySubmitter interface {
	// SubmitDocument envía el XML firmado (Base64 interno) a RecepcionComprobantesOffline.
	// env debe ser "test" o "prod"; determina la URL del endpoint.
	SubmitDocument(ctx context.Context, signedXML []byte, env string) (*ReceptionResult, error)
}

// AuthorityQuerier define el puerto de consulta de autorización por clave de acceso.
type AuthorityQuerier interface {
	QueryAuthorization(ctx context.Context, accessKey, env string) (*AuthorizationResult, error)
}

// ── Contexto de construcción de XML ───────────────────────────────────────────

// IssuerData datos del emisor que van en infoTributaria. Llegan por configuración,
// no por base de datos: el emisor es único (la plataforma).
type IssuerData struct {
	RUC             string
	RazonSocial     string
	NombreComercial string
	DirMatriz       string
	Establishment   string // ej: 001
	EmissionPoint   string // ej: 001
	Environment     string // 1 = pruebas, 2 = producción
}

// DocumentBuildContext todo lo necesario para construir el XML de un comprobante.
type DocumentBuildContext struct {
	Document  *entity.FiscalDocument
	Lines     []*entity.DocumentLine
	Issuer    IssuerData
	AccessKey string
	// Sequential formateado a 9 dígitos (ej: 000000042).
	Sequential string
	TaxRate    string // tarifa como porcentaje, ej: "15"
}
