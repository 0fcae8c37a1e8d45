package billing

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	"github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri/signer"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
	pkgsri "github.com/kevinvillajim/bcommerce-billing/pkg/sri"
)

// SRIOrchestrator orquesta el ciclo completo de un comprobante:
//
//	XML → Firma XAdES-BES → Recepción SOAP → Consulta de autorización → Update DB
//
// Se ejecuta siempre en goroutine independiente (ProcessAsync) con su propio
// context.Background() + timeout 60 s, desacoplado del ciclo HTTP.
//
// Modos de operación (controlados por SRIConfig.AppEnv):
//   - "dev"  → Genera el XML, NO envía al SRI. Estado final: AUTHORIZED (simulado).
//   - "test" → Envía al ambiente de certificación celcer.sri.gob.ec.
//   - "prod" → Envía al ambiente de producción cel.sri.gob.ec.
type SRIOrchestrator struct {
	docRepo    repository.FiscalDocumentRepository
	xmlBuilder *infrasri.XMLBuilderService
	signer     pkgsri.Signer
	submitter  infrasri.AuthoritySubmitter // nil en dev
	querier    infrasri.AuthorityQuerier   // nil en dev
	sm         *domainbilling.StateMachine
	config     SRIConfig
	taxRate    string // tarifa de IVA como porcentaje para el XML (ej: "15")
	log        *logger.Logger
}

// NewSRIOrchestrator construye el orquestador con todas sus dependencias.
// submitter y querier pueden ser nil: en ese caso solo funciona el modo dev.
func NewSRIOrchestrator(
	docRepo repository.FiscalDocumentRepository,
	xmlBuilder *infrasri.XMLBuilderService,
	sriSigner pkgsri.Signer,
	submitter infrasri.AuthoritySubmitter,
	querier infrasri.AuthorityQuerier,
	sm *domainbilling.StateMachine,
	config SRIConfig,
	taxRate string,
	log *logger.Logger,
) *SRIOrchestrator {
	return &SRIOrchestrator{
		docRepo:    docRepo,
		xmlBuilder: xmlBuilder,
		signer:     sriSigner,
		submitter:  submitter,
		querier:    querier,
		sm:         sm,
		config:     config,
		taxRate:    taxRate,
		log:        log,
	}
}

// ProcessAsync dispara el procesamiento en una goroutine independiente.
// docID es el ID del documento ya persistido en estado SENT_TO_AUTHORITY.
func (o *SRIOrchestrator) ProcessAsync(docID string) {
	go o.process(docID)
}

// process es el núcleo síncrono del orquestador. Siempre termina persistiendo
// el estado alcanzado, sea de éxito o de fallo.
func (o *SRIOrchestrator) process(docID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Re-fetch datos frescos (evita data races con la goroutine HTTP).
	doc, err := o.docRepo.GetByID(ctx, docID)
	if err != nil || doc == nil {
		o.log.Error().Str("document_id", docID).Err(err).Msg("sri: documento no encontrado")
		return
	}
	if domainbilling.DocumentStatus(doc.Status) != domainbilling.StatusSentToAuthority {
		o.log.Warn().Str("document_id", docID).Str("status", doc.Status).
			Msg("sri: estado inesperado, se omite el procesamiento")
		return
	}

	lines, err := o.docRepo.GetLinesByDocumentID(ctx, docID)
	if err != nil {
		o.markFailed(ctx, doc, "fetch-lines", err.Error())
		return
	}

	// 1) Construcción del XML del comprobante
	xmlBytes, err := o.xmlBuilder.Build(&infrasri.DocumentBuildContext{
		Document:   doc,
		Lines:      lines,
		Issuer:     o.config.Issuer,
		AccessKey:  doc.AccessKey,
		Sequential: sequentialFromNumber(doc.Number),
		TaxRate:    o.taxRate,
	})
	if err != nil {
		o.markFailed(ctx, doc, "xml-build", err.Error())
		return
	}

	appEnv := strings.ToLower(strings.TrimSpace(o.config.AppEnv))

	// 2) Modo dev: no hay red; se simula el ciclo completo del SRI.
	if appEnv == infrasri.AppEnvDev || appEnv == "" {
		o.log.Info().Str("document_id", docID).Int("xml_bytes", len(xmlBytes)).
			Msg("sri: [DEV] simulando recepción y autorización")
		if err := o.sm.AdvanceTo(doc, domainbilling.StatusAuthorized); err != nil {
			o.markFailed(ctx, doc, "dev-simulate", err.Error())
			return
		}
		// El SRI usa la clave de acceso como número de autorización.
		doc.AuthorizationNumber = doc.AccessKey
		o.persist(ctx, doc)
		return
	}
	if appEnv != infrasri.AppEnvTest && appEnv != infrasri.AppEnvProd {
		o.markFailed(ctx, doc, "config", fmt.Sprintf("SRI_APP_ENV desconocido: %q (usar dev|test|prod)", appEnv))
		return
	}
	if o.submitter == nil || o.querier == nil {
		o.markFailed(ctx, doc, "config", "cliente SOAP no inyectado para entorno "+appEnv)
		return
	}

	// 3) Firma digital XAdES-BES
	cert, err := loadCertificate(o.config)
	if err != nil {
		o.markFailed(ctx, doc, "cert-load", err.Error())
		return
	}
	if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
		o.markFailed(ctx, doc, "cert-load", "certificado vacío: verifica SRI_CERT_PATH y SRI_CERT_PASSWORD")
		return
	}
	signedXML, err := o.signer.Sign(xmlBytes, cert)
	if err != nil {
		o.markFailed(ctx, doc, "xml-sign", err.Error())
		return
	}

	// 4) Recepción (validarComprobante)
	reception, err := o.submitter.SubmitDocument(ctx, signedXML, appEnv)
	if err != nil {
		o.markFailed(ctx, doc, "soap-recepcion", err.Error())
		return
	}
	target, ok := domainbilling.ParseAuthorityStatus(reception.RawState)
	if !ok {
		o.markFailed(ctx, doc, "soap-recepcion",
			fmt.Sprintf("estado de recepción desconocido %q", reception.RawState))
		return
	}
	if err := o.sm.AdvanceTo(doc, target); err != nil {
		o.markFailed(ctx, doc, "transition", err.Error())
		return
	}
	if msg := joinAuthorityMessages(reception.Messages); msg != "" {
		doc.AuthorityMessage = msg
	}
	if target == domainbilling.StatusReturned {
		// DEVUELTA: el comprobante no pasó la validación de recepción.
		o.log.Warn().Str("document_id", docID).Str("authority_message", doc.AuthorityMessage).
			Msg("sri: comprobante devuelto en recepción")
		o.persist(ctx, doc)
		return
	}
	o.persist(ctx, doc)

	// 5) Consulta de autorización por clave de acceso
	auth, err := o.querier.QueryAuthorization(ctx, doc.AccessKey, appEnv)
	if err != nil {
		// Error de red consultando: el estado local queda como está; el
		// sincronizador resolverá en la siguiente consulta.
		o.log.Warn().Str("document_id", docID).Err(err).
			Msg("sri: consulta de autorización fallida, queda pendiente de sincronización")
		return
	}
	authTarget, ok := domainbilling.ParseAuthorityStatus(auth.RawState)
	if !ok {
		o.log.Warn().Str("document_id", docID).Str("raw_state", auth.RawState).
			Msg("sri: estado de autorización desconocido, queda pendiente de sincronización")
		return
	}
	if authTarget != domainbilling.DocumentStatus(doc.Status) {
		if err := o.sm.AdvanceTo(doc, authTarget); err != nil {
			o.markFailed(ctx, doc, "transition", err.Error())
			return
		}
	}
	if auth.AuthorizationNumber != "" {
		doc.AuthorizationNumber = auth.AuthorizationNumber
	}
	if msg := joinAuthorityMessages(auth.Messages); msg != "" {
		doc.AuthorityMessage = msg
	}
	o.persist(ctx, doc)

	o.log.Info().Str("document_id", docID).Str("status", doc.Status).
		Str("authorization_number", doc.AuthorizationNumber).
		Msg("sri: comprobante procesado")
}

// markFailed lleva el documento a FAILED (vía AUTHORITY_ERROR), registra el
// mensaje y persiste. Desde FAILED el documento es elegible para reintento.
func (o *SRIOrchestrator) markFailed(ctx context.Context, doc *entity.FiscalDocument, step, msg string) {
	o.log.Error().Str("document_id", doc.ID).Str("step", step).Str("detail", msg).
		Msg("sri: procesamiento fallido")
	doc.AuthorityMessage = msg
	if err := o.sm.Transition(doc, domainbilling.StatusAuthorityError); err == nil {
		_ = o.sm.Transition(doc, domainbilling.StatusFailed)
	}
	o.persist(ctx, doc)
}

func (o *SRIOrchestrator) persist(ctx context.Context, doc *entity.FiscalDocument) {
	if err := o.docRepo.Update(ctx, doc); err != nil {
		o.log.Error().Str("document_id", doc.ID).Str("status", doc.Status).Err(err).
			Msg("sri: no se pudo persistir el estado del documento")
	}
}

// loadCertificate carga el certificado de firma desde .p12/.pfx o PEM.
func loadCertificate(cfg SRIConfig) (tls.Certificate, error) {
	if cfg.CertPath == "" {
		return tls.Certificate{}, fmt.Errorf("SRI_CERT_PATH no configurado")
	}
	lower := strings.ToLower(cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		return signer.LoadFromP12(cfg.CertPath, cfg.CertPassword)
	}
	return signer.LoadFromPEM(cfg.CertPath, cfg.CertKeyPath)
}
