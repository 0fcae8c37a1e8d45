package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

// AuthoritySynchronizer consulta el estado autoritativo de un comprobante en el
// SRI y actualiza el estado local. El estado local es una caché: ante cualquier
// discrepancia gana la respuesta del SRI.
//
// Un error de red NUNCA modifica el estado local: se devuelve envuelto en
// domain.ErrTransientSync y el documento queda tal como estaba.
type AuthoritySynchronizer struct {
	docRepo repository.FiscalDocumentRepository
	querier infrasri.AuthorityQuerier
	sm      *domainbilling.StateMachine
	appEnv  string
	log     *logger.Logger
}

// NewAuthoritySynchronizer construye el sincronizador.
func NewAuthoritySynchronizer(
	docRepo repository.FiscalDocumentRepository,
	querier infrasri.AuthorityQuerier,
	sm *domainbilling.StateMachine,
	appEnv string,
	log *logger.Logger,
) *AuthoritySynchronizer {
	return &AuthoritySynchronizer{
		docRepo: docRepo,
		querier: querier,
		sm:      sm,
		appEnv:  strings.ToLower(strings.TrimSpace(appEnv)),
		log:     log,
	}
}

// Sync consulta la autorización del documento y reconcilia el estado local.
// Devuelve el documento actualizado (o intacto si no hubo cambios).
func (s *AuthoritySynchronizer) Sync(ctx context.Context, docID string) (*entity.FiscalDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}

	// Los terminales no se vuelven a consultar y los documentos sin clave de
	// acceso todavía no existen para el SRI.
	current := domainbilling.DocumentStatus(doc.Status)
	if current.IsTerminal() || doc.AccessKey == "" {
		return doc, nil
	}
	// En dev no hay SRI que consultar.
	if s.appEnv == infrasri.AppEnvDev || s.appEnv == "" || s.querier == nil {
		return doc, nil
	}

	auth, err := s.querier.QueryAuthorization(ctx, doc.AccessKey, s.appEnv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransientSync, err)
	}

	target, ok := domainbilling.ParseAuthorityStatus(auth.RawState)
	if !ok {
		return nil, fmt.Errorf("%w: vocabulario desconocido %q", domain.ErrTransientSync, auth.RawState)
	}
	if target == current {
		return doc, nil
	}
	// FAILED ya registra localmente ese rechazo; no hay nada que reconciliar.
	if current == domainbilling.StatusFailed && target.IsRejection() {
		return doc, nil
	}
	// El SRI puede responder desde caché un estado anterior del camino
	// canónico; el estado local nunca retrocede.
	if regressed(current, target) {
		return doc, nil
	}

	if err := s.sm.AdvanceTo(doc, target); err != nil {
		return nil, err
	}
	if auth.AuthorizationNumber != "" {
		doc.AuthorizationNumber = auth.AuthorizationNumber
	}
	if msg := joinAuthorityMessages(auth.Messages); msg != "" {
		doc.AuthorityMessage = msg
	}

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.log.Info().Str("document_id", doc.ID).
		Str("from", string(current)).Str("to", doc.Status).
		Msg("sri: estado sincronizado con la autoridad")
	return doc, nil
}

// authorityRank posición de cada estado dentro del camino canónico del SRI.
// Los estados puramente locales (DRAFT, FAILED...) no tienen rango.
var authorityRank = map[domainbilling.DocumentStatus]int{
	domainbilling.StatusSentToAuthority: 0,
	domainbilling.StatusPending:         1,
	domainbilling.StatusProcessing:      2,
	domainbilling.StatusReceived:        3,
	domainbilling.StatusAuthorized:      4,
	domainbilling.StatusRejected:        4,
	domainbilling.StatusNotAuthorized:   4,
	domainbilling.StatusReturned:        4,
}

func regressed(current, target domainbilling.DocumentStatus) bool {
	cr, cok := authorityRank[current]
	tr, tok := authorityRank[target]
	if !cok || !tok {
		return false
	}
	return tr <= cr
}
