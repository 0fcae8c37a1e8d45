package billing

import (
	"context"
	"errors"
	"time"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

// RetryUseCase reintenta el envío de un documento fallido. Antes de consumir
// un intento re-valida el estado contra el SRI: si el documento ya fue
// autorizado en la autoridad, el reintento sobra y no se consume cupo.
type RetryUseCase struct {
	docRepo      repository.FiscalDocumentRepository
	policy       *domainbilling.RetryPolicy
	sm           *domainbilling.StateMachine
	synchronizer *AuthoritySynchronizer
	orchestrator *SRIOrchestrator
	log          *logger.Logger
}

// NewRetryUseCase construye el caso de uso.
func NewRetryUseCase(
	docRepo repository.FiscalDocumentRepository,
	policy *domainbilling.RetryPolicy,
	sm *domainbilling.StateMachine,
	synchronizer *AuthoritySynchronizer,
	orchestrator *SRIOrchestrator,
	log *logger.Logger,
) *RetryUseCase {
	return &RetryUseCase{
		docRepo:      docRepo,
		policy:       policy,
		sm:           sm,
		synchronizer: synchronizer,
		orchestrator: orchestrator,
		log:          log,
	}
}

// Retry re-valida, consume un intento y relanza el procesamiento SRI.
func (uc *RetryUseCase) Retry(ctx context.Context, docID string) (*dto.DocumentStatusDTO, error) {
	doc, err := uc.synchronizer.Sync(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrTransientSync) {
			// El SRI no responde: seguimos con el estado local, el reintento
			// de envío es justamente para esos casos.
			doc, err = uc.docRepo.GetByID(ctx, docID)
			if err != nil {
				return nil, err
			}
			if doc == nil {
				return nil, domain.ErrNotFound
			}
		} else {
			return nil, err
		}
	}

	status := domainbilling.DocumentStatus(doc.Status)
	if status == domainbilling.StatusAuthorized {
		// La sincronización resolvió el documento: no se consume intento.
		uc.log.Info().Str("document_id", doc.ID).
			Msg("billing: el documento ya está autorizado, reintento innecesario")
		return toStatusDTO(doc), nil
	}

	// Los estados de rechazo son elegibles para reintento vía FAILED.
	if status.IsRejection() {
		if err := uc.sm.Transition(doc, domainbilling.StatusFailed); err != nil {
			return nil, err
		}
	}

	if err := uc.policy.RecordAttempt(doc, uc.sm, time.Now()); err != nil {
		// Agotado: RecordAttempt ya dejó el documento en DEFINITIVELY_FAILED.
		if errors.Is(err, domain.ErrRetryExhausted) {
			if uerr := uc.docRepo.Update(ctx, doc); uerr != nil {
				return nil, uerr
			}
		}
		return nil, err
	}
	if err := uc.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	uc.orchestrator.ProcessAsync(doc.ID)

	uc.log.Info().Str("document_id", doc.ID).Int("retry_count", doc.RetryCount).
		Int("max_retries", uc.policy.MaxRetries()).
		Msg("billing: reintento de envío disparado")
	return toStatusDTO(doc), nil
}

func toStatusDTO(doc *entity.FiscalDocument) *dto.DocumentStatusDTO {
	return &dto.DocumentStatusDTO{
		ID:                  doc.ID,
		Status:              doc.Status,
		AccessKey:           doc.AccessKey,
		AuthorizationNumber: doc.AuthorizationNumber,
		AuthorityMessage:    doc.AuthorityMessage,
		RetryCount:          doc.RetryCount,
	}
}
