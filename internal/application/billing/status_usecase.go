package billing

import (
	"context"
	"errors"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

// StatusUseCase atiende el polling de estado del frontend. En cada consulta
// intenta sincronizar con el SRI; si el SRI no responde, devuelve el estado
// local sin modificarlo.
type StatusUseCase struct {
	docRepo      repository.FiscalDocumentRepository
	synchronizer *AuthoritySynchronizer
	log          *logger.Logger
}

// NewStatusUseCase construye el caso de uso.
func NewStatusUseCase(
	docRepo repository.FiscalDocumentRepository,
	synchronizer *AuthoritySynchronizer,
	log *logger.Logger,
) *StatusUseCase {
	return &StatusUseCase{docRepo: docRepo, synchronizer: synchronizer, log: log}
}

// GetStatus devuelve el estado actual del documento, sincronizado con el SRI
// cuando es posible.
func (uc *StatusUseCase) GetStatus(ctx context.Context, docID string) (*dto.DocumentStatusDTO, error) {
	doc, err := uc.synchronizer.Sync(ctx, docID)
	if err != nil {
		if !errors.Is(err, domain.ErrTransientSync) {
			return nil, err
		}
		uc.log.Warn().Str("document_id", docID).Err(err).
			Msg("billing: SRI no disponible, se responde el estado local")
		doc, err = uc.docRepo.GetStatusFields(ctx, docID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, domain.ErrNotFound
		}
	}
	return toStatusDTO(doc), nil
}

// GetDocument devuelve el comprobante completo con sus líneas.
func (uc *StatusUseCase) GetDocument(ctx context.Context, docID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.docRepo.GetLinesByDocumentID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc, lines), nil
}
