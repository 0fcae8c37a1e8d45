package repository

import (
	"context"
	"time"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// StatusCount conteo de documentos por estado (dashboard).
type StatusCount struct {
	Status string
	Count  int64
}

// DocumentStats agregados de documentos fiscales para el dashboard.
// Solo lectura; no es fuente de invariantes.
type DocumentStats struct {
	CountsByStatus []StatusCount
	SuccessRate    float64 // autorizados / total con estado final
	Recent         []*entity.FiscalDocument
}

// FiscalDocumentRepository define el puerto de persistencia de documentos fiscales.
// Los documentos nunca se eliminan.
type FiscalDocumentRepository interface {
	Create(ctx context.Context, doc *entity.FiscalDocument) error
	CreateLine(ctx context.Context, line *entity.DocumentLine) error
	// Update actualiza los campos mutables del ciclo SRI:
	// status, access_key, authorization_number, authority_message, retry_count, last_retry_at.
	Update(ctx context.Context, doc *entity.FiscalDocument) error
	GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*entity.FiscalDocument, error)
	GetLinesByDocumentID(ctx context.Context, documentID string) ([]*entity.DocumentLine, error)
	// GetStatusFields devuelve solo los campos de estado (consulta ligera para polling).
	GetStatusFields(ctx context.Context, id string) (*entity.FiscalDocument, error)
	// NextSequential reserva el siguiente secuencial para el tipo de documento.
	NextSequential(ctx context.Context, docType entity.DocumentType) (int64, error)
	Stats(ctx context.Context, recentLimit int) (*DocumentStats, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*entity.FiscalDocument, error)
}
