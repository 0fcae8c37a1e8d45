package billing

import (
	"context"
	"fmt"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
)

// PDFUseCase genera el RIDE (representación impresa) de un comprobante.
// Solo se permite si el documento ya tiene clave de acceso (no está en DRAFT).
type PDFUseCase struct {
	docRepo   repository.FiscalDocumentRepository
	generator DocumentPDFGenerator
	config    SRIConfig
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	docRepo repository.FiscalDocumentRepository,
	generator DocumentPDFGenerator,
	config SRIConfig,
) *PDFUseCase {
	return &PDFUseCase{docRepo: docRepo, generator: generator, config: config}
}

// DownloadDocumentPDF recupera el comprobante, verifica que ya salió de DRAFT
// y genera el RIDE.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si el documento no existe.
//   - domain.ErrInvalidInput    si el documento sigue en DRAFT (sin clave de acceso).
func (uc *PDFUseCase) DownloadDocumentPDF(ctx context.Context, docID string) (pdfBytes []byte, filename string, err error) {
	doc, err := uc.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener documento: %w", err)
	}
	if doc == nil {
		return nil, "", domain.ErrNotFound
	}

	if domainbilling.DocumentStatus(doc.Status) == domainbilling.StatusDraft || doc.AccessKey == "" {
		return nil, "", fmt.Errorf("%w: el documento está en estado %s, espere a que tenga clave de acceso antes de descargar el RIDE",
			domain.ErrInvalidInput, doc.Status)
	}

	lines, err := uc.docRepo.GetLinesByDocumentID(ctx, docID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateDocumentPDF(ctx, doc, lines, uc.config.Issuer)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	prefix := "factura"
	if doc.Type == entity.DocumentTypeCreditNote {
		prefix = "nota_credito"
	}
	filename = fmt.Sprintf("%s_%s.pdf", prefix, doc.Number)
	return pdfBytes, filename, nil
}
