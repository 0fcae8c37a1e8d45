package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
	pkgsri "github.com/kevinvillajim/bcommerce-billing/pkg/sri"
)

// IssueCreditNoteUseCase emite una nota de crédito contra una factura ya
// autorizada. Toda la validación (estructural y de precondición del sustento)
// ocurre antes de cualquier llamada de red o escritura.
type IssueCreditNoteUseCase struct {
	txRunner     BillingTxRunner
	docRepo      repository.FiscalDocumentRepository
	validator    *domainbilling.CreditNoteValidator
	sm           *domainbilling.StateMachine
	orchestrator *SRIOrchestrator
	config       SRIConfig
	taxRate      decimal.Decimal
	log          *logger.Logger
}

// NewIssueCreditNoteUseCase construye el caso de uso.
func NewIssueCreditNoteUseCase(
	txRunner BillingTxRunner,
	docRepo repository.FiscalDocumentRepository,
	validator *domainbilling.CreditNoteValidator,
	sm *domainbilling.StateMachine,
	orchestrator *SRIOrchestrator,
	config SRIConfig,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *IssueCreditNoteUseCase {
	return &IssueCreditNoteUseCase{
		txRunner:     txRunner,
		docRepo:      docRepo,
		validator:    validator,
		sm:           sm,
		orchestrator: orchestrator,
		config:       config,
		taxRate:      taxRate,
		log:          log,
	}
}

// IssueCreditNote valida y emite la nota de crédito. Si la factura sustento no
// está AUTHORIZED, falla sin escribir nada y sin tocar la red.
func (uc *IssueCreditNoteUseCase) IssueCreditNote(ctx context.Context, in dto.CreateCreditNoteRequest) (*dto.DocumentResponse, error) {
	invoice, err := uc.docRepo.GetByID(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if invoice.IsCreditNote() {
		return nil, fmt.Errorf("%w: el documento sustento debe ser una factura", domain.ErrInvalidInput)
	}

	now := time.Now()

	// 1) Validación estructural, en orden fijo de reglas.
	req := domainbilling.CreditNoteRequest{
		IssueDate:           now,
		Reason:              in.Reason,
		ModifiedDocType:     pkgsri.DocTypeFactura,
		ModifiedDocNumber:   invoice.Number,
		ModifiedDocDate:     invoice.IssueDate,
		BuyerIdentification: invoice.Buyer.Identification,
		BuyerIDType:         invoice.Buyer.IdentificationType,
		BuyerName:           invoice.Buyer.Name,
		Lines:               toValidatorLines(in.Lines),
	}
	if err := uc.validator.Validate(req); err != nil {
		return nil, err
	}

	subtotal, taxAmount, total := creditNoteTotals(in.Lines, uc.taxRate)
	note := &entity.FiscalDocument{
		ID:        uuid.New().String(),
		OrderID:   invoice.OrderID,
		Type:      entity.DocumentTypeCreditNote,
		IssueDate: now,
		Buyer:     invoice.Buyer,
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     total,
		Status:    string(domainbilling.StatusDraft),
		ModifiedDocument: &entity.ModifiedDocumentRef{
			DocType:   pkgsri.DocTypeFactura,
			Number:    invoice.Number,
			IssueDate: invoice.IssueDate,
		},
		Reason:    in.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 2) Precondición del grafo: el sustento debe estar AUTHORIZED. Se verifica
	// antes de reservar secuencial y antes de cualquier llamada al SRI.
	if err := uc.sm.SubmitCreditNote(note, invoice); err != nil {
		return nil, err
	}

	noteLines := toDocumentLines(note.ID, in.Lines)
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.OrderRepository,
		docRepo repository.FiscalDocumentRepository,
	) error {
		seq, err := docRepo.NextSequential(ctx, entity.DocumentTypeCreditNote)
		if err != nil {
			return fmt.Errorf("billing: reservar secuencial: %w", err)
		}
		sequential := fmt.Sprintf("%09d", seq)
		note.Number = fmt.Sprintf("%s-%s-%s", uc.config.Issuer.Establishment, uc.config.Issuer.EmissionPoint, sequential)

		accessKey, err := pkgsri.BuildAccessKey(pkgsri.AccessKeyParams{
			IssueDate:     note.IssueDate,
			DocType:       pkgsri.DocTypeNotaCredito,
			RUC:           uc.config.Issuer.RUC,
			Environment:   uc.config.Issuer.Environment,
			Establishment: uc.config.Issuer.Establishment,
			EmissionPoint: uc.config.Issuer.EmissionPoint,
			Sequential:    sequential,
			NumericCode:   numericCode(),
		})
		if err != nil {
			return fmt.Errorf("billing: clave de acceso: %w", err)
		}
		note.AccessKey = accessKey

		if err := docRepo.Create(ctx, note); err != nil {
			return err
		}
		for _, line := range noteLines {
			if err := docRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.orchestrator.ProcessAsync(note.ID)

	uc.log.Info().Str("document_id", note.ID).Str("invoice_id", invoice.ID).
		Str("access_key", note.AccessKey).Msg("billing: nota de crédito emitida, enviada al SRI")
	return toDocumentResponse(note, noteLines), nil
}

func toValidatorLines(in []dto.DocumentLineRequest) []domainbilling.CreditNoteLine {
	lines := make([]domainbilling.CreditNoteLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, domainbilling.CreditNoteLine{
			Code:        l.Code,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			TaxCode:     pkgsri.IVARate15,
		})
	}
	return lines
}

func creditNoteTotals(lines []dto.DocumentLineRequest, taxRate decimal.Decimal) (subtotal, taxAmount, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice).Sub(l.Discount))
	}
	taxAmount = subtotal.Mul(taxRate)
	total = subtotal.Add(taxAmount)
	return subtotal, taxAmount, total
}
