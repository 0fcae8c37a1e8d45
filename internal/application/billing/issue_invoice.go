package billing

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
	pkgsri "github.com/kevinvillajim/bcommerce-billing/pkg/sri"
)

// IssueInvoiceUseCase emite una factura electrónica contra un pedido pagado:
// reserva secuencial y clave de acceso, persiste el comprobante y dispara el
// procesamiento SRI asíncrono.
type IssueInvoiceUseCase struct {
	txRunner     BillingTxRunner
	orderRepo    repository.OrderRepository
	docRepo      repository.FiscalDocumentRepository
	engine       *pricing.ReconciliationEngine
	sm           *domainbilling.StateMachine
	orchestrator *SRIOrchestrator
	config       SRIConfig
	taxRate      decimal.Decimal
	log          *logger.Logger
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(
	txRunner BillingTxRunner,
	orderRepo repository.OrderRepository,
	docRepo repository.FiscalDocumentRepository,
	engine *pricing.ReconciliationEngine,
	sm *domainbilling.StateMachine,
	orchestrator *SRIOrchestrator,
	config SRIConfig,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		docRepo:      docRepo,
		engine:       engine,
		sm:           sm,
		orchestrator: orchestrator,
		config:       config,
		taxRate:      taxRate,
		log:          log,
	}
}

// IssueInvoice valida el pedido, reconcilia sus totales, crea la factura y la
// envía al SRI de forma asíncrona. La respuesta vuelve de inmediato con el
// documento en SENT_TO_AUTHORITY; el frontend hace polling del estado.
func (uc *IssueInvoiceUseCase) IssueInvoice(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.DocumentResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	orderLines, err := uc.orderRepo.GetLinesByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	for _, l := range orderLines {
		order.Lines = append(order.Lines, *l)
	}

	// Los totales del pedido nunca se toman como vienen: se recomputan y, si
	// divergen del reportado más allá de la tolerancia, se corrigen con aviso.
	reconciled, warning := uc.engine.Reconcile(*order)
	if warning != nil {
		uc.log.Warn().Str("order_id", warning.OrderID).
			Str("reported", warning.Reported.String()).
			Str("recomputed", warning.Recomputed.String()).
			Str("difference", warning.Difference.String()).
			Msg("billing: total del pedido corregido antes de facturar")
		reconciled.UpdatedAt = time.Now()
		if err := uc.orderRepo.UpdateTotals(ctx, &reconciled); err != nil {
			return nil, fmt.Errorf("billing: persistir corrección de totales: %w", err)
		}
	}

	now := time.Now()
	subtotal, taxAmount, total := uc.totalsFromLines(in.Lines)

	doc := &entity.FiscalDocument{
		ID:        uuid.New().String(),
		OrderID:   in.OrderID,
		Type:      entity.DocumentTypeInvoice,
		IssueDate: now,
		Buyer:     toBuyer(in.Buyer),
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     total,
		Status:    string(domainbilling.StatusDraft),
		CreatedAt: now,
		UpdatedAt: now,
	}
	docLines := toDocumentLines(doc.ID, in.Lines)

	// Secuencial, número y clave de acceso se reservan dentro de la misma
	// transacción que persiste el comprobante.
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.OrderRepository,
		docRepo repository.FiscalDocumentRepository,
	) error {
		seq, err := docRepo.NextSequential(ctx, entity.DocumentTypeInvoice)
		if err != nil {
			return fmt.Errorf("billing: reservar secuencial: %w", err)
		}
		sequential := fmt.Sprintf("%09d", seq)
		doc.Number = fmt.Sprintf("%s-%s-%s", uc.config.Issuer.Establishment, uc.config.Issuer.EmissionPoint, sequential)

		accessKey, err := pkgsri.BuildAccessKey(pkgsri.AccessKeyParams{
			IssueDate:     doc.IssueDate,
			DocType:       pkgsri.DocTypeFactura,
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
		doc.AccessKey = accessKey

		if err := docRepo.Create(ctx, doc); err != nil {
			return err
		}
		for _, line := range docLines {
			if err := docRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// DRAFT → SENT_TO_AUTHORITY y disparo asíncrono del ciclo SRI.
	if err := uc.sm.Transition(doc, domainbilling.StatusSentToAuthority); err != nil {
		return nil, err
	}
	if err := uc.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	uc.orchestrator.ProcessAsync(doc.ID)

	uc.log.Info().Str("document_id", doc.ID).Str("order_id", doc.OrderID).
		Str("access_key", doc.AccessKey).Msg("billing: factura emitida, enviada al SRI")
	return toDocumentResponse(doc, docLines), nil
}

// totalsFromLines recomputa subtotal, impuesto y total desde las líneas.
func (uc *IssueInvoiceUseCase) totalsFromLines(lines []dto.DocumentLineRequest) (subtotal, taxAmount, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice).Sub(l.Discount))
	}
	taxAmount = subtotal.Mul(uc.taxRate)
	total = subtotal.Add(taxAmount)
	return subtotal, taxAmount, total
}

// ── helpers compartidos por los casos de uso de emisión ───────────────────────

func toBuyer(in dto.BuyerRequest) entity.Buyer {
	return entity.Buyer{
		Identification:     in.Identification,
		IdentificationType: in.IdentificationType,
		Name:               in.Name,
		Address:            in.Address,
		Email:              in.Email,
		Phone:              in.Phone,
	}
}

func toDocumentLines(docID string, in []dto.DocumentLineRequest) []*entity.DocumentLine {
	lines := make([]*entity.DocumentLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, &entity.DocumentLine{
			ID:          uuid.New().String(),
			DocumentID:  docID,
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

func toDocumentResponse(doc *entity.FiscalDocument, lines []*entity.DocumentLine) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:                  doc.ID,
		OrderID:             doc.OrderID,
		Type:                string(doc.Type),
		Number:              doc.Number,
		IssueDate:           doc.IssueDate.Format("2006-01-02"),
		BuyerName:           doc.Buyer.Name,
		BuyerIdentification: doc.Buyer.Identification,
		Subtotal:            doc.Subtotal,
		TaxAmount:           doc.TaxAmount,
		Total:               doc.Total,
		Status:              doc.Status,
		AccessKey:           doc.AccessKey,
		AuthorizationNumber: doc.AuthorizationNumber,
		AuthorityMessage:    doc.AuthorityMessage,
		RetryCount:          doc.RetryCount,
		Reason:              doc.Reason,
		Lines:               make([]dto.DocumentLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.DocumentLineResponse{
			Code:        l.Code,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Subtotal:    l.LineSubtotal(),
		})
	}
	return resp
}

// numericCode genera el código numérico de seguridad de 8 dígitos de la clave
// de acceso. No es secreto; solo debe variar entre comprobantes.
func numericCode() string {
	return fmt.Sprintf("%08d", rand.Intn(100000000))
}
