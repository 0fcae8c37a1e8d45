package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
)

// BillingHandler maneja las peticiones HTTP de emisión y ciclo de vida de
// comprobantes electrónicos.
type BillingHandler struct {
	issueInvoice    *billing.IssueInvoiceUseCase
	issueCreditNote *billing.IssueCreditNoteUseCase
	retry           *billing.RetryUseCase
	status          *billing.StatusUseCase
	stats           *billing.StatsUseCase
	pdf             *billing.PDFUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(
	issueInvoice *billing.IssueInvoiceUseCase,
	issueCreditNote *billing.IssueCreditNoteUseCase,
	retry *billing.RetryUseCase,
	status *billing.StatusUseCase,
	stats *billing.StatsUseCase,
	pdf *billing.PDFUseCase,
) *BillingHandler {
	return &BillingHandler{
		issueInvoice:    issueInvoice,
		issueCreditNote: issueCreditNote,
		retry:           retry,
		status:          status,
		stats:           stats,
		pdf:             pdf,
	}
}

// CreateInvoice emite una factura contra un pedido y la envía al SRI.
// POST /api/invoices
func (h *BillingHandler) CreateInvoice(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	doc, err := h.issueInvoice.IssueInvoice(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// CreateCreditNote emite una nota de crédito contra una factura autorizada.
// POST /api/credit-notes
func (h *BillingHandler) CreateCreditNote(c *fiber.Ctx) error {
	var in dto.CreateCreditNoteRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	doc, err := h.issueCreditNote.IssueCreditNote(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Retry reintenta el envío de un documento fallido.
// POST /api/documents/:id/retry
func (h *BillingHandler) Retry(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	status, err := h.retry.Retry(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(status)
}

// GetByID obtiene el comprobante completo con sus líneas.
// GET /api/documents/:id
func (h *BillingHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	doc, err := h.status.GetDocument(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(doc)
}

// GetStatus devuelve el estado del documento (sincronizado con el SRI cuando
// es posible). El frontend hace polling de este endpoint tras la emisión.
// GET /api/documents/:id/status
func (h *BillingHandler) GetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	status, err := h.status.GetStatus(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(status)
}

// DownloadPDF descarga el RIDE del comprobante.
// GET /api/documents/:id/pdf
func (h *BillingHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdfBytes, filename, err := h.pdf.DownloadDocumentPDF(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// Stats agregados de facturación para el dashboard.
// GET /api/billing/stats
func (h *BillingHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.GetStats(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(stats)
}
