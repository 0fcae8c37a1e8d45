package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/application/pricing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IssueInvoice    *billing.IssueInvoiceUseCase
	IssueCreditNote *billing.IssueCreditNoteUseCase
	Retry           *billing.RetryUseCase
	Status          *billing.StatusUseCase
	Stats           *billing.StatsUseCase
	PDF             *billing.PDFUseCase
	Checkout        *pricing.CheckoutUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	billingHandler := NewBillingHandler(
		deps.IssueInvoice, deps.IssueCreditNote, deps.Retry,
		deps.Status, deps.Stats, deps.PDF,
	)
	pricingHandler := NewPricingHandler(deps.Checkout)

	// Checkout y reparto de ingresos
	api.Post("/checkout/verify", pricingHandler.VerifyCheckout)
	api.Get("/orders/:id/revenue-split", pricingHandler.GetRevenueSplit)

	// Emisión de comprobantes
	api.Post("/invoices", billingHandler.CreateInvoice)
	api.Post("/credit-notes", billingHandler.CreateCreditNote)

	// Ciclo de vida del documento
	documents := api.Group("/documents")
	documents.Get("/:id", billingHandler.GetByID)
	documents.Get("/:id/status", billingHandler.GetStatus)
	documents.Get("/:id/pdf", billingHandler.DownloadPDF)
	documents.Post("/:id/retry", billingHandler.Retry)

	// Dashboard
	api.Get("/billing/stats", billingHandler.Stats)
}
