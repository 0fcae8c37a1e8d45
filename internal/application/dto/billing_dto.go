package dto

import "github.com/shopspring/decimal"

// BuyerRequest datos del comprador en solicitudes de emisión.
// identification_type según el catálogo SRI: 04 RUC, 05 cédula, 06 pasaporte,
// 07 consumidor final, 08 identificación del exterior.
type BuyerRequest struct {
	Identification     string `json:"identification" validate:"required"`
	IdentificationType string `json:"identification_type" validate:"required,oneof=04 05 06 07 08"`
	Name               string `json:"name" validate:"required"`
	Address            string `json:"address,omitempty"`
	Email              string `json:"email,omitempty" validate:"omitempty,email"`
	Phone              string `json:"phone,omitempty"`
}

// DocumentLineRequest línea de un comprobante en solicitudes de emisión.
type DocumentLineRequest struct {
	Code        string          `json:"code" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Discount    decimal.Decimal `json:"discount"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// La factura se emite contra un pedido ya pagado; los totales se recalculan
// desde las líneas, nunca se confía en montos del cliente.
type CreateInvoiceRequest struct {
	OrderID string                `json:"order_id" validate:"required"`
	Buyer   BuyerRequest          `json:"buyer" validate:"required"`
	Lines   []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateCreditNoteRequest body para POST /api/credit-notes.
// El comprobante sustento (la factura) se referencia por su ID local y debe
// estar AUTHORIZED antes de enviar la nota al SRI.
type CreateCreditNoteRequest struct {
	InvoiceID string                `json:"invoice_id" validate:"required"`
	Reason    string                `json:"reason" validate:"required"`
	Lines     []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DocumentLineResponse línea de detalle en la respuesta.
type DocumentLineResponse struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// DocumentResponse comprobante con detalle completo.
type DocumentResponse struct {
	ID                  string                 `json:"id"`
	OrderID             string                 `json:"order_id"`
	Type                string                 `json:"type"` // INVOICE | CREDIT_NOTE
	Number              string                 `json:"number"`
	IssueDate           string                 `json:"issue_date"`
	BuyerName           string                 `json:"buyer_name"`
	BuyerIdentification string                 `json:"buyer_identification"`
	Subtotal            decimal.Decimal        `json:"subtotal"`
	TaxAmount           decimal.Decimal        `json:"tax_amount"`
	Total               decimal.Decimal        `json:"total"`
	Status              string                 `json:"status"`
	AccessKey           string                 `json:"access_key,omitempty"`
	AuthorizationNumber string                 `json:"authorization_number,omitempty"`
	AuthorityMessage    string                 `json:"authority_message,omitempty"`
	RetryCount          int                    `json:"retry_count"`
	Reason              string                 `json:"reason,omitempty"` // solo notas de crédito
	Lines               []DocumentLineResponse `json:"lines"`
}

// DocumentStatusDTO respuesta ligera para el endpoint de polling
// GET /api/documents/:id/status. El frontend consulta periódicamente hasta
// que status sea AUTHORIZED o DEFINITIVELY_FAILED.
type DocumentStatusDTO struct {
	ID                  string `json:"id"`
	Status              string `json:"status"`
	AccessKey           string `json:"access_key,omitempty"`
	AuthorizationNumber string `json:"authorization_number,omitempty"`
	AuthorityMessage    string `json:"authority_message,omitempty"` // mensajes de rechazo del SRI (vacío si OK)
	RetryCount          int    `json:"retry_count"`
}

// StatusCountDTO conteo por estado para el dashboard.
type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// BillingStatsResponse agregados para GET /api/billing/stats.
type BillingStatsResponse struct {
	CountsByStatus []StatusCountDTO    `json:"counts_by_status"`
	SuccessRate    float64             `json:"success_rate"` // autorizados / finalizados
	Recent         []DocumentStatusDTO `json:"recent"`
}
