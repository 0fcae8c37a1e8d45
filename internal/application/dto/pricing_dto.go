package dto

import "github.com/shopspring/decimal"

// OrderLineRequest línea de pedido en la verificación de checkout.
type OrderLineRequest struct {
	ProductCode string          `json:"product_code" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
}

// CheckoutVerifyRequest body para POST /api/checkout/verify.
// reported_total es el total que calculó el frontend; el backend lo recomputa
// desde las líneas y lo corrige si diverge más allá de la tolerancia.
type CheckoutVerifyRequest struct {
	OrderID       string             `json:"order_id" validate:"required"`
	Lines         []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	ReportedTotal decimal.Decimal    `json:"reported_total" validate:"required"`
}

// CheckoutVerifyResponse desglose canónico del pedido.
type CheckoutVerifyResponse struct {
	OrderID   string          `json:"order_id"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
	Corrected bool            `json:"corrected"` // true si el total reportado divergió
}

// RevenueSplitResponse reparto de ingresos para GET /api/orders/:id/revenue-split.
type RevenueSplitResponse struct {
	OrderID        string          `json:"order_id"`
	SellerSubtotal decimal.Decimal `json:"seller_subtotal"`
	SellerDiscount decimal.Decimal `json:"seller_discount"`
	ShippingIncome decimal.Decimal `json:"shipping_income"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	LogisticsFee   decimal.Decimal `json:"logistics_fee"`
	SellerPayout   decimal.Decimal `json:"seller_payout"`
}
