package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order representa un pedido del marketplace al momento del checkout.
//
// Los precios unitarios de las líneas ya vienen netos de descuentos de vendedor
// y por volumen; el descuento por cupón es un total aparte y lo absorbe la
// plataforma, nunca el vendedor.
type Order struct {
	ID             string
	SellerID       string
	BuyerID        string
	Lines          []OrderLine
	ShippingCost   decimal.Decimal
	CouponDiscount decimal.Decimal // Total de descuento por cupón (absorbido por la plataforma)
	VolumeDiscount decimal.Decimal // Total de descuento por volumen (ya reflejado en los unitarios)
	TaxRate        decimal.Decimal // Tarifa registrada al crear el pedido (auditoría)
	ReportedTotal  decimal.Decimal // Total que reportó el cliente/checkout; se reconcilia en lectura
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderLine una línea del pedido. UnitPrice ya es neto de descuentos de vendedor/volumen.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// LineTotal cantidad × precio unitario.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
