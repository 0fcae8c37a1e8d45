package entity

import "github.com/shopspring/decimal"

// RevenueSplit desglose de ingresos de un pedido entre vendedor y plataforma.
// Se deriva bajo demanda a partir del pedido y la tabla de comisiones;
// nunca se persiste como fuente de verdad.
type RevenueSplit struct {
	OrderID         string
	SellerSubtotal  decimal.Decimal // Subtotal del vendedor (neto de descuentos de vendedor/volumen)
	SellerDiscount  decimal.Decimal // Descuento por volumen asumido por el vendedor
	ShippingIncome  decimal.Decimal
	PlatformFee     decimal.Decimal // Comisión de plataforma (porcentaje del subtotal del vendedor)
	LogisticsFee    decimal.Decimal // Comisión logística (porcentaje del subtotal del vendedor)
	SellerPayout    decimal.Decimal // SellerSubtotal + ShippingIncome − PlatformFee − LogisticsFee
}
