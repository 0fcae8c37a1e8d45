package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// FeeSchedule tarifas de comisión aplicadas al subtotal del vendedor.
// Llegan por configuración; nunca se aplican sobre envío ni impuestos.
type FeeSchedule struct {
	PlatformRate  decimal.Decimal // ej: 0.10
	LogisticsRate decimal.Decimal // ej: 0.04
}

// SplitCalculator deriva el reparto de ingresos de un pedido.
//
// El lado vendedor es independiente del total que paga el cliente: el descuento
// por cupón lo absorbe íntegramente la plataforma, así que el subtotal del
// vendedor solo refleja descuentos de vendedor/volumen. Identidad documental
// (no verificada en runtime):
//
//	customerTotal == sellerSubtotal + couponDiscountAbsorbedByPlatform + taxAmount
type SplitCalculator struct{}

// NewSplitCalculator crea el calculador.
func NewSplitCalculator() *SplitCalculator {
	return &SplitCalculator{}
}

// Split deriva el desglose. Para cualquier tabla de comisiones se cumple:
//
//	sellerPayout = sellerSubtotal + shippingIncome − platformFee − logisticsFee
func (c *SplitCalculator) Split(order entity.Order, fees FeeSchedule) entity.RevenueSplit {
	sellerSubtotal := decimal.Zero
	for _, line := range order.Lines {
		sellerSubtotal = sellerSubtotal.Add(line.LineTotal())
	}

	platformFee := sellerSubtotal.Mul(fees.PlatformRate)
	logisticsFee := sellerSubtotal.Mul(fees.LogisticsRate)

	return entity.RevenueSplit{
		OrderID:        order.ID,
		SellerSubtotal: sellerSubtotal,
		SellerDiscount: order.VolumeDiscount,
		ShippingIncome: order.ShippingCost,
		PlatformFee:    platformFee,
		LogisticsFee:   logisticsFee,
		SellerPayout:   sellerSubtotal.Add(order.ShippingCost).Sub(platformFee).Sub(logisticsFee),
	}
}
