package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
)

// Las comisiones se aplican solo sobre el subtotal del vendedor; el envío entra
// íntegro al pago y el descuento por cupón lo absorbe la plataforma.

func defaultFees() pricing.FeeSchedule {
	return pricing.FeeSchedule{
		PlatformRate:  decimal.NewFromFloat(0.10),
		LogisticsRate: decimal.NewFromFloat(0.04),
	}
}

func TestSplit_DesgloseBasico(t *testing.T) {
	calc := pricing.NewSplitCalculator()
	order := entity.Order{
		ID: "order-7",
		Lines: []entity.OrderLine{
			{Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromFloat(50.00)}, // 200.00
		},
		ShippingCost: decimal.NewFromFloat(8.50),
	}

	split := calc.Split(order, defaultFees())

	assert.Equal(t, "order-7", split.OrderID)
	assert.True(t, split.SellerSubtotal.Equal(decimal.NewFromFloat(200.00)), "subtotal vendedor %s", split.SellerSubtotal)
	assert.True(t, split.PlatformFee.Equal(decimal.NewFromFloat(20.00)), "comisión plataforma 10%% de 200, se obtuvo %s", split.PlatformFee)
	assert.True(t, split.LogisticsFee.Equal(decimal.NewFromFloat(8.00)), "comisión logística 4%% de 200, se obtuvo %s", split.LogisticsFee)
	assert.True(t, split.ShippingIncome.Equal(decimal.NewFromFloat(8.50)))
	// 200 + 8.50 − 20 − 8 = 180.50
	assert.True(t, split.SellerPayout.Equal(decimal.NewFromFloat(180.50)), "pago al vendedor %s", split.SellerPayout)
}

func TestSplit_ComisionesNoTocanElEnvio(t *testing.T) {
	calc := pricing.NewSplitCalculator()
	base := entity.Order{
		Lines: []entity.OrderLine{
			{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(100.00)},
		},
	}
	withShipping := base
	withShipping.ShippingCost = decimal.NewFromFloat(25.00)

	a := calc.Split(base, defaultFees())
	b := calc.Split(withShipping, defaultFees())

	assert.True(t, a.PlatformFee.Equal(b.PlatformFee), "El envío no altera la comisión de plataforma")
	assert.True(t, a.LogisticsFee.Equal(b.LogisticsFee), "El envío no altera la comisión logística")
	assert.True(t, b.SellerPayout.Sub(a.SellerPayout).Equal(decimal.NewFromFloat(25.00)), "El envío entra íntegro al pago")
}

func TestSplit_CuponNoReduceElLadoVendedor(t *testing.T) {
	calc := pricing.NewSplitCalculator()
	order := entity.Order{
		Lines: []entity.OrderLine{
			{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(75.00)}, // 150.00
		},
		CouponDiscount: decimal.NewFromFloat(30.00), // lo absorbe la plataforma
	}

	split := calc.Split(order, defaultFees())

	assert.True(t, split.SellerSubtotal.Equal(decimal.NewFromFloat(150.00)), "El cupón no descuenta al vendedor")
	assert.True(t, split.SellerPayout.Equal(decimal.NewFromFloat(129.00)), "150 − 15 − 6 = 129, se obtuvo %s", split.SellerPayout)
}

func TestSplit_IdentidadDePagoParaCualquierTarifa(t *testing.T) {
	calc := pricing.NewSplitCalculator()
	order := entity.Order{
		Lines: []entity.OrderLine{
			{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromFloat(33.33)},
		},
		ShippingCost: decimal.NewFromFloat(5.00),
	}

	for _, fees := range []pricing.FeeSchedule{
		defaultFees(),
		{PlatformRate: decimal.Zero, LogisticsRate: decimal.Zero},
		{PlatformRate: decimal.NewFromFloat(0.25), LogisticsRate: decimal.NewFromFloat(0.07)},
	} {
		split := calc.Split(order, fees)
		expected := split.SellerSubtotal.Add(split.ShippingIncome).Sub(split.PlatformFee).Sub(split.LogisticsFee)
		assert.True(t, split.SellerPayout.Equal(expected),
			"sellerPayout = subtotal + envío − comisiones debe cumplirse con tarifa %s/%s",
			fees.PlatformRate, fees.LogisticsRate)
	}
}

func TestSplit_PedidoSinLineas(t *testing.T) {
	calc := pricing.NewSplitCalculator()
	split := calc.Split(entity.Order{ID: "order-empty"}, defaultFees())

	assert.True(t, split.SellerSubtotal.IsZero())
	assert.True(t, split.PlatformFee.IsZero())
	assert.True(t, split.LogisticsFee.IsZero())
	assert.True(t, split.SellerPayout.IsZero())
}
