package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
)

// Escenarios de referencia: subtotal 100.00 con IVA 15% recompone 115.00.
// Un reportado de 115.0006 con tolerancia 0.001 se acepta; uno de 110.00
// (obsoleto) se corrige a 115.00 con warning de auditoría.

func newEngine(t *testing.T) *pricing.ReconciliationEngine {
	t.Helper()
	cmp := mustComparator(t, "0.001")
	return pricing.NewReconciliationEngine(decimal.NewFromFloat(0.15), cmp)
}

func orderWithSubtotal100(reported string) entity.Order {
	rep, _ := decimal.NewFromString(reported)
	return entity.Order{
		ID: "order-1",
		Lines: []entity.OrderLine{
			{ProductCode: "SKU-1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(25.00)},
			{ProductCode: "SKU-2", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(50.00)},
		},
		ReportedTotal: rep,
	}
}

func TestRecomputeTotals_SubtotalImpuestoTotal(t *testing.T) {
	engine := newEngine(t)
	totals := engine.RecomputeTotals(orderWithSubtotal100("115.00"))

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromFloat(100.00)), "Subtotal = Σ(cantidad × unitario), se obtuvo %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromFloat(15.00)), "Impuesto = subtotal × 0.15, se obtuvo %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(decimal.NewFromFloat(115.00)), "Total = subtotal + impuesto, se obtuvo %s", totals.Total)
}

func TestRecomputeTotals_TotalNuncaMenorQueSubtotal(t *testing.T) {
	engine := newEngine(t)
	for _, order := range []entity.Order{
		orderWithSubtotal100("0"),
		{Lines: []entity.OrderLine{{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromFloat(0.01)}}},
		{},
	} {
		totals := engine.RecomputeTotals(order)
		assert.True(t, totals.Total.GreaterThanOrEqual(totals.Subtotal),
			"Con líneas no negativas el total (%s) nunca es menor que el subtotal (%s)", totals.Total, totals.Subtotal)
	}
}

func TestReconcile_DentroDeToleranciaNoCorrige(t *testing.T) {
	engine := newEngine(t)
	order := orderWithSubtotal100("115.0006")

	reconciled, warning := engine.Reconcile(order)

	assert.Nil(t, warning, "115.0006 vs 115.00 con tolerancia 0.001 no debe corregirse")
	assert.True(t, reconciled.Total.Equal(order.ReportedTotal), "El total reportado se respeta dentro de la tolerancia")
}

func TestReconcile_FueraDeToleranciaCorrigeYAvisa(t *testing.T) {
	engine := newEngine(t)
	order := orderWithSubtotal100("110.00") // total obsoleto

	reconciled, warning := engine.Reconcile(order)

	require.NotNil(t, warning, "Una divergencia de 5.00 debe producir warning de auditoría")
	assert.Equal(t, "order-1", warning.OrderID)
	assert.True(t, warning.Reported.Equal(decimal.NewFromFloat(110.00)))
	assert.True(t, warning.Recomputed.Equal(decimal.NewFromFloat(115.00)))
	assert.True(t, reconciled.Total.Equal(decimal.NewFromFloat(115.00)), "El total se reemplaza por el recomputado")
}

func TestReconcile_Idempotente(t *testing.T) {
	engine := newEngine(t)
	order := orderWithSubtotal100("110.00")

	once, warning := engine.Reconcile(order)
	require.NotNil(t, warning)

	twice, warningAgain := engine.Reconcile(once)

	assert.Nil(t, warningAgain, "Reconciliar un pedido ya corregido no debe volver a avisar")
	assert.True(t, once.Total.Equal(twice.Total), "Reconciliar dos veces produce el mismo total")
	assert.True(t, once.Subtotal.Equal(twice.Subtotal))
	assert.True(t, once.TaxAmount.Equal(twice.TaxAmount))
}

func TestReconcile_SinLineasTodoCeroSinCorreccion(t *testing.T) {
	engine := newEngine(t)
	order := entity.Order{ID: "order-empty"}

	reconciled, warning := engine.Reconcile(order)

	assert.Nil(t, warning, "Pedido sin líneas no produce corrección")
	assert.True(t, reconciled.Subtotal.IsZero())
	assert.True(t, reconciled.TaxAmount.IsZero())
	assert.True(t, reconciled.Total.IsZero())
}
