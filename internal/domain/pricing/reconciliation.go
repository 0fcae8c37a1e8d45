package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// Totals totales recomputados de un pedido.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ReconciliationWarning evidencia de una corrección: el total reportado divergía
// del recomputado más allá de la tolerancia. No es fatal; se registra para auditoría.
type ReconciliationWarning struct {
	OrderID    string
	Reported   decimal.Decimal
	Recomputed decimal.Decimal
	Difference decimal.Decimal
}

// ReconciliationEngine recomputa los totales de un pedido desde sus líneas y los
// reconcilia contra el total reportado. La tarifa de IVA llega por configuración
// en el constructor, nunca de estado global ni del propio pedido.
type ReconciliationEngine struct {
	taxRate decimal.Decimal
	cmp     Comparator
}

// NewReconciliationEngine construye el motor con la tarifa vigente y la
// tolerancia del dominio checkout.
func NewReconciliationEngine(taxRate decimal.Decimal, cmp Comparator) *ReconciliationEngine {
	return &ReconciliationEngine{taxRate: taxRate, cmp: cmp}
}

// RecomputeTotals calcula subtotal, impuesto y total desde las líneas.
// Los descuentos de vendedor/volumen ya están reflejados en los unitarios.
// Pedido sin líneas → todo en cero.
func (e *ReconciliationEngine) RecomputeTotals(order entity.Order) Totals {
	subtotal := decimal.Zero
	for _, line := range order.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	tax := subtotal.Mul(e.taxRate)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// Reconcile compara el total reportado contra el recomputado. Si difieren más
// allá de la tolerancia, reemplaza el total y devuelve el warning para auditoría;
// si no, el pedido queda intacto. Idempotente: reconciliar dos veces da lo mismo.
func (e *ReconciliationEngine) Reconcile(order entity.Order) (entity.Order, *ReconciliationWarning) {
	recomputed := e.RecomputeTotals(order)

	order.Subtotal = recomputed.Subtotal
	order.TaxAmount = recomputed.TaxAmount

	if len(order.Lines) == 0 {
		order.Total = decimal.Zero
		return order, nil
	}

	if e.cmp.Compare(order.ReportedTotal, recomputed.Total) {
		order.Total = order.ReportedTotal
		return order, nil
	}

	warning := &ReconciliationWarning{
		OrderID:    order.ID,
		Reported:   order.ReportedTotal,
		Recomputed: recomputed.Total,
		Difference: order.ReportedTotal.Sub(recomputed.Total).Abs(),
	}
	order.Total = recomputed.Total
	order.ReportedTotal = recomputed.Total
	return order, warning
}
