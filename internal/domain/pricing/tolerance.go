// Package pricing contiene los cálculos monetarios del pedido: recomputación y
// reconciliación de totales, y el reparto de ingresos entre vendedor y plataforma.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Comparator compara montos con una tolerancia absoluta (epsilon).
// La igualdad exacta no sirve: los totales reportados por el checkout arrastran
// aritmética de descuentos en punto flotante.
type Comparator struct {
	epsilon decimal.Decimal
}

// NewComparator crea el comparador. El epsilon debe ser estrictamente positivo;
// un epsilon cero degeneraría en igualdad exacta.
func NewComparator(epsilon decimal.Decimal) (Comparator, error) {
	if !epsilon.IsPositive() {
		return Comparator{}, fmt.Errorf("pricing: epsilon debe ser mayor que cero, se recibió %s", epsilon)
	}
	return Comparator{epsilon: epsilon}, nil
}

// Compare true si |a−b| <= epsilon. La frontera en exactamente epsilon es inclusiva.
func (c Comparator) Compare(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.epsilon)
}

// Epsilon devuelve la tolerancia configurada.
func (c Comparator) Epsilon() decimal.Decimal {
	return c.epsilon
}
