package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
)

func mustComparator(t *testing.T, epsilon string) pricing.Comparator {
	t.Helper()
	eps, err := decimal.NewFromString(epsilon)
	require.NoError(t, err)
	cmp, err := pricing.NewComparator(eps)
	require.NoError(t, err)
	return cmp
}

func TestNewComparator_RechazaEpsilonNoPositivo(t *testing.T) {
	_, err := pricing.NewComparator(decimal.Zero)
	assert.Error(t, err, "Epsilon cero degeneraría en igualdad exacta, debe rechazarse")

	_, err = pricing.NewComparator(decimal.NewFromFloat(-0.01))
	assert.Error(t, err, "Epsilon negativo debe rechazarse")
}

func TestCompare_DentroDeTolerancia(t *testing.T) {
	cmp := mustComparator(t, "0.001")

	a := decimal.NewFromFloat(115.00)
	b := decimal.NewFromFloat(115.0006)
	assert.True(t, cmp.Compare(a, b), "|a−b| menor que epsilon debe ser igual")
	assert.True(t, cmp.Compare(b, a), "La comparación es simétrica")
}

func TestCompare_FueraDeTolerancia(t *testing.T) {
	cmp := mustComparator(t, "0.001")

	a := decimal.NewFromFloat(110.00)
	b := decimal.NewFromFloat(115.00)
	assert.False(t, cmp.Compare(a, b), "|a−b| mayor que epsilon debe ser distinto")
}

func TestCompare_FronteraInclusiva(t *testing.T) {
	cmp := mustComparator(t, "0.01")

	a := decimal.NewFromFloat(100.00)
	b := decimal.NewFromFloat(100.01)
	assert.True(t, cmp.Compare(a, b), "|a−b| == epsilon exacto es igual (frontera inclusiva)")

	c := decimal.NewFromFloat(100.011)
	assert.False(t, cmp.Compare(a, c), "Un milésimo más allá de epsilon ya es distinto")
}

func TestCompare_IgualesExactos(t *testing.T) {
	cmp := mustComparator(t, "0.001")
	v := decimal.NewFromFloat(42.42)
	assert.True(t, cmp.Compare(v, v))
}
