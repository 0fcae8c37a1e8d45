package sri_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinvillajim/bcommerce-billing/pkg/sri"
)

// La clave de acceso es el identificador con el que el SRI indexa cada comprobante:
// si la concatenación o el módulo 11 cambian, el WS de autorización nunca encontrará
// el documento. Estos tests fijan ambos.

func buildTestParams() sri.AccessKeyParams {
	return sri.AccessKeyParams{
		IssueDate:     time.Date(2024, 11, 29, 0, 0, 0, 0, time.UTC),
		DocType:       sri.DocTypeFactura,
		RUC:           "1792146739001",
		Environment:   sri.EnvironmentPruebas,
		Establishment: "001",
		EmissionPoint: "001",
		Sequential:    "000000123",
		NumericCode:   "12345678",
	}
}

func TestBuildAccessKey_EstructuraYVerificador(t *testing.T) {
	key, err := sri.BuildAccessKey(buildTestParams())
	require.NoError(t, err, "BuildAccessKey no debe fallar con parámetros válidos")

	assert.Len(t, key, sri.AccessKeyLength, "La clave de acceso debe tener 49 dígitos")
	assert.Equal(t, "29112024", key[:8], "Los primeros 8 dígitos son la fecha ddmmaaaa")
	assert.Equal(t, "01", key[8:10], "Sigue el código de comprobante")
	assert.Equal(t, "1792146739001", key[10:23], "Sigue el RUC del emisor")
	assert.NoError(t, sri.ValidateAccessKey(key), "La clave generada debe pasar su propia validación")
}

func TestBuildAccessKey_Determinista(t *testing.T) {
	k1, err1 := sri.BuildAccessKey(buildTestParams())
	k2, err2 := sri.BuildAccessKey(buildTestParams())
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, k1, k2, "El mismo input siempre debe producir la misma clave")
}

func TestBuildAccessKey_SecuencialAfectaClave(t *testing.T) {
	p1 := buildTestParams()
	p2 := buildTestParams()
	p2.Sequential = "000000124"

	k1, _ := sri.BuildAccessKey(p1)
	k2, _ := sri.BuildAccessKey(p2)
	assert.NotEqual(t, k1, k2, "Comprobantes con secuenciales distintos deben tener claves distintas")
}

func TestBuildAccessKey_RellenaSecuencialCorto(t *testing.T) {
	p := buildTestParams()
	p.Sequential = "123"
	key, err := sri.BuildAccessKey(p)
	require.NoError(t, err)
	assert.Contains(t, key, "000000123", "El secuencial corto se rellena con ceros a la izquierda")
}

// ── Errores de validación ─────────────────────────────────────────────────────

func TestBuildAccessKey_ErrorSiRUCInvalido(t *testing.T) {
	p := buildTestParams()
	p.RUC = "12345"
	_, err := sri.BuildAccessKey(p)
	assert.Error(t, err, "RUC sin 13 dígitos debe rechazarse")
}

func TestBuildAccessKey_ErrorSiDocTypeDesconocido(t *testing.T) {
	p := buildTestParams()
	p.DocType = "99"
	_, err := sri.BuildAccessKey(p)
	assert.Error(t, err, "Código de comprobante fuera de la Tabla 3 debe rechazarse")
}

func TestBuildAccessKey_ErrorSiAmbienteInvalido(t *testing.T) {
	p := buildTestParams()
	p.Environment = "3"
	_, err := sri.BuildAccessKey(p)
	assert.Error(t, err)
}

// ── Módulo 11 ─────────────────────────────────────────────────────────────────

func TestMod11CheckDigit_VectoresConocidos(t *testing.T) {
	// 1234567890 con pesos 2..7 cíclicos desde la derecha suma 195; 195 mod 11 = 8; 11-8 = 3.
	assert.Equal(t, 3, sri.Mod11CheckDigit("1234567890"))
	// Suma 0 → 11-0 = 11 → regla especial: 0.
	assert.Equal(t, 0, sri.Mod11CheckDigit("0"))
	// 6*2 = 12; 12 mod 11 = 1; 11-1 = 10 → regla especial: 1.
	assert.Equal(t, 1, sri.Mod11CheckDigit("6"))
}

func TestValidateAccessKey_RechazaVerificadorAlterado(t *testing.T) {
	key, err := sri.BuildAccessKey(buildTestParams())
	require.NoError(t, err)

	last := key[len(key)-1]
	altered := key[:len(key)-1] + string('0'+(last-'0'+1)%10)
	assert.Error(t, sri.ValidateAccessKey(altered), "Alterar el dígito verificador debe invalidar la clave")
}

func TestValidateAccessKey_RechazaLongitudIncorrecta(t *testing.T) {
	assert.Error(t, sri.ValidateAccessKey("123"))
}
