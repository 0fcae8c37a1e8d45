// Cálculo y validación de la clave de acceso SRI (49 dígitos) según la Ficha Técnica
// de Comprobantes Electrónicos. El último dígito es un verificador módulo 11.

package sri

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// AccessKeyLength longitud total de la clave de acceso (48 dígitos + verificador).
const AccessKeyLength = 49

// AccessKeyParams contiene los campos de la clave de acceso en el orden exigido por el SRI.
type AccessKeyParams struct {
	IssueDate     time.Time // Fecha de emisión (ddmmaaaa en la clave)
	DocType       string    // Código de comprobante (Tabla 3): "01" factura, "04" nota de crédito
	RUC           string    // RUC del emisor (13 dígitos)
	Environment   string    // "1" pruebas, "2" producción
	Establishment string    // Código de establecimiento (3 dígitos)
	EmissionPoint string    // Punto de emisión (3 dígitos)
	Sequential    string    // Secuencial del comprobante (9 dígitos)
	NumericCode   string    // Código numérico de seguridad (8 dígitos, lo define el emisor)
}

// BuildAccessKey genera la clave de acceso de 49 dígitos:
//
//	ddmmaaaa + codDoc + RUC + ambiente + estab + ptoEmi + secuencial + códigoNumérico + tipoEmisión + DV
func BuildAccessKey(p AccessKeyParams) (string, error) {
	if p.IssueDate.IsZero() {
		return "", fmt.Errorf("sri: fecha de emisión es obligatoria para la clave de acceso")
	}
	if !ValidDocTypeCodes[p.DocType] {
		return "", fmt.Errorf("sri: código de comprobante inválido %q", p.DocType)
	}
	ruc := onlyDigits(p.RUC)
	if len(ruc) != 13 {
		return "", fmt.Errorf("sri: RUC debe tener 13 dígitos, se encontraron %d", len(ruc))
	}
	if p.Environment != EnvironmentPruebas && p.Environment != EnvironmentProduccion {
		return "", fmt.Errorf("sri: ambiente inválido %q (usar '1' o '2')", p.Environment)
	}
	estab, err := fixedDigits(p.Establishment, 3, "establecimiento")
	if err != nil {
		return "", err
	}
	ptoEmi, err := fixedDigits(p.EmissionPoint, 3, "punto de emisión")
	if err != nil {
		return "", err
	}
	secuencial, err := fixedDigits(p.Sequential, 9, "secuencial")
	if err != nil {
		return "", err
	}
	codigoNumerico, err := fixedDigits(p.NumericCode, 8, "código numérico")
	if err != nil {
		return "", err
	}

	base := p.IssueDate.Format("02012006") +
		p.DocType +
		ruc +
		p.Environment +
		estab + ptoEmi +
		secuencial +
		codigoNumerico +
		EmissionNormal

	dv := Mod11CheckDigit(base)
	return base + string('0'+byte(dv)), nil
}

// Mod11CheckDigit calcula el dígito verificador módulo 11 de la clave de acceso.
// Pesos 2..7 cíclicos de derecha a izquierda; 11-resto, con 11→0 y 10→1.
func Mod11CheckDigit(digits string) int {
	weight := 2
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	dv := 11 - (sum % 11)
	switch dv {
	case 11:
		return 0
	case 10:
		return 1
	default:
		return dv
	}
}

// ValidateAccessKey verifica longitud, que sean solo dígitos y el verificador módulo 11.
func ValidateAccessKey(key string) error {
	if len(key) != AccessKeyLength {
		return fmt.Errorf("sri: clave de acceso debe tener %d dígitos, tiene %d", AccessKeyLength, len(key))
	}
	for _, r := range key {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("sri: clave de acceso contiene caracteres no numéricos")
		}
	}
	expected := Mod11CheckDigit(key[:AccessKeyLength-1])
	if int(key[AccessKeyLength-1]-'0') != expected {
		return fmt.Errorf("sri: dígito verificador inválido: esperado %d, recibido %c", expected, key[AccessKeyLength-1])
	}
	return nil
}

// fixedDigits valida que el campo tenga exactamente n dígitos (rellena con ceros a la izquierda si es más corto).
func fixedDigits(s string, n int, field string) (string, error) {
	digits := onlyDigits(s)
	if digits == "" {
		return "", fmt.Errorf("sri: %s es obligatorio", field)
	}
	if len(digits) > n {
		return "", fmt.Errorf("sri: %s no puede exceder %d dígitos", field, n)
	}
	return strings.Repeat("0", n-len(digits)) + digits, nil
}

// onlyDigits deja solo dígitos 0-9.
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
