package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType tipo de documento fiscal.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "INVOICE"     // Factura (codDoc 01)
	DocumentTypeCreditNote DocumentType = "CREDIT_NOTE" // Nota de crédito (codDoc 04)
)

// Buyer datos del comprador tal como van en el comprobante (desnormalizados:
// el documento es inmutable aunque el comprador cambie después).
type Buyer struct {
	Identification     string
	IdentificationType string // Tabla 6 SRI: 04 RUC, 05 cédula, 06 pasaporte, 07 consumidor final
	Name               string
	Address            string
	Email              string
	Phone              string
}

// ModifiedDocumentRef referencia al documento que una nota de crédito modifica.
type ModifiedDocumentRef struct {
	DocType   string    // Código del documento sustento (normalmente 01, factura)
	Number    string    // Número completo estab-ptoEmi-secuencial
	IssueDate time.Time // Fecha de emisión del documento sustento
}

// FiscalDocument representa una factura o nota de crédito que debe autorizarse
// ante el SRI antes de tener validez legal. Nunca se elimina; un estado terminal
// solo se corrige emitiendo un documento nuevo que lo sustituya.
type FiscalDocument struct {
	ID        string
	OrderID   string
	Type      DocumentType
	Number    string // estab-ptoEmi-secuencial (ej: 001-001-000000123)
	IssueDate time.Time
	Buyer     Buyer
	Lines     []DocumentLine

	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal

	Status              string // Estado local (enum cerrado en internal/domain/billing)
	AccessKey           string // Clave de acceso SRI (49 dígitos)
	AuthorizationNumber string // Número de autorización devuelto por el SRI
	AuthorityMessage    string // Mensajes de rechazo/error devueltos por el SRI
	RetryCount          int
	LastRetryAt         *time.Time

	// Solo notas de crédito: documento modificado y motivo.
	ModifiedDocument *ModifiedDocumentRef
	Reason           string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentLine una línea del comprobante.
type DocumentLine struct {
	ID          string
	DocumentID  string
	Code        string // codigoPrincipal
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxCode     string // codigoPorcentaje IVA (Tabla 17 SRI)
}

// LineSubtotal cantidad × unitario − descuento (precioTotalSinImpuesto).
func (l DocumentLine) LineSubtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Sub(l.Discount)
}

// IsCreditNote true si el documento es una nota de crédito.
func (d *FiscalDocument) IsCreditNote() bool {
	return d.Type == DocumentTypeCreditNote
}
