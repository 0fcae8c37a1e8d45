package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError primera regla violada por una solicitud de nota de crédito.
// Una solicitud estructuralmente inválida nunca llega al SRI.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("nota de crédito inválida [%s]: %s", e.Rule, e.Message)
}

// Reglas en el orden en que se evalúan.
const (
	RuleIssueDate           = "issue_date"
	RuleReason              = "reason"
	RuleModifiedDocNumber   = "modified_document_number"
	RuleBuyerIdentification = "buyer_identification"
	RuleLineItems           = "line_items"
	RuleLineCode            = "line_code"
	RuleLineDescription     = "line_description"
	RuleLineQuantity        = "line_quantity"
	RuleLineUnitPrice       = "line_unit_price"
)

// CreditNoteRequest solicitud de emisión de nota de crédito antes de construir
// la entidad. Los montos llegan ya calculados por el emisor.
type CreditNoteRequest struct {
	IssueDate           time.Time
	Reason              string
	ModifiedDocType     string
	ModifiedDocNumber   string
	ModifiedDocDate     time.Time
	BuyerIdentification string
	BuyerIDType         string
	BuyerName           string
	Lines               []CreditNoteLine
}

// CreditNoteLine línea de la solicitud.
type CreditNoteLine struct {
	Code        string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxCode     string
}

// CreditNoteValidator puerta estructural previa a cualquier llamada de red.
type CreditNoteValidator struct{}

// NewCreditNoteValidator crea el validador.
func NewCreditNoteValidator() *CreditNoteValidator {
	return &CreditNoteValidator{}
}

// Validate evalúa las reglas en orden y devuelve la primera violada.
func (v *CreditNoteValidator) Validate(req CreditNoteRequest) error {
	if req.IssueDate.IsZero() {
		return &ValidationError{Rule: RuleIssueDate, Message: "la fecha de emisión es obligatoria"}
	}
	if req.Reason == "" {
		return &ValidationError{Rule: RuleReason, Message: "el motivo es obligatorio"}
	}
	if req.ModifiedDocNumber == "" {
		return &ValidationError{Rule: RuleModifiedDocNumber, Message: "el número del documento modificado es obligatorio"}
	}
	if req.BuyerIdentification == "" {
		return &ValidationError{Rule: RuleBuyerIdentification, Message: "la identificación del comprador es obligatoria"}
	}
	if len(req.Lines) == 0 {
		return &ValidationError{Rule: RuleLineItems, Message: "se requiere al menos una línea"}
	}
	for i, line := range req.Lines {
		if line.Code == "" {
			return &ValidationError{Rule: RuleLineCode, Message: fmt.Sprintf("línea %d sin código", i+1)}
		}
		if line.Description == "" {
			return &ValidationError{Rule: RuleLineDescription, Message: fmt.Sprintf("línea %d sin descripción", i+1)}
		}
		if !line.Quantity.IsPositive() {
			return &ValidationError{Rule: RuleLineQuantity, Message: fmt.Sprintf("línea %d con cantidad no positiva", i+1)}
		}
		if !line.UnitPrice.IsPositive() {
			return &ValidationError{Rule: RuleLineUnitPrice, Message: fmt.Sprintf("línea %d con precio unitario no positivo", i+1)}
		}
	}
	return nil
}
