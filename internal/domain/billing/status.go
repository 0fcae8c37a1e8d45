// Package billing contiene el ciclo de vida de los documentos fiscales:
// enum cerrado de estados, máquina de transiciones, política de reintentos y
// validación estructural de notas de crédito.
package billing

import "strings"

// DocumentStatus estado local de un documento fiscal. Enum cerrado: el núcleo
// opera solo sobre estos valores; el vocabulario crudo del SRI se traduce una
// única vez en ParseAuthorityStatus.
type DocumentStatus string

const (
	StatusDraft              DocumentStatus = "DRAFT"
	StatusSentToAuthority    DocumentStatus = "SENT_TO_AUTHORITY"
	StatusPending            DocumentStatus = "PENDING"
	StatusProcessing         DocumentStatus = "PROCESSING"
	StatusReceived           DocumentStatus = "RECEIVED"
	StatusAuthorized         DocumentStatus = "AUTHORIZED" // terminal
	StatusRejected           DocumentStatus = "REJECTED"
	StatusNotAuthorized      DocumentStatus = "NOT_AUTHORIZED"
	StatusReturned           DocumentStatus = "RETURNED"
	StatusAuthorityError     DocumentStatus = "AUTHORITY_ERROR"
	StatusFailed             DocumentStatus = "FAILED"
	StatusDefinitivelyFailed DocumentStatus = "DEFINITIVELY_FAILED" // terminal
)

// IsTerminal true si el estado no admite ninguna transición de salida.
// Un documento terminal solo se corrige emitiendo uno nuevo que lo sustituya.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusAuthorized || s == StatusDefinitivelyFailed
}

// IsRejection true para los estados de rechazo del SRI (elegibles para reintento
// vía FAILED, hasta agotar el máximo).
func (s DocumentStatus) IsRejection() bool {
	switch s {
	case StatusRejected, StatusNotAuthorized, StatusReturned, StatusAuthorityError:
		return true
	}
	return false
}

// Valid true si el valor pertenece al enum.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSentToAuthority, StatusPending, StatusProcessing,
		StatusReceived, StatusAuthorized, StatusRejected, StatusNotAuthorized,
		StatusReturned, StatusAuthorityError, StatusFailed, StatusDefinitivelyFailed:
		return true
	}
	return false
}

// ParseAuthorityStatus traduce el vocabulario crudo del SRI al enum local.
// Es la única tabla de traducción: fuera de aquí no se comparan strings del SRI.
// Devuelve ("", false) si el vocabulario es desconocido.
func ParseAuthorityStatus(raw string) (DocumentStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDIENTE":
		return StatusPending, true
	case "EN PROCESO", "EN PROCESAMIENTO", "PPR":
		return StatusProcessing, true
	case "RECIBIDA":
		return StatusReceived, true
	case "AUTORIZADO", "AUTORIZADA":
		return StatusAuthorized, true
	case "NO AUTORIZADO", "NO AUTORIZADA":
		return StatusNotAuthorized, true
	case "DEVUELTA":
		return StatusReturned, true
	case "RECHAZADA", "RECHAZADO":
		return StatusRejected, true
	}
	return "", false
}
