package billing

import (
	"fmt"
	"time"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// RetryPolicy decide elegibilidad y lleva el conteo de reintentos de envío al SRI.
// Es pura: no calcula backoff ni agenda nada; la programación del reintento es
// responsabilidad del llamador (timer/cola externa).
type RetryPolicy struct {
	maxRetries int
}

// NewRetryPolicy construye la política. maxRetries llega por configuración
// (BILLING_MAX_RETRIES, observado 12).
func NewRetryPolicy(maxRetries int) *RetryPolicy {
	return &RetryPolicy{maxRetries: maxRetries}
}

// MaxRetries devuelve el límite configurado.
func (p *RetryPolicy) MaxRetries() int {
	return p.maxRetries
}

// CanRetry true solo si el documento está en FAILED y aún no agotó el máximo.
// Con retryCount == maxRetries es false sin importar el estado.
func (p *RetryPolicy) CanRetry(doc *entity.FiscalDocument) bool {
	return DocumentStatus(doc.Status) == StatusFailed && doc.RetryCount < p.maxRetries
}

// RecordAttempt consume un intento: incrementa el contador, marca la hora y
// devuelve el documento a SENT_TO_AUTHORITY. Si el incremento excedería el
// máximo, transiciona a DEFINITIVELY_FAILED y falla con ErrRetryExhausted.
func (p *RetryPolicy) RecordAttempt(doc *entity.FiscalDocument, sm *StateMachine, now time.Time) error {
	if doc.RetryCount+1 > p.maxRetries {
		if err := sm.Transition(doc, StatusDefinitivelyFailed); err != nil {
			return err
		}
		return fmt.Errorf("%w: documento %s con %d intentos (máximo %d)",
			domain.ErrRetryExhausted, doc.ID, doc.RetryCount, p.maxRetries)
	}
	if err := sm.Transition(doc, StatusSentToAuthority); err != nil {
		return err
	}
	doc.RetryCount++
	doc.LastRetryAt = &now
	return nil
}
