package billing

import (
	"fmt"
	"time"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// InvalidTransitionError transición fuera del grafo permitido. Siempre se
// propaga; nunca se ignora en silencio.
type InvalidTransitionError struct {
	DocumentID string
	From       DocumentStatus
	To         DocumentStatus
	Reason     string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transición %s → %s no permitida para %s: %s", e.From, e.To, e.DocumentID, e.Reason)
	}
	return fmt.Sprintf("transición %s → %s no permitida para %s", e.From, e.To, e.DocumentID)
}

// Unwrap permite errors.Is(err, domain.ErrInvalidTransition).
func (e *InvalidTransitionError) Unwrap() error {
	return domain.ErrInvalidTransition
}

// allowedTransitions grafo cerrado de transiciones. AUTHORIZED y
// DEFINITIVELY_FAILED no tienen aristas de salida.
var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:           {StatusSentToAuthority},
	StatusSentToAuthority: {StatusPending, StatusAuthorityError},
	StatusPending:         {StatusProcessing},
	StatusProcessing:      {StatusReceived, StatusAuthorityError},
	StatusReceived:        {StatusAuthorized, StatusRejected, StatusNotAuthorized, StatusReturned},
	StatusAuthorityError:  {StatusFailed},
	StatusRejected:        {StatusFailed},
	StatusNotAuthorized:   {StatusFailed},
	StatusReturned:        {StatusFailed},
	StatusFailed:          {StatusSentToAuthority, StatusDefinitivelyFailed},
}

// StateMachine aplica transiciones de estado sobre documentos fiscales.
// Es consultiva: impide que el llamador intente transiciones inválidas, pero el
// estado autoritativo siempre se obtiene del SRI vía el sincronizador.
type StateMachine struct{}

// NewStateMachine crea la máquina.
func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// CanTransition true si la arista from → to pertenece al grafo.
func (m *StateMachine) CanTransition(from, to DocumentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition muta el estado del documento si la arista es válida; si no,
// falla con InvalidTransitionError y el documento queda intacto.
func (m *StateMachine) Transition(doc *entity.FiscalDocument, to DocumentStatus) error {
	from := DocumentStatus(doc.Status)
	if !to.Valid() {
		return &InvalidTransitionError{DocumentID: doc.ID, From: from, To: to, Reason: "estado destino desconocido"}
	}
	if from.IsTerminal() {
		return &InvalidTransitionError{DocumentID: doc.ID, From: from, To: to, Reason: "el estado es terminal"}
	}
	if !m.CanTransition(from, to) {
		return &InvalidTransitionError{DocumentID: doc.ID, From: from, To: to}
	}
	doc.Status = string(to)
	doc.UpdatedAt = time.Now()
	return nil
}

// SubmitCreditNote aplica DRAFT → SENT_TO_AUTHORITY a una nota de crédito.
// Precondición adicional del grafo: el documento sustento ya debe estar
// AUTHORIZED. Se verifica aquí, antes de cualquier llamada de red.
func (m *StateMachine) SubmitCreditNote(note *entity.FiscalDocument, referenced *entity.FiscalDocument) error {
	if !note.IsCreditNote() {
		return &InvalidTransitionError{
			DocumentID: note.ID,
			From:       DocumentStatus(note.Status),
			To:         StatusSentToAuthority,
			Reason:     "el documento no es una nota de crédito",
		}
	}
	if referenced == nil || DocumentStatus(referenced.Status) != StatusAuthorized {
		refStatus := "desconocido"
		if referenced != nil {
			refStatus = referenced.Status
		}
		return &InvalidTransitionError{
			DocumentID: note.ID,
			From:       DocumentStatus(note.Status),
			To:         StatusSentToAuthority,
			Reason:     fmt.Sprintf("el documento sustento está en estado %s, debe estar AUTHORIZED", refStatus),
		}
	}
	return m.Transition(note, StatusSentToAuthority)
}

// AdvanceTo lleva el documento hasta target recorriendo las aristas intermedias
// del camino canónico de autorización (PENDING → PROCESSING → RECEIVED → resultado).
// El SRI puede responder con un estado final sin que el cliente haya observado
// los intermedios; el grafo sigue cerrado porque cada paso es una arista válida.
func (m *StateMachine) AdvanceTo(doc *entity.FiscalDocument, target DocumentStatus) error {
	path := map[DocumentStatus]DocumentStatus{
		StatusAuthorityError:  StatusFailed,
		StatusFailed:          StatusSentToAuthority,
		StatusSentToAuthority: StatusPending,
		StatusPending:         StatusProcessing,
		StatusProcessing:      StatusReceived,
	}
	for DocumentStatus(doc.Status) != target {
		current := DocumentStatus(doc.Status)
		if m.CanTransition(current, target) {
			return m.Transition(doc, target)
		}
		next, ok := path[current]
		if !ok {
			return &InvalidTransitionError{DocumentID: doc.ID, From: current, To: target, Reason: "sin camino válido"}
		}
		if err := m.Transition(doc, next); err != nil {
			return err
		}
	}
	return nil
}
