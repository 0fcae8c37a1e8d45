package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
)

func TestParseAuthorityStatus_TablaDeTraduccion(t *testing.T) {
	cases := map[string]billing.DocumentStatus{
		"PENDIENTE":         billing.StatusPending,
		"EN PROCESO":        billing.StatusProcessing,
		"EN PROCESAMIENTO":  billing.StatusProcessing,
		"PPR":               billing.StatusProcessing,
		"RECIBIDA":          billing.StatusReceived,
		"AUTORIZADO":        billing.StatusAuthorized,
		"AUTORIZADA":        billing.StatusAuthorized,
		"NO AUTORIZADO":     billing.StatusNotAuthorized,
		"DEVUELTA":          billing.StatusReturned,
		"RECHAZADA":         billing.StatusRejected,
		"autorizado":        billing.StatusAuthorized, // insensible a mayúsculas
		"  AUTORIZADO  ":    billing.StatusAuthorized, // tolera espacios
	}

	for raw, want := range cases {
		got, ok := billing.ParseAuthorityStatus(raw)
		assert.True(t, ok, "el vocabulario %q debe reconocerse", raw)
		assert.Equal(t, want, got)
	}
}

func TestParseAuthorityStatus_VocabularioDesconocido(t *testing.T) {
	for _, raw := range []string{"", "OTRO", "APROBADO"} {
		_, ok := billing.ParseAuthorityStatus(raw)
		assert.False(t, ok, "%q no pertenece al vocabulario del SRI", raw)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, billing.StatusAuthorized.IsTerminal())
	assert.True(t, billing.StatusDefinitivelyFailed.IsTerminal())

	for _, s := range []billing.DocumentStatus{
		billing.StatusDraft, billing.StatusSentToAuthority, billing.StatusPending,
		billing.StatusProcessing, billing.StatusReceived, billing.StatusRejected,
		billing.StatusNotAuthorized, billing.StatusReturned,
		billing.StatusAuthorityError, billing.StatusFailed,
	} {
		assert.False(t, s.IsTerminal(), "%s no es terminal", s)
	}
}

func TestIsRejection(t *testing.T) {
	for _, s := range []billing.DocumentStatus{
		billing.StatusRejected, billing.StatusNotAuthorized,
		billing.StatusReturned, billing.StatusAuthorityError,
	} {
		assert.True(t, s.IsRejection(), "%s es estado de rechazo", s)
	}
	assert.False(t, billing.StatusAuthorized.IsRejection())
	assert.False(t, billing.StatusFailed.IsRejection())
}
