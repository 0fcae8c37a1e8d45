package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	"github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri/signer"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

func retryFixture(t *testing.T, status domainbilling.DocumentStatus, retryCount int, querier *fakeQuerier) (
	*appbilling.RetryUseCase, *fakeDocRepo,
) {
	t.Helper()

	docRepo := newFakeDocRepo()
	doc := &entity.FiscalDocument{
		ID:         "doc-retry",
		OrderID:    "order-1",
		Type:       entity.DocumentTypeInvoice,
		Number:     "001-001-000000007",
		IssueDate:  time.Now(),
		AccessKey:  "2911202401179214673900110010010000000011234567813",
		Status:     string(status),
		RetryCount: retryCount,
	}
	require.NoError(t, docRepo.Create(context.Background(), doc))

	sm := domainbilling.NewStateMachine()
	config := appbilling.SRIConfig{AppEnv: infrasri.AppEnvTest, Issuer: testIssuerData()}
	orchestrator := appbilling.NewSRIOrchestrator(
		docRepo, infrasri.NewXMLBuilderService(), signer.NewDigitalSignatureService(),
		&fakeSubmitter{}, querier, sm, config, "15", logger.Nop())
	synchronizer := appbilling.NewAuthoritySynchronizer(docRepo, querier, sm, infrasri.AppEnvTest, logger.Nop())

	uc := appbilling.NewRetryUseCase(
		docRepo, domainbilling.NewRetryPolicy(12), sm, synchronizer, orchestrator, logger.Nop())
	return uc, docRepo
}

func TestRetry_ConsumeIntentoYReenvia(t *testing.T) {
	// El SRI sigue reportando rechazo; el reintento procede.
	querier := &fakeQuerier{result: &infrasri.AuthorizationResult{RawState: "NO AUTORIZADO"}}
	uc, _ := retryFixture(t, domainbilling.StatusFailed, 2, querier)

	status, err := uc.Retry(context.Background(), "doc-retry")

	require.NoError(t, err)
	assert.Equal(t, string(domainbilling.StatusSentToAuthority), status.Status)
	assert.Equal(t, 3, status.RetryCount, "El reintento consume exactamente un intento")
}

func TestRetry_YaAutorizadoNoConsumeIntento(t *testing.T) {
	// La sincronización descubre que el SRI ya autorizó el documento.
	querier := &fakeQuerier{result: &infrasri.AuthorizationResult{
		RawState:            "AUTORIZADO",
		AuthorizationNumber: "2911202401179214673900110010010000000011234567813",
	}}
	uc, docRepo := retryFixture(t, domainbilling.StatusProcessing, 5, querier)

	status, err := uc.Retry(context.Background(), "doc-retry")

	require.NoError(t, err)
	assert.Equal(t, string(domainbilling.StatusAuthorized), status.Status)
	assert.Equal(t, 5, status.RetryCount, "Un documento ya autorizado no consume intento")

	persisted, _ := docRepo.GetByID(context.Background(), "doc-retry")
	assert.Equal(t, string(domainbilling.StatusAuthorized), persisted.Status)
}

func TestRetry_EstadoDeRechazoPasaPorFailed(t *testing.T) {
	querier := &fakeQuerier{result: &infrasri.AuthorizationResult{RawState: "NO AUTORIZADO"}}
	uc, _ := retryFixture(t, domainbilling.StatusNotAuthorized, 0, querier)

	status, err := uc.Retry(context.Background(), "doc-retry")

	require.NoError(t, err)
	assert.Equal(t, string(domainbilling.StatusSentToAuthority), status.Status)
	assert.Equal(t, 1, status.RetryCount)
}

func TestRetry_AgotadoQuedaDefinitivamenteFallido(t *testing.T) {
	querier := &fakeQuerier{result: &infrasri.AuthorizationResult{RawState: "NO AUTORIZADO"}}
	uc, docRepo := retryFixture(t, domainbilling.StatusFailed, 12, querier)

	_, err := uc.Retry(context.Background(), "doc-retry")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRetryExhausted))

	persisted, _ := docRepo.GetByID(context.Background(), "doc-retry")
	assert.Equal(t, string(domainbilling.StatusDefinitivelyFailed), persisted.Status,
		"Agotar el máximo deja el documento en estado terminal")
}

func TestRetry_SRICaidoUsaEstadoLocal(t *testing.T) {
	querier := &fakeQuerier{err: fmt.Errorf("connection refused")}
	uc, _ := retryFixture(t, domainbilling.StatusFailed, 1, querier)

	status, err := uc.Retry(context.Background(), "doc-retry")

	require.NoError(t, err, "Un SRI caído no bloquea el reintento de envío")
	assert.Equal(t, string(domainbilling.StatusSentToAuthority), status.Status)
	assert.Equal(t, 2, status.RetryCount)
}
