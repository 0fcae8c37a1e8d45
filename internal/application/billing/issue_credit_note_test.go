package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	"github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri/signer"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

// Una nota de crédito contra una factura no autorizada debe rechazarse antes de
// reservar secuencial, antes de persistir y sin una sola llamada de red.

func testIssuerData() infrasri.IssuerData {
	return infrasri.IssuerData{
		RUC:           "1792146739001",
		RazonSocial:   "BCOMMERCE S.A.S.",
		DirMatriz:     "Av. Amazonas N21-147, Quito",
		Establishment: "001",
		EmissionPoint: "001",
		Environment:   "1",
	}
}

func creditNoteFixture(t *testing.T, invoiceStatus domainbilling.DocumentStatus) (
	*appbilling.IssueCreditNoteUseCase, *fakeDocRepo, *fakeSubmitter, *fakeQuerier,
) {
	t.Helper()

	docRepo := newFakeDocRepo()
	invoice := &entity.FiscalDocument{
		ID:        "inv-1",
		OrderID:   "order-1",
		Type:      entity.DocumentTypeInvoice,
		Number:    "001-001-000000042",
		IssueDate: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Buyer: entity.Buyer{
			Identification:     "1792146739001",
			IdentificationType: "04",
			Name:               "Comercial Andina S.A.",
		},
		Status: string(invoiceStatus),
	}
	require.NoError(t, docRepo.Create(context.Background(), invoice))

	submitter := &fakeSubmitter{}
	querier := &fakeQuerier{}
	config := appbilling.SRIConfig{AppEnv: infrasri.AppEnvTest, Issuer: testIssuerData()}
	sm := domainbilling.NewStateMachine()

	orchestrator := appbilling.NewSRIOrchestrator(
		docRepo,
		infrasri.NewXMLBuilderService(),
		signer.NewDigitalSignatureService(),
		submitter,
		querier,
		sm,
		config,
		"15",
		logger.Nop(),
	)

	uc := appbilling.NewIssueCreditNoteUseCase(
		&fakeTxRunner{orderRepo: newFakeOrderRepo(), docRepo: docRepo},
		docRepo,
		domainbilling.NewCreditNoteValidator(),
		sm,
		orchestrator,
		config,
		decimal.NewFromFloat(0.15),
		logger.Nop(),
	)
	return uc, docRepo, submitter, querier
}

func validNoteRequest() dto.CreateCreditNoteRequest {
	return dto.CreateCreditNoteRequest{
		InvoiceID: "inv-1",
		Reason:    "Devolución de mercadería",
		Lines: []dto.DocumentLineRequest{
			{
				Code:        "SKU-9",
				Description: "Teclado mecánico",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromFloat(89.90),
			},
		},
	}
}

func TestIssueCreditNote_SustentoNoAutorizadoFallaSinRed(t *testing.T) {
	uc, docRepo, submitter, querier := creditNoteFixture(t, domainbilling.StatusPending)

	_, err := uc.IssueCreditNote(context.Background(), validNoteRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition),
		"Con la factura en PENDING la nota debe rechazarse como transición inválida")
	assert.Equal(t, 0, submitter.calls, "Cero llamadas de red: el rechazo es previo al envío")
	assert.Equal(t, 0, querier.calls)

	// No quedó nada persistido aparte de la factura sustento.
	docRepo.mu.Lock()
	defer docRepo.mu.Unlock()
	assert.Len(t, docRepo.docs, 1, "La nota rechazada no se persiste")
}

func TestIssueCreditNote_SolicitudInvalidaFallaAntesDelSustento(t *testing.T) {
	uc, _, submitter, _ := creditNoteFixture(t, domainbilling.StatusAuthorized)
	req := validNoteRequest()
	req.Reason = ""

	_, err := uc.IssueCreditNote(context.Background(), req)

	require.Error(t, err)
	var verr *domainbilling.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domainbilling.RuleReason, verr.Rule)
	assert.Equal(t, 0, submitter.calls)
}

func TestIssueCreditNote_FacturaInexistente(t *testing.T) {
	uc, _, _, _ := creditNoteFixture(t, domainbilling.StatusAuthorized)
	req := validNoteRequest()
	req.InvoiceID = "no-existe"

	_, err := uc.IssueCreditNote(context.Background(), req)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIssueCreditNote_SustentoAutorizadoEmiteYReservaSecuencial(t *testing.T) {
	uc, docRepo, _, _ := creditNoteFixture(t, domainbilling.StatusAuthorized)

	resp, err := uc.IssueCreditNote(context.Background(), validNoteRequest())

	require.NoError(t, err)
	assert.Equal(t, string(entity.DocumentTypeCreditNote), resp.Type)
	assert.Equal(t, "001-001-000000001", resp.Number)
	assert.Len(t, resp.AccessKey, 49)
	assert.Equal(t, string(domainbilling.StatusSentToAuthority), resp.Status)
	// 89.90 + 15% = 103.385
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromFloat(89.90)))
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(103.385)))

	persisted, _ := docRepo.GetByID(context.Background(), resp.ID)
	require.NotNil(t, persisted)
	require.NotNil(t, persisted.ModifiedDocument)
	assert.Equal(t, "001-001-000000042", persisted.ModifiedDocument.Number)
}
