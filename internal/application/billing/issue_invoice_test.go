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
	domainpricing "github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	"github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri/signer"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

func invoiceFixture(t *testing.T, reportedTotal decimal.Decimal) (*appbilling.IssueInvoiceUseCase, *fakeOrderRepo, *fakeDocRepo) {
	t.Helper()

	orderRepo := newFakeOrderRepo()
	docRepo := newFakeDocRepo()

	order := &entity.Order{
		ID:            "order-1",
		SellerID:      "seller-1",
		BuyerID:       "buyer-1",
		ReportedTotal: reportedTotal,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, orderRepo.Create(context.Background(), order))
	require.NoError(t, orderRepo.CreateLine(context.Background(), &entity.OrderLine{
		ID: "l1", OrderID: "order-1", ProductCode: "SKU-1",
		Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25),
	}))
	require.NoError(t, orderRepo.CreateLine(context.Background(), &entity.OrderLine{
		ID: "l2", OrderID: "order-1", ProductCode: "SKU-2",
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50),
	}))

	cmp, err := domainpricing.NewComparator(decimal.NewFromFloat(0.001))
	require.NoError(t, err)
	engine := domainpricing.NewReconciliationEngine(decimal.NewFromFloat(0.15), cmp)

	sm := domainbilling.NewStateMachine()
	config := appbilling.SRIConfig{AppEnv: infrasri.AppEnvTest, Issuer: testIssuerData()}
	orchestrator := appbilling.NewSRIOrchestrator(
		docRepo, infrasri.NewXMLBuilderService(), signer.NewDigitalSignatureService(),
		&fakeSubmitter{}, &fakeQuerier{}, sm, config, "15", logger.Nop())

	uc := appbilling.NewIssueInvoiceUseCase(
		&fakeTxRunner{orderRepo: orderRepo, docRepo: docRepo},
		orderRepo, docRepo, engine, sm, orchestrator, config,
		decimal.NewFromFloat(0.15), logger.Nop())
	return uc, orderRepo, docRepo
}

func invoiceRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		OrderID: "order-1",
		Buyer: dto.BuyerRequest{
			Identification:     "1792146739001",
			IdentificationType: "04",
			Name:               "Comercial Andina S.A.",
			Email:              "compras@andina.ec",
		},
		Lines: []dto.DocumentLineRequest{
			{Code: "SKU-1", Description: "Mouse inalámbrico", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
			{Code: "SKU-2", Description: "Monitor 24\"", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	}
}

func TestIssueInvoice_PedidoInexistente(t *testing.T) {
	uc, _, _ := invoiceFixture(t, decimal.NewFromInt(115))

	req := invoiceRequest()
	req.OrderID = "no-existe"
	_, err := uc.IssueInvoice(context.Background(), req)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIssueInvoice_EmiteConSecuencialYClaveDeAcceso(t *testing.T) {
	uc, _, _ := invoiceFixture(t, decimal.NewFromInt(115))

	resp, err := uc.IssueInvoice(context.Background(), invoiceRequest())

	require.NoError(t, err)
	assert.Equal(t, string(entity.DocumentTypeInvoice), resp.Type)
	assert.Equal(t, "001-001-000000001", resp.Number)
	assert.Len(t, resp.AccessKey, 49)
	assert.Equal(t, string(domainbilling.StatusSentToAuthority), resp.Status)
	// 100 de subtotal + 15% de IVA
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.TaxAmount.Equal(decimal.NewFromInt(15)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(115)))
	assert.Len(t, resp.Lines, 2)
}

func TestIssueInvoice_TotalDivergenteSeCorrigeYPersiste(t *testing.T) {
	// El checkout reportó 110.00; el recomputo da 115.00. La corrección se
	// persiste en el pedido antes de emitir.
	uc, orderRepo, _ := invoiceFixture(t, decimal.NewFromInt(110))

	resp, err := uc.IssueInvoice(context.Background(), invoiceRequest())

	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(115)))

	persisted, _ := orderRepo.GetByID(context.Background(), "order-1")
	require.NotNil(t, persisted)
	assert.True(t, persisted.Total.Equal(decimal.NewFromInt(115)),
		"El total corregido queda persistido en el pedido")
	assert.True(t, persisted.Subtotal.Equal(decimal.NewFromInt(100)))
}

func TestIssueInvoice_SecuencialesConsecutivos(t *testing.T) {
	uc, _, _ := invoiceFixture(t, decimal.NewFromInt(115))

	first, err := uc.IssueInvoice(context.Background(), invoiceRequest())
	require.NoError(t, err)
	second, err := uc.IssueInvoice(context.Background(), invoiceRequest())
	require.NoError(t, err)

	assert.Equal(t, "001-001-000000001", first.Number)
	assert.Equal(t, "001-001-000000002", second.Number)
	assert.NotEqual(t, first.AccessKey, second.AccessKey)
}
