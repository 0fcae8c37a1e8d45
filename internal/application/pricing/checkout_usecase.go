// Package pricing contiene los casos de uso de verificación de precios y
// reparto de ingresos del marketplace.
package pricing

import (
	"context"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	domainpricing "github.com/kevinvillajim/bcommerce-billing/internal/domain/pricing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	"github.com/kevinvillajim/bcommerce-billing/pkg/logger"
)

// CheckoutUseCase verifica en el backend el desglose monetario que calculó el
// frontend y deriva el reparto de ingresos por pedido.
type CheckoutUseCase struct {
	orderRepo repository.OrderRepository
	engine    *domainpricing.ReconciliationEngine
	splitter  *domainpricing.SplitCalculator
	fees      domainpricing.FeeSchedule
	log       *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(
	orderRepo repository.OrderRepository,
	engine *domainpricing.ReconciliationEngine,
	splitter *domainpricing.SplitCalculator,
	fees domainpricing.FeeSchedule,
	log *logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		orderRepo: orderRepo,
		engine:    engine,
		splitter:  splitter,
		fees:      fees,
		log:       log,
	}
}

// VerifyCheckout recomputa los totales desde las líneas y corrige el total
// reportado si diverge más allá de la tolerancia. No escribe nada: es la
// verificación previa al pago.
func (uc *CheckoutUseCase) VerifyCheckout(ctx context.Context, in dto.CheckoutVerifyRequest) (*dto.CheckoutVerifyResponse, error) {
	order := entity.Order{
		ID:            in.OrderID,
		ReportedTotal: in.ReportedTotal,
	}
	for _, l := range in.Lines {
		order.Lines = append(order.Lines, entity.OrderLine{
			ProductCode: l.ProductCode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	reconciled, warning := uc.engine.Reconcile(order)
	if warning != nil {
		uc.log.Warn().Str("order_id", warning.OrderID).
			Str("reported", warning.Reported.String()).
			Str("recomputed", warning.Recomputed.String()).
			Str("difference", warning.Difference.String()).
			Msg("pricing: total de checkout corregido")
	}

	return &dto.CheckoutVerifyResponse{
		OrderID:   reconciled.ID,
		Subtotal:  reconciled.Subtotal,
		TaxAmount: reconciled.TaxAmount,
		Total:     reconciled.Total,
		Corrected: warning != nil,
	}, nil
}

// GetRevenueSplit deriva el desglose de ingresos de un pedido persistido.
func (uc *CheckoutUseCase) GetRevenueSplit(ctx context.Context, orderID string) (*dto.RevenueSplitResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.orderRepo.GetLinesByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, *l)
	}

	split := uc.splitter.Split(*order, uc.fees)
	return &dto.RevenueSplitResponse{
		OrderID:        split.OrderID,
		SellerSubtotal: split.SellerSubtotal,
		SellerDiscount: split.SellerDiscount,
		ShippingIncome: split.ShippingIncome,
		PlatformFee:    split.PlatformFee,
		LogisticsFee:   split.LogisticsFee,
		SellerPayout:   split.SellerPayout,
	}, nil
}
