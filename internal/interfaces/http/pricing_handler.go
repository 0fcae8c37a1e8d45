package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kevinvillajim/bcommerce-billing/internal/application/dto"
	"github.com/kevinvillajim/bcommerce-billing/internal/application/pricing"
)

// PricingHandler maneja la verificación de checkout y el reparto de ingresos.
type PricingHandler struct {
	checkout *pricing.CheckoutUseCase
}

// NewPricingHandler construye el handler.
func NewPricingHandler(checkout *pricing.CheckoutUseCase) *PricingHandler {
	return &PricingHandler{checkout: checkout}
}

// VerifyCheckout recomputa el desglose monetario reportado por el frontend.
// No escribe nada; responde los totales correctos y si hubo corrección.
// POST /api/checkout/verify
func (h *PricingHandler) VerifyCheckout(c *fiber.Ctx) error {
	var in dto.CheckoutVerifyRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.checkout.VerifyCheckout(c.Context(), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}

// GetRevenueSplit devuelve el reparto de ingresos de un pedido.
// GET /api/orders/:id/revenue-split
func (h *PricingHandler) GetRevenueSplit(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	out, err := h.checkout.GetRevenueSplit(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(out)
}
