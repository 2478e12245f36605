package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/services"
)

// DiscountHandler serves the public discount lookup endpoint.
type DiscountHandler struct {
	discounts *services.DiscountService
}

// NewDiscountHandler constructs a DiscountHandler.
func NewDiscountHandler(discounts *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// Lookup resolves a presented QR code to the user's available discounts.
func (h *DiscountHandler) Lookup(c *fiber.Ctx) error {
	code, err := uuid.Parse(c.Params("code"))
	if err != nil {
		return apperr.ValidationFailed("invalid code")
	}

	summary, err := h.discounts.Lookup(code)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": summary})
}
