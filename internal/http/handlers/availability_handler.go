package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hamsterworld/internal/services"
	"hamsterworld/internal/validate"
)

type AvailabilityHandler struct {
	Assort *services.AssortmentService
}

// GET /api/v1/availability?productId=...
//
// Reports the cross-store total so the storefront can show the inventory
// ceiling before the buyer commits quantities.
func (h *AvailabilityHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}

	avail, err := h.Assort.Availability(productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(avail)
}
