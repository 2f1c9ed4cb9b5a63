package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hamsterworld/internal/domain"
	applog "hamsterworld/internal/log"
	"hamsterworld/internal/services"
	"hamsterworld/internal/validate"
)

// StoreAdminHandler is the per-store stock console. Route-level guard admits
// STORE_ADMIN and ADMIN; per-store ownership is checked by the service.
type StoreAdminHandler struct {
	Assort *services.AssortmentService
}

// GET /store-admin
func (h *StoreAdminHandler) Stores(c *fiber.Ctx) error {
	u := currentUser(c)
	stores, err := h.Assort.StoresFor(u)
	if err != nil {
		applog.Error(c, "storeadmin.stores.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load stores"})
	}
	return render(c, "storeadmin_stores", fiber.Map{"Stores": stores})
}

// GET /store-admin/:storeID/assortment
func (h *StoreAdminHandler) Assortment(c *fiber.Ctx) error {
	u := currentUser(c)
	storeID, ok := validate.ID(c.Params("storeID"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Store not found"})
	}

	rows, err := h.Assort.Assortment(u, storeID)
	if errors.Is(err, domain.ErrNotYourStore) {
		applog.Security(c, "storeadmin.assortment.denied", map[string]any{"store": storeID})
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
	}
	if err != nil {
		applog.Error(c, "storeadmin.assortment.fail", err, map[string]any{"store": storeID})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the assortment"})
	}
	return render(c, "storeadmin_assortment", fiber.Map{"StoreID": storeID, "Rows": rows})
}

// POST /store-admin/:storeID/assortment
func (h *StoreAdminHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	storeID, okStore := validate.ID(c.Params("storeID"))
	productID, okProd := validate.ID(c.FormValue("productId"))
	amount, okAmount := validate.Amount(c.FormValue("amount"))
	if !okStore || !okProd || !okAmount {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}

	err := h.Assort.Correct(u, storeID, productID, amount)
	switch {
	case errors.Is(err, domain.ErrNegativeStock):
		return c.Status(fiber.StatusBadRequest).SendString("amount cannot be negative")
	case errors.Is(err, domain.ErrNotYourStore):
		applog.Security(c, "storeadmin.correct.denied", map[string]any{"store": storeID})
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "No such assortment entry"})
	case err != nil:
		applog.Error(c, "storeadmin.correct.fail", err, map[string]any{"store": storeID, "product": productID})
		return c.Status(fiber.StatusBadRequest).SendString("could not save the amount")
	}

	applog.Audit(c, "storeadmin.correct", map[string]any{"store": storeID, "product": productID, "amount": amount})
	return c.Redirect("/store-admin/" + storeID + "/assortment")
}
