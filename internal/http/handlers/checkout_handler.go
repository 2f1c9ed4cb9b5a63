package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hamsterworld/internal/domain"
	applog "hamsterworld/internal/log"
	"hamsterworld/internal/repos"
	"hamsterworld/internal/services"
)

type CheckoutHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Lists    *repos.CartRepo
}

// POST /checkout
//
// Applies the submitted quantities, then settles the cart. Any stock
// problem re-renders the cart with per-line messages and no ledger change.
func (h *CheckoutHandler) Confirm(c *fiber.Ctx) error {
	u := currentUser(c)

	lineErrs, err := applyQuantities(c, h.Cart, u.ID)
	if err != nil {
		applog.Error(c, "checkout.quantities.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not update the cart"})
	}
	if len(lineErrs) > 0 {
		return h.renderCart(c, u.ID, lineErrs)
	}

	settlement, err := h.Checkout.Settle(u.ID)
	var stockErr *domain.StockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return c.Redirect("/cart")
	case errors.As(err, &stockErr):
		msgs := make([]string, 0, len(stockErr.Shortfalls))
		for _, sf := range stockErr.Shortfalls {
			msgs = append(msgs, sf.Model+": only "+strconv.Itoa(sf.Available)+" left, you asked for "+strconv.Itoa(sf.Requested))
		}
		applog.Info(c, "checkout.shortfall", map[string]any{"lines": len(stockErr.Shortfalls)})
		return h.renderCart(c, u.ID, msgs)
	case errors.Is(err, domain.ErrConflict):
		return h.renderCart(c, u.ID, []string{"Stock changed while checking out. Please try again."})
	case err != nil:
		applog.Error(c, "checkout.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Checkout failed. Please try again."})
	}

	applog.Audit(c, "checkout.settle", map[string]any{
		"list_id":     settlement.ListID,
		"final_price": settlement.FinalPrice.String(),
	})
	return c.Redirect("/purchase/" + settlement.ListID)
}

// GET /purchase/:id
func (h *CheckoutHandler) Purchase(c *fiber.Ctx) error {
	u := currentUser(c)
	listID := c.Params("id")

	list, err := h.Lists.Get(listID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Purchase not found"})
	}
	if list.UserID != u.ID && u.Role != domain.RoleAdmin {
		applog.Security(c, "access.denied.purchase", map[string]any{"list_id": listID})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Purchase not found"})
	}
	lines, err := h.Lists.Lines(listID)
	if err != nil {
		applog.Error(c, "purchase.view.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the purchase"})
	}
	return render(c, "purchase", fiber.Map{"List": list, "Lines": lines})
}

// GET /purchases
func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	lists, err := h.Cart.History(u.ID)
	if err != nil {
		applog.Error(c, "purchases.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load purchases"})
	}
	return render(c, "purchases", fiber.Map{"Lists": lists})
}

func (h *CheckoutHandler) renderCart(c *fiber.Ctx, userID string, msgs []string) error {
	cv, err := h.Cart.View(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	c.Status(fiber.StatusBadRequest)
	return render(c, "cart", fiber.Map{"Cart": cv, "Errors": msgs})
}
