package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hamsterworld/internal/domain"
	applog "hamsterworld/internal/log"
	"hamsterworld/internal/services"
	"hamsterworld/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	data := fiber.Map{"Cart": cv}
	if c.Query("dup") != "" {
		data["Flash"] = "That product is already in your cart."
	}
	return render(c, "cart", data)
}

// POST /cart/items
func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}

	err := h.Cart.AddItem(u.ID, productID)
	switch {
	case errors.Is(err, domain.ErrDuplicateItem):
		return c.Redirect("/cart?dup=1")
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	case err != nil:
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": productID})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not add the item"})
	}
	applog.Info(c, "cart.add", map[string]any{"product": productID})
	return c.Redirect("/cart")
}

// POST /cart/items/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	u := currentUser(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Cart.RemoveItem(u.ID, productID); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product": productID})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not update the cart"})
	}
	return c.Redirect("/cart")
}

// POST /cart/quantities
func (h *CartHandler) UpdateQuantities(c *fiber.Ctx) error {
	u := currentUser(c)
	lineErrs, err := applyQuantities(c, h.Cart, u.ID)
	if err != nil {
		applog.Error(c, "cart.quantities.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not update the cart"})
	}
	if len(lineErrs) > 0 {
		return h.renderWithErrors(c, u.ID, lineErrs)
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) renderWithErrors(c *fiber.Ctx, userID string, lineErrs []string) error {
	cv, err := h.Cart.View(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	c.Status(fiber.StatusBadRequest)
	return render(c, "cart", fiber.Map{"Cart": cv, "Errors": lineErrs})
}

// applyQuantities walks the cart form's amount-<productID> fields and
// resizes each line. Per-line validation failures come back as messages for
// the re-rendered form; infrastructure errors abort.
func applyQuantities(c *fiber.Ctx, svc *services.CartService, userID string) ([]string, error) {
	var lineErrs []string
	var infraErr error

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		if infraErr != nil {
			return
		}
		k := string(key)
		if !strings.HasPrefix(k, "amount-") {
			return
		}
		productID, ok := validate.ID(strings.TrimPrefix(k, "amount-"))
		if !ok {
			lineErrs = append(lineErrs, "Invalid product reference in form.")
			return
		}
		amount, ok := validate.Amount(string(value))
		if !ok || amount < 1 {
			lineErrs = append(lineErrs, "Quantity must be a positive number.")
			return
		}

		err := svc.SetItemQuantity(userID, productID, amount)
		var qe *domain.QuantityError
		switch {
		case errors.As(err, &qe):
			lineErrs = append(lineErrs, qe.Error())
		case errors.Is(err, domain.ErrNotFound):
			// line vanished between render and submit; nothing to resize
		case err != nil:
			infraErr = err
		}
	})

	return lineErrs, infraErr
}
