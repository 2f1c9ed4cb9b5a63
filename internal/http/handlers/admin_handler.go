package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hamsterworld/internal/domain"
	applog "hamsterworld/internal/log"
	"hamsterworld/internal/repos"
	"hamsterworld/internal/validate"
)

type AdminHandler struct {
	Users  *repos.UserRepo
	Prods  *repos.ProductRepo
	Stores *repos.StoreRepo
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return render(c, "admin_dashboard", fiber.Map{})
}

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users, "Roles": domain.AssignableRoles})
}

// POST /admin/users/:id/role
//
// Changing a role also blacklists the user's live sessions; they must log
// in again to act under the new role.
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	id := c.Params("id")
	role := c.FormValue("role")
	if id == "" || !domain.ValidRole(role) {
		return c.Status(fiber.StatusBadRequest).SendString("missing id or bad role")
	}
	if err := h.Users.SetRole(id, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "User not found"})
		}
		applog.Error(c, "admin.users.role.fail", err, map[string]any{"user_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("could not change role")
	}
	applog.Audit(c, "admin.users.role", map[string]any{"user_id": id, "role": role})
	return c.Redirect("/admin/users")
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	cat := domain.Category(strings.ToUpper(c.FormValue("category")))
	model, okModel := validate.Model(c.FormValue("model"))
	priceStr, okPrice := validate.Price(c.FormValue("price"))
	if !cat.Valid() || !okModel || !okPrice {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid price")
	}

	specs, err := specsFromForm(c, cat)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid specs")
	}

	p := domain.Product{
		ID:          uuid.NewString(),
		Category:    cat,
		Model:       model,
		Description: strings.TrimSpace(c.FormValue("description")),
		Country:     strings.TrimSpace(c.FormValue("country")),
		Price:       price,
		SpecsJSON:   specs,
	}
	if p.Country == "" {
		p.Country = "RU"
	}

	if err := h.Prods.Create(p); err != nil {
		if errors.Is(err, domain.ErrModelTaken) {
			return c.Status(fiber.StatusConflict).SendString("model name already exists")
		}
		applog.Error(c, "admin.products.create.fail", err, map[string]any{"model": model})
		return c.Status(fiber.StatusBadRequest).SendString("could not create the product")
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": p.ID, "model": model})
	return c.Redirect("/admin")
}

// POST /admin/stores
func (h *AdminHandler) CreateStore(c *fiber.Ctx) error {
	name, okName := validate.Model(c.FormValue("name"))
	address := strings.TrimSpace(c.FormValue("address"))
	opens, okOpens := validate.TimeOfDay(c.FormValue("opensAt"))
	closes, okCloses := validate.TimeOfDay(c.FormValue("closesAt"))
	if !okName || address == "" || !okOpens || !okCloses {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	lat, _ := strconv.ParseFloat(c.FormValue("lat"), 64)
	lng, _ := strconv.ParseFloat(c.FormValue("lng"), 64)

	s := domain.Store{
		ID:       uuid.NewString(),
		Name:     name,
		Address:  address,
		Lat:      lat,
		Lng:      lng,
		OpensAt:  opens,
		ClosesAt: closes,
	}
	if err := h.Stores.Create(s); err != nil {
		if errors.Is(err, domain.ErrAddressTaken) {
			return c.Status(fiber.StatusConflict).SendString("address already in use")
		}
		applog.Error(c, "admin.stores.create.fail", err, map[string]any{"address": address})
		return c.Status(fiber.StatusBadRequest).SendString("could not create the store")
	}
	applog.Audit(c, "admin.stores.create", map[string]any{"store": s.ID})
	return c.Redirect("/admin")
}

func specsFromForm(c *fiber.Ctx, cat domain.Category) (string, error) {
	atoi := func(field string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(c.FormValue(field)))
	}

	var payload any
	switch cat {
	case domain.CategoryCPU:
		cores, err := atoi("cores")
		if err != nil {
			return "", err
		}
		clock, err := atoi("clockMHz")
		if err != nil {
			return "", err
		}
		payload = domain.CPUSpecs{
			Socket:        strings.TrimSpace(c.FormValue("socket")),
			NumberOfCores: cores,
			ClockRateMHz:  clock,
		}
	case domain.CategoryGPU:
		vram, err := atoi("vramGB")
		if err != nil {
			return "", err
		}
		payload = domain.GPUSpecs{
			VRAMGB:     vram,
			MemoryType: strings.TrimSpace(c.FormValue("memoryType")),
		}
	case domain.CategoryRAM:
		capacity, err := atoi("capacityGB")
		if err != nil {
			return "", err
		}
		payload = domain.RAMSpecs{
			MemoryType: strings.TrimSpace(c.FormValue("memoryType")),
			CapacityGB: capacity,
		}
	}

	b, err := json.Marshal(payload)
	return string(b), err
}
