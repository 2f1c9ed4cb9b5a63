package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hamsterworld/internal/domain"
	applog "hamsterworld/internal/log"
	"hamsterworld/internal/repos"
	"hamsterworld/internal/services"
	"hamsterworld/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Assort  *services.AssortmentService
	Stores  *repos.StoreRepo
	Users   *repos.UserRepo
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	stores, err := h.Stores.Count()
	if err != nil {
		applog.Error(c, "home.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong"})
	}
	employees, err := h.Users.CountByRole(domain.RoleStoreAdmin)
	if err != nil {
		applog.Error(c, "home.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong"})
	}
	return render(c, "home", fiber.Map{
		"StoresAmount":    stores,
		"EmployeesAmount": employees,
		"Categories":      domain.Categories,
	})
}

// GET /catalog/:category
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	cat := domain.Category(strings.ToUpper(c.Params("category")))
	if !cat.Valid() {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "No such category"})
	}

	f := filterFromQuery(c, cat)
	products, err := h.Catalog.List(cat, f)
	if err != nil {
		applog.Error(c, "catalog.list.fail", err, map[string]any{"category": string(cat)})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the catalog"})
	}
	return render(c, "catalog", fiber.Map{"Category": cat, "Products": products, "Filter": f})
}

// GET /product/:id
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	p, err := h.Catalog.GetProduct(id)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	if err != nil {
		applog.Error(c, "product.detail.fail", err, map[string]any{"product": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong"})
	}
	avail, err := h.Assort.Availability(id)
	if err != nil {
		applog.Error(c, "product.availability.fail", err, map[string]any{"product": id})
		avail = domain.Availability{Status: "OUT_OF_STOCK"}
	}
	return render(c, "product", fiber.Map{"Product": p, "Availability": avail})
}

func filterFromQuery(c *fiber.Ctx, cat domain.Category) repos.CatalogFilter {
	var f repos.CatalogFilter
	if v, ok := validate.Price(c.Query("min_price")); ok {
		f.MinPrice = v
	}
	if v, ok := validate.Price(c.Query("max_price")); ok {
		f.MaxPrice = v
	}
	if v, ok := validate.Model(c.Query("model")); ok {
		f.Model = strings.ToLower(v)
	}

	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		if n < 0 {
			return 0
		}
		return n
	}

	switch cat {
	case domain.CategoryCPU:
		for _, s := range strings.Split(c.Query("sockets"), ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Sockets = append(f.Sockets, s)
			}
		}
		f.MinCores = atoi(c.Query("min_cores"))
	case domain.CategoryGPU:
		f.MemoryType = strings.TrimSpace(c.Query("memory_type"))
		f.MinVRAMGB = atoi(c.Query("min_vram"))
	case domain.CategoryRAM:
		f.MemoryType = strings.TrimSpace(c.Query("memory_type"))
		f.MinCapacityGB = atoi(c.Query("min_capacity"))
	}
	return f
}
