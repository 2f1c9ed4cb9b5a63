package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/config"
	"hamsterworld/internal/http/handlers"
	"hamsterworld/internal/repos"
	"hamsterworld/internal/services"
)

// newTestApp wires the full route table against a seeded in-memory database.
// CSRF is left out so tests can POST forms directly.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, config.Config{}, authSvc)

	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/catalog/:category", deps.CatalogHandler.List)
	app.Get("/product/:id", deps.CatalogHandler.Detail)
	app.Get("/api/v1/availability", deps.AvailabilityHandler.Check)

	cart := app.Group("", handlers.RequireUser(authSvc))
	cart.Get("/cart", deps.CartHandler.View)
	cart.Post("/cart/items", deps.CartHandler.Add)
	cart.Post("/cart/items/remove", deps.CartHandler.Remove)
	cart.Post("/cart/quantities", deps.CartHandler.UpdateQuantities)
	cart.Post("/checkout", deps.CheckoutHandler.Confirm)
	cart.Get("/purchase/:id", deps.CheckoutHandler.Purchase)
	cart.Get("/purchases", deps.CheckoutHandler.History)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)

	storeAdmin := app.Group("/store-admin", handlers.RequireStoreAdmin(authSvc))
	storeAdmin.Get("/", deps.StoreAdminHandler.Stores)
	storeAdmin.Get("/:storeID/assortment", deps.StoreAdminHandler.Assortment)
	storeAdmin.Post("/:storeID/assortment", deps.StoreAdminHandler.Update)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/", deps.AdminHandler.Dashboard)

	return app, db
}

// bindSession logs a seeded user in by writing the session row directly.
func bindSession(t *testing.T, db *sqlx.DB, sid, userID string) {
	t.Helper()
	if err := repos.NewUserRepo(db).BindSession(sid, userID); err != nil {
		t.Fatal(err)
	}
}

func getAs(t *testing.T, app *fiber.App, sid, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func postFormAs(t *testing.T, app *fiber.App, sid, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}
