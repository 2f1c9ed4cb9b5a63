package handlers

import (
	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/config"
	"hamsterworld/internal/repos"
	"hamsterworld/internal/services"
)

type Deps struct {
	CatalogHandler      *CatalogHandler
	AvailabilityHandler *AvailabilityHandler
	CartHandler         *CartHandler
	CheckoutHandler     *CheckoutHandler
	StoreAdminHandler   *StoreAdminHandler
	AdminHandler        *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	storeRepo := repos.NewStoreRepo(db)
	assortRepo := repos.NewAssortmentRepo(db)
	cartRepo := repos.NewCartRepo(db)
	userRepo := repos.NewUserRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	assortSvc := services.NewAssortmentService(assortRepo, storeRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo, assortRepo)
	checkoutSvc := services.NewCheckoutService(db)

	return &Deps{
		CatalogHandler:      &CatalogHandler{Catalog: catalogSvc, Assort: assortSvc, Stores: storeRepo, Users: userRepo},
		AvailabilityHandler: &AvailabilityHandler{Assort: assortSvc},
		CartHandler:         &CartHandler{Cart: cartSvc},
		CheckoutHandler:     &CheckoutHandler{Cart: cartSvc, Checkout: checkoutSvc, Lists: cartRepo},
		StoreAdminHandler:   &StoreAdminHandler{Assort: assortSvc},
		AdminHandler:        &AdminHandler{Users: userRepo, Prods: prodRepo, Stores: storeRepo},
	}
}
