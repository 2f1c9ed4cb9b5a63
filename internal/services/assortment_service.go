package services

import (
	"hamsterworld/internal/domain"
	"hamsterworld/internal/repos"
)

// AssortmentService fronts the stock ledger for the storefront (availability
// badge) and the store administrator console (manual corrections).
type AssortmentService struct {
	Ledger *repos.AssortmentRepo
	Stores *repos.StoreRepo
}

func NewAssortmentService(ledger *repos.AssortmentRepo, stores *repos.StoreRepo) *AssortmentService {
	return &AssortmentService{Ledger: ledger, Stores: stores}
}

// Availability maps a product's cross-store total to a storefront badge.
func (s *AssortmentService) Availability(productID string) (domain.Availability, error) {
	total, err := s.Ledger.TotalAcrossStores(productID)
	if err != nil {
		return domain.Availability{}, err
	}
	status := "OUT_OF_STOCK"
	switch {
	case total >= 5:
		status = "IN_STOCK"
	case total > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Total: total}, nil
}

// Correct overwrites one (store, product) counter on behalf of an
// administrator. Platform admins may touch any store; store admins only the
// stores they are bound to. The authorization check runs before any write.
func (s *AssortmentService) Correct(actor *domain.User, storeID, productID string, amount int) error {
	if amount < 0 {
		return domain.ErrNegativeStock
	}
	if actor == nil || !actor.CanAdministerStores() {
		return domain.ErrNotYourStore
	}
	if actor.Role != domain.RoleAdmin {
		ok, err := s.Stores.IsAdministrator(storeID, actor.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotYourStore
		}
	}
	return s.Ledger.SetAmount(storeID, productID, amount)
}

// StoresFor lists the stores whose assortment the actor may manage.
func (s *AssortmentService) StoresFor(actor *domain.User) ([]domain.Store, error) {
	if actor != nil && actor.Role == domain.RoleAdmin {
		return s.Stores.List()
	}
	return s.Stores.AdministeredBy(actor.ID)
}

// Assortment returns the ledger rows for one store if the actor may see it.
func (s *AssortmentService) Assortment(actor *domain.User, storeID string) ([]repos.AssortmentRow, error) {
	if actor == nil || !actor.CanAdministerStores() {
		return nil, domain.ErrNotYourStore
	}
	if actor.Role != domain.RoleAdmin {
		ok, err := s.Stores.IsAdministrator(storeID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrNotYourStore
		}
	}
	return s.Ledger.ListByStore(storeID)
}
