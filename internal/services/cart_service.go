package services

import (
	"errors"

	"github.com/shopspring/decimal"

	"hamsterworld/internal/domain"
	"hamsterworld/internal/repos"
)

// CartService maintains the single open shopping list per user: distinct
// product lines, each with quantity >= 1.
type CartService struct {
	Carts  *repos.CartRepo
	Prods  *repos.ProductRepo
	Ledger *repos.AssortmentRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, ledger *repos.AssortmentRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods, Ledger: ledger}
}

func (s *CartService) OpenCart(userID string) (domain.ShoppingList, error) {
	return s.Carts.GetOrCreateOpen(userID)
}

// AddItem puts a product into the open list with quantity 1. The quantity is
// chosen by the user afterwards on the cart form, not at add time.
func (s *CartService) AddItem(userID, productID string) error {
	if _, err := s.Prods.Get(productID); err != nil {
		return err
	}
	list, err := s.Carts.GetOrCreateOpen(userID)
	if err != nil {
		return err
	}
	return s.Carts.AddItem(list.ID, productID)
}

// RemoveItem drops the product's line if present. Absent lines are fine.
func (s *CartService) RemoveItem(userID, productID string) error {
	list, err := s.Carts.Open(userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil // nothing in a cart that doesn't exist
	}
	if err != nil {
		return err
	}
	return s.Carts.RemoveItem(list.ID, productID)
}

// SetItemQuantity resizes a line from the cart form. The new amount must be
// positive and must not exceed the product's current total across stores.
func (s *CartService) SetItemQuantity(userID, productID string, amount int) error {
	if amount < 1 {
		return &domain.QuantityError{ProductID: productID, Requested: amount}
	}
	available, err := s.Ledger.TotalAcrossStores(productID)
	if err != nil {
		return err
	}
	if amount > available {
		return &domain.QuantityError{ProductID: productID, Requested: amount, Available: available}
	}
	list, err := s.Carts.Open(userID)
	if err != nil {
		return err
	}
	return s.Carts.SetAmount(list.ID, productID, amount)
}

type CartView struct {
	ListID string
	Lines  []repos.CartLine
	Total  decimal.Decimal
}

func (s *CartService) View(userID string) (CartView, error) {
	list, err := s.Carts.GetOrCreateOpen(userID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.Carts.Lines(list.ID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return CartView{ListID: list.ID, Lines: lines, Total: total}, nil
}

// History returns the user's settled shopping lists.
func (s *CartService) History(userID string) ([]domain.ShoppingList, error) {
	return s.Carts.ListClosedByUser(userID)
}
