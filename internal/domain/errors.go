package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateItem = errors.New("product is already in the shopping list")
	ErrEmptyCart     = errors.New("shopping list has no items")
	ErrNotYourStore  = errors.New("store is not administered by this user")
	ErrModelTaken    = errors.New("model name is already in use")
	ErrAddressTaken  = errors.New("store address is already in use")
	ErrNegativeStock = errors.New("stock amount cannot be negative")

	// ErrConflict marks a lost race on the assortment ledger. Retryable.
	ErrConflict = errors.New("concurrent stock update, please retry")
)

// QuantityError rejects a cart line resize that asks for more units than all
// stores together currently hold.
type QuantityError struct {
	ProductID string
	Requested int
	Available int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %s exceeds total stock %d", e.Requested, e.ProductID, e.Available)
}

// Shortfall is one cart line that failed stock validation at settlement time.
type Shortfall struct {
	ProductID string
	Model     string
	Requested int
	Available int
}

// StockError aborts a settlement. It lists every failing line so the cart
// view can render per-line messages.
type StockError struct {
	Shortfalls []Shortfall
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: want %d, have %d", s.Model, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
