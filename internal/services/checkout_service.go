package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hamsterworld/internal/domain"
	"hamsterworld/internal/repos"
)

// CheckoutService converts an open shopping list into a ledger decrement and
// a closed, priced sale record - or refuses the whole operation with no
// partial effects.
//
// Everything runs in one transaction: the stock reads that justify the
// decision and the writes that act on it commit together, so two checkouts
// racing for the last unit cannot both succeed. A guarded per-store UPDATE
// backs that up; a guard miss aborts with domain.ErrConflict.
type CheckoutService struct {
	DB *sqlx.DB
}

func NewCheckoutService(db *sqlx.DB) *CheckoutService { return &CheckoutService{DB: db} }

type Settlement struct {
	ListID     string
	FinalPrice decimal.Decimal
	TimeOfSale string
}

// Settle checks out the user's open shopping list.
//
// Failure modes: domain.ErrEmptyCart (no open list or no lines),
// *domain.StockError (one or more lines exceed current cross-store stock;
// nothing is written), domain.ErrConflict (lost a race; caller may retry).
func (s *CheckoutService) Settle(userID string) (Settlement, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return Settlement{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var list domain.ShoppingList
	err = tx.Get(&list, `
		SELECT id, user_id, time_of_sale, final_price, created_at, updated_at
		FROM shopping_lists
		WHERE user_id = ? AND time_of_sale IS NULL
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Settlement{}, domain.ErrEmptyCart
	}
	if err != nil {
		return Settlement{}, err
	}

	lines, err := repos.LinesFor(tx, list.ID)
	if err != nil {
		return Settlement{}, err
	}
	if len(lines) == 0 {
		return Settlement{}, domain.ErrEmptyCart
	}

	productIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}

	// One fetch for the whole product set, ordered (product_id, store_id).
	rows, err := repos.RowsForProducts(tx, productIDs)
	if err != nil {
		return Settlement{}, err
	}
	perProduct := make(map[string][]domain.Assortment, len(productIDs))
	for _, row := range rows {
		perProduct[row.ProductID] = append(perProduct[row.ProductID], row)
	}

	// Validate every line before touching the ledger. Any shortfall aborts
	// the whole settlement so the buyer can fix the stale cart.
	var shortfalls []domain.Shortfall
	for _, l := range lines {
		available := 0
		for _, row := range perProduct[l.ProductID] {
			available += row.Amount
		}
		if l.Amount > available {
			shortfalls = append(shortfalls, domain.Shortfall{
				ProductID: l.ProductID,
				Model:     l.Model,
				Requested: l.Amount,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return Settlement{}, &domain.StockError{Shortfalls: shortfalls}
	}

	// Greedy multi-store allocation: walk each line's stores in ascending
	// id, consuming min(storeAmount, remaining) from each. The sum drops by
	// exactly the requested amount and no counter goes negative.
	for _, l := range lines {
		remaining := l.Amount
		for _, row := range perProduct[l.ProductID] {
			if remaining == 0 {
				break
			}
			take := row.Amount
			if take > remaining {
				take = remaining
			}
			if take == 0 {
				continue
			}
			if err := repos.DecrementGuarded(tx, row.StoreID, l.ProductID, take); err != nil {
				return Settlement{}, err
			}
			remaining -= take
		}
		if remaining > 0 {
			// validated above inside the same transaction
			return Settlement{}, domain.ErrConflict
		}
	}

	// Price snapshot: prices as read in this transaction, fixed forever.
	final := decimal.Zero
	for _, l := range lines {
		final = final.Add(l.Subtotal())
	}

	soldAt := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.Exec(`
		UPDATE shopping_lists
		SET time_of_sale = ?, final_price = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND time_of_sale IS NULL
	`, soldAt, final.String(), list.ID)
	if err != nil {
		return Settlement{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Settlement{}, domain.ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return Settlement{}, err
	}
	return Settlement{ListID: list.ID, FinalPrice: final, TimeOfSale: soldAt}, nil
}
