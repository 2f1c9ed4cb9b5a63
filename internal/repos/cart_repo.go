package repos

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hamsterworld/internal/domain"
)

// CartRepo stores shopping lists. A user has many lists over time but at
// most one open one; the partial unique index on (user_id) WHERE
// time_of_sale IS NULL backs that invariant.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartLine struct {
	ProductID string          `db:"product_id"`
	Model     string          `db:"model"`
	Category  string          `db:"category"`
	Amount    int             `db:"amount"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Amount)))
}

const shoppingListCols = `id, user_id, time_of_sale, final_price, created_at, updated_at`

// Open returns the user's open shopping list, or domain.ErrNotFound.
func (r *CartRepo) Open(userID string) (domain.ShoppingList, error) {
	var l domain.ShoppingList
	err := r.db.Get(&l, `
		SELECT `+shoppingListCols+` FROM shopping_lists
		WHERE user_id = ? AND time_of_sale IS NULL
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ShoppingList{}, domain.ErrNotFound
	}
	return l, err
}

// GetOrCreateOpen returns the open list, creating an empty one if needed.
// The insert is persisted immediately so the generated id is usable by the
// rest of the request. Losing the create race falls back to the winner's row.
func (r *CartRepo) GetOrCreateOpen(userID string) (domain.ShoppingList, error) {
	l, err := r.Open(userID)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.ShoppingList{}, err
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO shopping_lists(id, user_id, final_price, created_at)
		VALUES(?, ?, '0', CURRENT_TIMESTAMP)
	`, id, userID)
	if isUniqueViolation(err) {
		return r.Open(userID)
	}
	if err != nil {
		return domain.ShoppingList{}, err
	}
	return r.Open(userID)
}

// Get loads one list by id (open or closed).
func (r *CartRepo) Get(listID string) (domain.ShoppingList, error) {
	var l domain.ShoppingList
	err := r.db.Get(&l, `
		SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?
	`, listID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ShoppingList{}, domain.ErrNotFound
	}
	return l, err
}

// AddItem inserts a line with amount 1. The composite key enforces one line
// per product, so a duplicate add (including two racing requests) comes back
// as domain.ErrDuplicateItem.
func (r *CartRepo) AddItem(listID, productID string) error {
	_, err := r.db.Exec(`
		INSERT INTO shopping_list_items(shopping_list_id, product_id, amount, created_at)
		VALUES(?, ?, 1, CURRENT_TIMESTAMP)
	`, listID, productID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateItem
	}
	return err
}

// RemoveItem deletes a line. Removing an absent line is a no-op, not an
// error, so repeated removes are idempotent.
func (r *CartRepo) RemoveItem(listID, productID string) error {
	_, err := r.db.Exec(`
		DELETE FROM shopping_list_items
		WHERE shopping_list_id = ? AND product_id = ?
	`, listID, productID)
	return err
}

// SetAmount resizes an existing line.
func (r *CartRepo) SetAmount(listID, productID string, amount int) error {
	res, err := r.db.Exec(`
		UPDATE shopping_list_items
		SET amount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE shopping_list_id = ? AND product_id = ?
	`, amount, listID, productID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Lines returns the list's lines joined with catalog data, in stable order.
func (r *CartRepo) Lines(listID string) ([]CartLine, error) {
	return LinesFor(r.db, listID)
}

// LinesFor is the transaction-friendly variant used by settlement, which
// must read lines and prices inside its own transaction.
func LinesFor(q sqlx.Queryer, listID string) ([]CartLine, error) {
	lines := []CartLine{}
	err := sqlx.Select(q, &lines, `
		SELECT i.product_id, p.model, p.category, i.amount, p.price AS unit_price
		FROM shopping_list_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.shopping_list_id = ?
		ORDER BY p.model
	`, listID)
	return lines, err
}

// ListClosedByUser returns the user's settled lists, newest sale first.
func (r *CartRepo) ListClosedByUser(userID string) ([]domain.ShoppingList, error) {
	var out []domain.ShoppingList
	err := r.db.Select(&out, `
		SELECT `+shoppingListCols+` FROM shopping_lists
		WHERE user_id = ? AND time_of_sale IS NOT NULL
		ORDER BY datetime(time_of_sale) DESC
	`, userID)
	return out, err
}
