package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/domain"
)

// AssortmentRepo is the per-(store, product) stock ledger. It is the only
// source of truth for how much of a product exists at a store.
type AssortmentRepo struct{ db *sqlx.DB }

func NewAssortmentRepo(db *sqlx.DB) *AssortmentRepo { return &AssortmentRepo{db: db} }

// Row used by the store administrator assortment page.
type AssortmentRow struct {
	StoreID   string `db:"store_id"`
	ProductID string `db:"product_id"`
	Model     string `db:"model"`
	Amount    int    `db:"amount"`
}

// Amount is a point read. A missing row is a data-integrity problem (every
// coexisting pair has a row), so it surfaces as domain.ErrNotFound rather
// than falling back to zero.
func (r *AssortmentRepo) Amount(storeID, productID string) (int, error) {
	var amount int
	err := r.db.Get(&amount, `
		SELECT amount FROM assortments
		WHERE store_id = ? AND product_id = ?
	`, storeID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// TotalAcrossStores sums a product's stock over every store carrying it.
func (r *AssortmentRepo) TotalAcrossStores(productID string) (int, error) {
	var total int
	err := r.db.Get(&total, `
		SELECT COALESCE(SUM(amount),0) FROM assortments WHERE product_id = ?
	`, productID)
	return total, err
}

// SetAmount is the administrator stock correction. The row must already
// exist; corrections never create ledger entries.
func (r *AssortmentRepo) SetAmount(storeID, productID string, amount int) error {
	res, err := r.db.Exec(`
		UPDATE assortments
		SET amount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_id = ?
	`, amount, storeID, productID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStore returns the ledger rows for one store with product models,
// ordered for the assortment management page.
func (r *AssortmentRepo) ListByStore(storeID string) ([]AssortmentRow, error) {
	var rows []AssortmentRow
	err := r.db.Select(&rows, `
		SELECT a.store_id, a.product_id, p.model, a.amount
		FROM assortments a
		JOIN products p ON p.id = a.product_id
		WHERE a.store_id = ?
		ORDER BY p.model
	`, storeID)
	return rows, err
}

// RowsForProducts loads every ledger row for the given product set in one
// query, in stable (product_id, store_id) order. Settlement walks stores in
// exactly this order.
func RowsForProducts(q sqlx.Queryer, productIDs []string) ([]domain.Assortment, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT store_id, product_id, amount, COALESCE(updated_at,'') AS updated_at
		FROM assortments
		WHERE product_id IN (?)
		ORDER BY product_id, store_id
	`, productIDs)
	if err != nil {
		return nil, err
	}
	var rows []domain.Assortment
	err = sqlx.Select(q, &rows, query, args...)
	return rows, err
}

// DecrementGuarded subtracts "by" units from one store's counter, but only
// if at least that many are present. Zero rows affected means a concurrent
// writer got there first; the caller must abort its transaction.
func DecrementGuarded(e sqlx.Execer, storeID, productID string, by int) error {
	res, err := e.Exec(`
		UPDATE assortments
		SET amount = amount - ?, updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_id = ? AND amount >= ?
	`, by, storeID, productID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

// FillForNewProduct inserts an amount-0 row for the product at every
// existing store. Runs inside the product-creation transaction.
func FillForNewProduct(e sqlx.Execer, productID string) error {
	_, err := e.Exec(`
		INSERT INTO assortments(store_id, product_id, amount)
		SELECT id, ?, 0 FROM stores WHERE true
		ON CONFLICT(store_id, product_id) DO NOTHING
	`, productID)
	return err
}

// FillForNewStore inserts an amount-0 row for every existing product at the
// store. Runs inside the store-creation transaction.
func FillForNewStore(e sqlx.Execer, storeID string) error {
	_, err := e.Exec(`
		INSERT INTO assortments(store_id, product_id, amount)
		SELECT ?, id, 0 FROM products WHERE true
		ON CONFLICT(store_id, product_id) DO NOTHING
	`, storeID)
	return err
}
