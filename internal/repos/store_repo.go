package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/domain"
)

type StoreRepo struct{ db *sqlx.DB }

func NewStoreRepo(db *sqlx.DB) *StoreRepo { return &StoreRepo{db: db} }

const storeCols = `id, name, address, lat, lng, opens_at, closes_at, created_at`

func (r *StoreRepo) Get(id string) (domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, `SELECT `+storeCols+` FROM stores WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Store{}, domain.ErrNotFound
	}
	return s, err
}

func (r *StoreRepo) List() ([]domain.Store, error) {
	var out []domain.Store
	err := r.db.Select(&out, `SELECT `+storeCols+` FROM stores ORDER BY name`)
	return out, err
}

func (r *StoreRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM stores`)
	return n, err
}

// Create inserts a store and eagerly fills the assortment ledger with an
// amount-0 row for every existing product, in one transaction.
func (r *StoreRepo) Create(s domain.Store) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO stores(id, name, address, lat, lng, opens_at, closes_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Address, s.Lat, s.Lng, s.OpensAt, s.ClosesAt)
	if isUniqueViolation(err) {
		return domain.ErrAddressTaken
	}
	if err != nil {
		return err
	}

	if err := FillForNewStore(tx, s.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// AdministeredBy lists the stores a user administers.
func (r *StoreRepo) AdministeredBy(userID string) ([]domain.Store, error) {
	var out []domain.Store
	err := r.db.Select(&out, `
		SELECT s.id, s.name, s.address, s.lat, s.lng, s.opens_at, s.closes_at, s.created_at
		FROM stores s
		JOIN store_admins sa ON sa.store_id = s.id
		WHERE sa.user_id = ?
		ORDER BY s.name
	`, userID)
	return out, err
}

// IsAdministrator reports whether the user is bound to the store.
func (r *StoreRepo) IsAdministrator(storeID, userID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
		SELECT COUNT(*) FROM store_admins WHERE store_id = ? AND user_id = ?
	`, storeID, userID)
	return n > 0, err
}

// BindAdministrator attaches a user to a store. Duplicate binds are no-ops.
func (r *StoreRepo) BindAdministrator(storeID, userID string) error {
	_, err := r.db.Exec(`
		INSERT INTO store_admins(store_id, user_id) VALUES(?, ?)
		ON CONFLICT(store_id, user_id) DO NOTHING
	`, storeID, userID)
	return err
}

func (r *StoreRepo) UnbindAdministrator(storeID, userID string) error {
	_, err := r.db.Exec(`
		DELETE FROM store_admins WHERE store_id = ? AND user_id = ?
	`, storeID, userID)
	return err
}
