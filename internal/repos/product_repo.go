package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, category, model, COALESCE(description,'') AS description,
  country, price, specs_json, created_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

// CatalogFilter narrows a per-category listing. Variant facets only apply to
// the matching category and are read out of the specs_json payload.
type CatalogFilter struct {
	MinPrice string // decimal strings; empty = unbounded
	MaxPrice string
	Model    string

	// CPU
	Sockets  []string
	MinCores int
	// GPU and RAM
	MemoryType string
	MinVRAMGB  int
	// RAM
	MinCapacityGB int
}

// ListByCategory returns at most 15 catalog rows, newest first, like the
// storefront's category pages.
func (r *ProductRepo) ListByCategory(cat domain.Category, f CatalogFilter) ([]domain.Product, error) {
	where := `category = ?`
	args := []any{string(cat)}

	if f.MinPrice != "" {
		where += ` AND CAST(price AS REAL) >= CAST(? AS REAL)`
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice != "" {
		where += ` AND CAST(price AS REAL) <= CAST(? AS REAL)`
		args = append(args, f.MaxPrice)
	}
	if f.Model != "" {
		where += ` AND LOWER(model) LIKE ?`
		args = append(args, "%"+f.Model+"%")
	}

	switch cat {
	case domain.CategoryCPU:
		if len(f.Sockets) > 0 {
			in, inArgs, err := sqlx.In(`json_extract(specs_json,'$.socket') IN (?)`, f.Sockets)
			if err != nil {
				return nil, err
			}
			where += ` AND ` + in
			args = append(args, inArgs...)
		}
		if f.MinCores > 0 {
			where += ` AND json_extract(specs_json,'$.number_of_cores') >= ?`
			args = append(args, f.MinCores)
		}
	case domain.CategoryGPU:
		if f.MemoryType != "" {
			where += ` AND json_extract(specs_json,'$.memory_type') = ?`
			args = append(args, f.MemoryType)
		}
		if f.MinVRAMGB > 0 {
			where += ` AND json_extract(specs_json,'$.vram_gb') >= ?`
			args = append(args, f.MinVRAMGB)
		}
	case domain.CategoryRAM:
		if f.MemoryType != "" {
			where += ` AND json_extract(specs_json,'$.memory_type') = ?`
			args = append(args, f.MemoryType)
		}
		if f.MinCapacityGB > 0 {
			where += ` AND json_extract(specs_json,'$.capacity_gb') >= ?`
			args = append(args, f.MinCapacityGB)
		}
	}

	query := `
	  SELECT ` + productCols + `
	  FROM products
	  WHERE ` + where + `
	  ORDER BY created_at DESC
	  LIMIT 15`

	var out []domain.Product
	err := r.db.Select(&out, query, args...)
	return out, err
}

// Create inserts a product and eagerly fills the assortment ledger with an
// amount-0 row for every existing store, in one transaction.
func (r *ProductRepo) Create(p domain.Product) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO products(id, category, model, description, country, price, specs_json)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, p.ID, string(p.Category), p.Model, p.Description, p.Country, p.Price.String(), p.SpecsJSON)
	if isUniqueViolation(err) {
		return domain.ErrModelTaken
	}
	if err != nil {
		return err
	}

	if err := FillForNewProduct(tx, p.ID); err != nil {
		return err
	}
	return tx.Commit()
}
