package domain

import (
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCPU Category = "CPU"
	CategoryGPU Category = "GPU"
	CategoryRAM Category = "RAM"
)

// Categories in the order the catalog shows them.
var Categories = []Category{CategoryCPU, CategoryGPU, CategoryRAM}

func (c Category) Valid() bool {
	return c == CategoryCPU || c == CategoryGPU || c == CategoryRAM
}

type CPUSpecs struct {
	Socket        string `json:"socket"`
	NumberOfCores int    `json:"number_of_cores"`
	ClockRateMHz  int    `json:"clock_rate_mhz"`
}

type GPUSpecs struct {
	VRAMGB     int    `json:"vram_gb"`
	MemoryType string `json:"memory_type"`
}

type RAMSpecs struct {
	MemoryType string `json:"memory_type"`
	CapacityGB int    `json:"capacity_gb"`
}

// Product is a tagged union over the CPU/GPU/RAM variants: Category says
// which payload SpecsJSON holds. The cart and the ledger only ever use the id.
type Product struct {
	ID          string          `db:"id"`
	Category    Category        `db:"category"`
	Model       string          `db:"model"` // globally unique display name
	Description string          `db:"description"`
	Country     string          `db:"country"`
	Price       decimal.Decimal `db:"price"`
	SpecsJSON   string          `db:"specs_json"`
	CreatedAt   string          `db:"created_at"`
}

func (p Product) CPU() (CPUSpecs, error) {
	var s CPUSpecs
	err := json.Unmarshal([]byte(p.SpecsJSON), &s)
	return s, err
}

func (p Product) GPU() (GPUSpecs, error) {
	var s GPUSpecs
	err := json.Unmarshal([]byte(p.SpecsJSON), &s)
	return s, err
}

func (p Product) RAM() (RAMSpecs, error) {
	var s RAMSpecs
	err := json.Unmarshal([]byte(p.SpecsJSON), &s)
	return s, err
}

type Store struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Address   string  `db:"address"`
	Lat       float64 `db:"lat"`
	Lng       float64 `db:"lng"`
	OpensAt   string  `db:"opens_at"`
	ClosesAt  string  `db:"closes_at"`
	CreatedAt string  `db:"created_at"`
}

// Assortment is the stock counter for one product at one store.
type Assortment struct {
	StoreID   string `db:"store_id"`
	ProductID string `db:"product_id"`
	Amount    int    `db:"amount"`
	UpdatedAt string `db:"updated_at"`
}

// ShoppingList is a user's cart. TimeOfSale NULL means the list is still
// open; once set, the list is a closed, priced sale record and never mutates.
type ShoppingList struct {
	ID         string          `db:"id"`
	UserID     string          `db:"user_id"`
	TimeOfSale sql.NullString  `db:"time_of_sale"`
	FinalPrice decimal.Decimal `db:"final_price"`
	CreatedAt  string          `db:"created_at"`
	UpdatedAt  sql.NullString  `db:"updated_at"`
}

func (l ShoppingList) Open() bool { return !l.TimeOfSale.Valid }

type ShoppingListItem struct {
	ShoppingListID string `db:"shopping_list_id"`
	ProductID      string `db:"product_id"`
	Amount         int    `db:"amount"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Total  int    `json:"total"`
}
