package repos_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"hamsterworld/internal/domain"
	"hamsterworld/internal/repos"
)

func openSeeded(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAmountMissingRow(t *testing.T) {
	db := openSeeded(t)
	r := repos.NewAssortmentRepo(db)

	if _, err := r.Amount("st-central", "no-such-product"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("amount: %v, want ErrNotFound", err)
	}
}

func TestSetAmountRequiresExistingRow(t *testing.T) {
	db := openSeeded(t)
	r := repos.NewAssortmentRepo(db)

	if err := r.SetAmount("st-central", "no-such-product", 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("set missing: %v, want ErrNotFound", err)
	}

	if err := r.SetAmount("st-central", "cpu-r5-5600", 7); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Amount("st-central", "cpu-r5-5600"); n != 7 {
		t.Fatalf("amount = %d, want 7", n)
	}
}

func TestDecrementGuarded(t *testing.T) {
	db := openSeeded(t)
	r := repos.NewAssortmentRepo(db)

	// st-north holds 3 units; taking 4 must fail and leave the row alone.
	err := repos.DecrementGuarded(db, "st-north", "cpu-r5-5600", 4)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("over-decrement: %v, want ErrConflict", err)
	}
	if n, _ := r.Amount("st-north", "cpu-r5-5600"); n != 3 {
		t.Fatalf("amount after failed decrement = %d, want 3", n)
	}

	if err := repos.DecrementGuarded(db, "st-north", "cpu-r5-5600", 3); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Amount("st-north", "cpu-r5-5600"); n != 0 {
		t.Fatalf("amount = %d, want 0", n)
	}
}

func TestFillForNewProduct(t *testing.T) {
	db := openSeeded(t)
	r := repos.NewAssortmentRepo(db)

	if _, err := db.Exec(`
		INSERT INTO products(id, category, model, price, specs_json)
		VALUES('cpu-new', 'CPU', 'Ryzen 7 5800X', '249.00', '{"socket":"AM4","number_of_cores":8,"clock_rate_mhz":3800}')
	`); err != nil {
		t.Fatal(err)
	}
	if err := repos.FillForNewProduct(db, "cpu-new"); err != nil {
		t.Fatal(err)
	}

	// Every existing store got a zero-amount row.
	for _, store := range []string{"st-central", "st-north"} {
		n, err := r.Amount(store, "cpu-new")
		if err != nil {
			t.Fatalf("%s: %v", store, err)
		}
		if n != 0 {
			t.Fatalf("%s amount = %d, want 0", store, n)
		}
	}
	if total, _ := r.TotalAcrossStores("cpu-new"); total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}

	// Running it again is harmless.
	if err := repos.FillForNewProduct(db, "cpu-new"); err != nil {
		t.Fatal(err)
	}
}
