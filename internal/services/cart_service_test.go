package services_test

import (
	"errors"
	"testing"

	"hamsterworld/internal/domain"
)

func TestAddItemDuplicate(t *testing.T) {
	db := seededDB(t)
	svc := newCartSvc(db)

	if err := svc.AddItem("u-alice", "cpu-r5-5600"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem("u-alice", "cpu-r5-5600"); !errors.Is(err, domain.ErrDuplicateItem) {
		t.Fatalf("second add: %v, want ErrDuplicateItem", err)
	}

	cv, err := svc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Lines[0].Amount != 1 {
		t.Fatalf("unexpected cart %+v", cv.Lines)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	db := seededDB(t)
	svc := newCartSvc(db)

	if err := svc.AddItem("u-alice", "no-such-product"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("add unknown: %v, want ErrNotFound", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	db := seededDB(t)
	svc := newCartSvc(db)

	// Removing from a cart that was never opened is fine.
	if err := svc.RemoveItem("u-alice", "cpu-r5-5600"); err != nil {
		t.Fatal(err)
	}

	if err := svc.AddItem("u-alice", "cpu-r5-5600"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveItem("u-alice", "cpu-r5-5600"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveItem("u-alice", "cpu-r5-5600"); err != nil {
		t.Fatal(err)
	}

	cv, err := svc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 0 {
		t.Fatalf("cart lines = %d, want 0", len(cv.Lines))
	}
}

func TestSetItemQuantityBounds(t *testing.T) {
	db := seededDB(t)
	svc := newCartSvc(db)

	if err := svc.AddItem("u-alice", "cpu-r5-5600"); err != nil {
		t.Fatal(err)
	}

	var qe *domain.QuantityError
	if err := svc.SetItemQuantity("u-alice", "cpu-r5-5600", 0); !errors.As(err, &qe) {
		t.Fatalf("quantity 0: %v, want QuantityError", err)
	}

	// 8 units exist in total (5 central + 3 north); 9 is one too many.
	if err := svc.SetItemQuantity("u-alice", "cpu-r5-5600", 9); !errors.As(err, &qe) {
		t.Fatalf("quantity 9: %v, want QuantityError", err)
	}
	if qe.Available != 8 {
		t.Fatalf("available = %d, want 8", qe.Available)
	}

	if err := svc.SetItemQuantity("u-alice", "cpu-r5-5600", 8); err != nil {
		t.Fatal(err)
	}
	cv, err := svc.View("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if cv.Lines[0].Amount != 8 {
		t.Fatalf("amount = %d, want 8", cv.Lines[0].Amount)
	}
	if got := cv.Total.String(); got != "1039.92" {
		t.Fatalf("total = %s, want 1039.92", got)
	}
}

func TestOneOpenCartPerUser(t *testing.T) {
	db := seededDB(t)
	svc := newCartSvc(db)

	first, err := svc.OpenCart("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	again, err := svc.OpenCart("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != again.ID {
		t.Fatalf("got a second open cart: %s vs %s", first.ID, again.ID)
	}

	// Another user's cart is a different list.
	other, err := svc.OpenCart("u-bob")
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == first.ID {
		t.Fatal("carts shared between users")
	}
}
