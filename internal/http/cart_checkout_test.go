package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"hamsterworld/internal/repos"
)

func TestCartAndCheckoutFlow(t *testing.T) {
	app, db := newTestApp(t)
	bindSession(t, db, "sid-alice", "u-alice")
	ledger := repos.NewAssortmentRepo(db)

	// Cart pages demand a session.
	if resp := getAs(t, app, "", "/cart"); resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous cart: %d, want 302", resp.StatusCode)
	}

	// Add an item, then buy three of it.
	resp := postFormAs(t, app, "sid-alice", "/cart/items", url.Values{"productId": {"ram-fury-16"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add: %d, want 302", resp.StatusCode)
	}
	resp = postFormAs(t, app, "sid-alice", "/checkout", url.Values{"amount-ram-fury-16": {"3"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("checkout: %d, want 302", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/purchase/") {
		t.Fatalf("checkout redirected to %q", loc)
	}

	// 5 + 3 seeded, minus the 3 bought.
	if total, _ := ledger.TotalAcrossStores("ram-fury-16"); total != 5 {
		t.Fatalf("total after purchase = %d, want 5", total)
	}

	// The buyer can see the purchase; another user cannot.
	if resp := getAs(t, app, "sid-alice", loc); resp.StatusCode != http.StatusOK {
		t.Fatalf("own purchase: %d, want 200", resp.StatusCode)
	}
	bindSession(t, db, "sid-bob", "u-bob")
	if resp := getAs(t, app, "sid-bob", loc); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign purchase: %d, want 404", resp.StatusCode)
	}
}

func TestCheckoutShortfallKeepsCart(t *testing.T) {
	app, db := newTestApp(t)
	bindSession(t, db, "sid-alice", "u-alice")
	ledger := repos.NewAssortmentRepo(db)

	resp := postFormAs(t, app, "sid-alice", "/cart/items", url.Values{"productId": {"gpu-rtx-3060"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add: %d, want 302", resp.StatusCode)
	}

	// Everything sells out before the buyer confirms.
	if err := ledger.SetAmount("st-central", "gpu-rtx-3060", 0); err != nil {
		t.Fatal(err)
	}
	if err := ledger.SetAmount("st-north", "gpu-rtx-3060", 0); err != nil {
		t.Fatal(err)
	}

	// The quantity resize itself already reports the shortfall.
	resp = postFormAs(t, app, "sid-alice", "/checkout", url.Values{"amount-gpu-rtx-3060": {"1"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("checkout: %d, want 400", resp.StatusCode)
	}

	// The cart line survives for the buyer to fix.
	cartRepo := repos.NewCartRepo(db)
	list, err := cartRepo.Open("u-alice")
	if err != nil {
		t.Fatal(err)
	}
	lines, err := cartRepo.Lines(list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("cart lines = %d, want 1", len(lines))
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp := getAs(t, app, "", "/api/v1/availability?productId=cpu-r5-5600")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability: %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
		Total  int    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "IN_STOCK" || body.Total != 8 {
		t.Fatalf("got %+v, want IN_STOCK/8", body)
	}

	if resp := getAs(t, app, "", "/api/v1/availability"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing productId: %d, want 400", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postFormAs(t, app, "", "/login", url.Values{"login": {"alice"}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("good creds: %d, want 302", resp.StatusCode)
	}

	resp = postFormAs(t, app, "", "/login", url.Values{"login": {"alice"}, "password": {"WrongPass1!"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad creds: %d, want 401", resp.StatusCode)
	}
}
