package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"hamsterworld/internal/repos"
)

func TestStoreAdminRequiresRole(t *testing.T) {
	app, db := newTestApp(t)

	// Anonymous -> redirect to login
	resp := getAs(t, app, "", "/store-admin")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous: %d, want 302", resp.StatusCode)
	}

	// Plain USER -> forbidden
	bindSession(t, db, "sid-alice", "u-alice")
	resp = getAs(t, app, "sid-alice", "/store-admin")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("plain user: %d, want 403", resp.StatusCode)
	}

	// Store admin -> OK
	bindSession(t, db, "sid-marfa", "u-marfa")
	resp = getAs(t, app, "sid-marfa", "/store-admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("store admin: %d, want 200", resp.StatusCode)
	}
}

func TestStoreAdminOwnStoreOnly(t *testing.T) {
	app, db := newTestApp(t)
	bindSession(t, db, "sid-marfa", "u-marfa") // administers st-central

	if resp := getAs(t, app, "sid-marfa", "/store-admin/st-central/assortment"); resp.StatusCode != http.StatusOK {
		t.Fatalf("own store: %d, want 200", resp.StatusCode)
	}
	if resp := getAs(t, app, "sid-marfa", "/store-admin/st-north/assortment"); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign store: %d, want 403", resp.StatusCode)
	}
}

func TestStoreAdminStockCorrection(t *testing.T) {
	app, db := newTestApp(t)
	bindSession(t, db, "sid-marfa", "u-marfa")
	ledger := repos.NewAssortmentRepo(db)

	form := url.Values{"productId": {"cpu-r5-5600"}, "amount": {"9"}}
	resp := postFormAs(t, app, "sid-marfa", "/store-admin/st-central/assortment", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("correction: %d, want 302", resp.StatusCode)
	}
	if n, _ := ledger.Amount("st-central", "cpu-r5-5600"); n != 9 {
		t.Fatalf("amount = %d, want 9", n)
	}

	// Same correction against a store marfa does not administer.
	resp = postFormAs(t, app, "sid-marfa", "/store-admin/st-north/assortment", form)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign correction: %d, want 403", resp.StatusCode)
	}
	if n, _ := ledger.Amount("st-north", "cpu-r5-5600"); n != 3 {
		t.Fatalf("foreign amount changed to %d", n)
	}

	// Platform admins may correct any store.
	bindSession(t, db, "sid-admin", "u-admin")
	resp = postFormAs(t, app, "sid-admin", "/store-admin/st-north/assortment", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("admin correction: %d, want 302", resp.StatusCode)
	}
	if n, _ := ledger.Amount("st-north", "cpu-r5-5600"); n != 9 {
		t.Fatalf("admin amount = %d, want 9", n)
	}
}
