package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (stores/products/assortments)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE/PK constraint
// failure. Used to map storage-level races to domain errors instead of
// leaking driver errors.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  login TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('BANNED','USER','STORE_ADMIN','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_login ON users(LOWER(login));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Users whose role changed since their sessions were issued. Existing
-- sessions are treated as stale until the user logs in again.
CREATE TABLE IF NOT EXISTS role_changes(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  changed_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Stores
CREATE TABLE IF NOT EXISTS stores(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  lat REAL NOT NULL DEFAULT 0,
  lng REAL NOT NULL DEFAULT 0,
  opens_at TEXT NOT NULL DEFAULT '09:00',
  closes_at TEXT NOT NULL DEFAULT '21:00',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_address ON stores(LOWER(address));

CREATE TABLE IF NOT EXISTS store_admins(
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY(store_id, user_id)
);

-- Products (tagged union: category selects the specs_json payload)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL CHECK (category IN ('CPU','GPU','RAM')),
  model TEXT NOT NULL,
  description TEXT,
  country TEXT NOT NULL DEFAULT 'RU',
  price TEXT NOT NULL,
  specs_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_model ON products(LOWER(model));
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Assortments: one row per (store, product) pair that has ever coexisted.
CREATE TABLE IF NOT EXISTS assortments(
  store_id   TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  amount INTEGER NOT NULL DEFAULT 0 CHECK (amount >= 0),
  updated_at TEXT,
  PRIMARY KEY(store_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_assortments_product ON assortments(product_id);

-- Shopping lists: at most one open (time_of_sale IS NULL) list per user.
CREATE TABLE IF NOT EXISTS shopping_lists(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  time_of_sale TEXT,
  final_price TEXT NOT NULL DEFAULT '0',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_shopping_lists_open
  ON shopping_lists(user_id) WHERE time_of_sale IS NULL;
CREATE INDEX IF NOT EXISTS idx_shopping_lists_user ON shopping_lists(user_id);

CREATE TABLE IF NOT EXISTS shopping_list_items(
  shopping_list_id TEXT NOT NULL REFERENCES shopping_lists(id) ON DELETE CASCADE,
  product_id       TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  amount INTEGER NOT NULL CHECK (amount >= 1),
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (shopping_list_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM stores`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo stores/products/assortments")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO stores(id,name,address,lat,lng,opens_at,closes_at) VALUES
	  ('st-central','hamster world Central','12 Karl Marx St',55.7558,37.6173,'09:00','21:00'),
	  ('st-north','hamster world North','3 Lenina Ave',56.8389,60.6057,'10:00','20:00')`)

	tx.MustExec(`INSERT INTO products(id,category,model,description,country,price,specs_json) VALUES
	  ('cpu-r5-5600','CPU','Ryzen 5 5600','6-core desktop CPU','CN','129.99',
	   '{"socket":"AM4","number_of_cores":6,"clock_rate_mhz":3500}'),
	  ('cpu-i5-12400','CPU','Core i5-12400','6-core desktop CPU','CN','159.00',
	   '{"socket":"LGA1700","number_of_cores":6,"clock_rate_mhz":2500}'),
	  ('gpu-rtx-3060','GPU','GeForce RTX 3060','12 GB gaming GPU','CN','329.00',
	   '{"vram_gb":12,"memory_type":"GDDR6"}'),
	  ('ram-fury-16','RAM','Kingston Fury 16GB','DDR4 3200 kit','JP','54.50',
	   '{"memory_type":"DDR4","capacity_gb":16}')`)

	// Every (store, product) pair gets a ledger row up front.
	tx.MustExec(`INSERT INTO assortments(store_id,product_id,amount)
	  SELECT s.id, p.id, 0 FROM stores s CROSS JOIN products p`)
	tx.MustExec(`UPDATE assortments SET amount=5 WHERE store_id='st-central'`)
	tx.MustExec(`UPDATE assortments SET amount=3 WHERE store_id='st-north'`)

	return tx.Commit()
}

// seedUsers ensures the demo accounts exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Login, Email, Role, Hash string
	}
	mk := func(id, login, email, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Login: login, Email: email, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-admin", "admin", "admin@hamsterworld.test", "ADMIN", "Passw0rd!"),
		mk("u-marfa", "marfa", "marfa@hamsterworld.test", "STORE_ADMIN", "Passw0rd!"),
		mk("u-senya", "senya", "senya@hamsterworld.test", "STORE_ADMIN", "Passw0rd!"),
		mk("u-alice", "alice", "alice@hamsterworld.test", "USER", "Passw0rd!"),
		mk("u-bob", "bob", "bob@hamsterworld.test", "USER", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,login,email,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(id) DO NOTHING
		`, x.ID, x.Login, x.Email, x.Hash, x.Role); err != nil {
			return err
		}
	}

	// Bind the demo store administrators to their stores.
	if _, err := tx.Exec(`
		INSERT INTO store_admins(store_id,user_id) VALUES
		  ('st-central','u-marfa'),
		  ('st-north','u-senya')
		ON CONFLICT(store_id,user_id) DO NOTHING
	`); err != nil {
		return err
	}

	return tx.Commit()
}
