package repos

import (
	"log"

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
	// Seed demo accounts and listings (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedProducts(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products: one document per listing; quantity is the live stock counter
CREATE TABLE IF NOT EXISTS products(
  product_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  description TEXT,
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  image_url TEXT,
  seller_id TEXT NOT NULL,
  seller_company TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Purchases: append-only history
CREATE TABLE IF NOT EXISTS purchases(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  date TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id);
CREATE INDEX IF NOT EXISTS idx_purchases_user_product ON purchases(user_id, product_id);

-- Reviews: one per (product, user)
CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  username TEXT NOT NULL,
  rating REAL NOT NULL CHECK (rating >= 1.0 AND rating <= 5.0),
  comment TEXT,
  date TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_product_user ON reviews(product_id, user_id);
CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  age INTEGER NOT NULL DEFAULT 0,
  user_type TEXT NOT NULL CHECK (user_type IN ('buyer','seller')),
  company_name TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures one buyer and one seller demo account exist.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Type, Company, Hash string
		Age                                  int
	}
	mk := func(id, email, name, utype, company string, age int, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Type: utype, Company: company, Age: age, Hash: string(h)}
	}

	users := []u{
		mk("u-buyer", "buyer@bazaar.test", "Betty", "buyer", "", 29, "Passw0rd!"),
		mk("u-seller", "seller@bazaar.test", "Sam", "seller", "Sam's Surplus", 41, "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,age,user_type,company_name)
			VALUES(?,?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Age, x.Type, x.Company); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedProducts inserts demo listings owned by the demo seller (idempotent).
func seedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(product_id,name,price,description,quantity,image_url,seller_id,seller_company) VALUES
	  ('p-kettle','Copper Kettle',34.50,'Hand-polished stovetop kettle',25,'','u-seller','Sam''s Surplus'),
	  ('p-lamp','Brass Desk Lamp',58.00,'Adjustable arm, warm bulb included',12,'','u-seller','Sam''s Surplus'),
	  ('p-rug','Wool Area Rug',120.00,'2x3m, handwoven',4,'','u-seller','Sam''s Surplus')`)
	return tx.Commit()
}
