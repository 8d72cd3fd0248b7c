package postgres

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS operators (
		id        BIGSERIAL PRIMARY KEY,
		username  TEXT NOT NULL UNIQUE,
		password  TEXT NOT NULL,
		role      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGSERIAL PRIMARY KEY,
		code        TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		price       NUMERIC(12,2) NOT NULL,
		category_id BIGINT REFERENCES categories(id),
		image       BYTEA
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          BIGSERIAL PRIMARY KEY,
		placed_at   TIMESTAMPTZ NOT NULL,
		operator_id BIGINT NOT NULL REFERENCES operators(id),
		subtotal    NUMERIC(12,2) NOT NULL,
		taxes       JSONB NOT NULL DEFAULT '[]',
		total       NUMERIC(12,2) NOT NULL,
		paid        NUMERIC(12,2) NOT NULL,
		change      NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id           BIGSERIAL PRIMARY KEY,
		order_id     BIGINT NOT NULL REFERENCES orders(id),
		product_id   BIGINT NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		price        NUMERIC(12,2) NOT NULL,
		quantity     INT NOT NULL CHECK (quantity >= 1)
	)`,
}

// Migrate creates the schema when missing and seeds a first run with the
// default operators and a small demo catalog.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return seed(ctx, db)
}

func seed(ctx context.Context, db DB) error {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM operators`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	operators := []struct{ username, role string }{
		{"Manager", "manager"},
		{"Cashier1", "cashier"},
		{"Cashier2", "cashier"},
	}
	for _, op := range operators {
		if _, err := db.Exec(ctx,
			`INSERT INTO operators(username, password, role) VALUES ($1,$2,$3) ON CONFLICT (username) DO NOTHING`,
			op.username, string(hash), op.role); err != nil {
			return err
		}
	}

	for _, name := range []string{"Pizza", "Pasta", "Sandwich"} {
		if _, err := db.Exec(ctx,
			`INSERT INTO categories(name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return err
		}
	}

	products := []struct {
		code, name, price, category string
	}{
		{"1", "Margherita", "100.00", "Pizza"},
		{"2", "Marinara", "200.00", "Pizza"},
		{"3", "Vegetarians", "150.00", "Pizza"},
		{"4", "Alfedo", "200.00", "Pizza"},
		{"5", "Spaghetti Pasta", "150.00", "Pasta"},
		{"6", "White Sauce Pasta", "200.00", "Pasta"},
		{"8", "American Sub", "100.00", "Sandwich"},
	}
	for _, p := range products {
		if _, err := db.Exec(ctx, `
			INSERT INTO products(code, name, price, category_id)
			SELECT $1, $2, $3::numeric, id FROM categories WHERE name=$4
			ON CONFLICT (code) DO NOTHING`,
			p.code, p.name, p.price, p.category); err != nil {
			return err
		}
	}
	return nil
}
