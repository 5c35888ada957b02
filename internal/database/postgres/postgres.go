package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrMissingDSN = errors.New("database url is not set")

// Open connects through the pgx stdlib driver and pings the server.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
        id BIGSERIAL PRIMARY KEY,
        business_name TEXT NOT NULL,
        owner_name TEXT NOT NULL DEFAULT '',
        phone TEXT NOT NULL DEFAULT '',
        area TEXT NOT NULL DEFAULT '',
        kyc_verified BOOLEAN NOT NULL DEFAULT FALSE,
        rating DOUBLE PRECISION NOT NULL DEFAULT 0,
        total_reviews INT NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id BIGSERIAL PRIMARY KEY,
        supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
        name TEXT NOT NULL,
        category TEXT NOT NULL DEFAULT '',
        unit TEXT NOT NULL DEFAULT '',
        price NUMERIC(12,2) NOT NULL CHECK (price > 0),
        stock_quantity INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
        min_order_quantity INT NOT NULL DEFAULT 1 CHECK (min_order_quantity >= 1)
    )`,
	`CREATE TABLE IF NOT EXISTS vendors (
        id BIGSERIAL PRIMARY KEY,
        phone TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL DEFAULT '',
        business_name TEXT,
        area TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE TABLE IF NOT EXISTS orders (
        id BIGSERIAL PRIMARY KEY,
        vendor_id BIGINT NOT NULL REFERENCES vendors(id),
        supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
        total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount > 0),
        status TEXT NOT NULL DEFAULT 'pending',
        delivery_address TEXT NOT NULL,
        expected_delivery TIMESTAMPTZ NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS orders_vendor_created_idx ON orders (vendor_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS order_items (
        id BIGSERIAL PRIMARY KEY,
        order_id BIGINT NOT NULL REFERENCES orders(id),
        product_id BIGINT NOT NULL REFERENCES products(id),
        quantity INT NOT NULL CHECK (quantity >= 1),
        unit_price NUMERIC(12,2) NOT NULL,
        total_price NUMERIC(12,2) NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS vendor_carts (
        vendor_id BIGINT PRIMARY KEY,
        entries JSONB NOT NULL DEFAULT '{"entries":[]}',
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
}

// EnsureSchema creates the tables the service reads and writes when they do
// not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
