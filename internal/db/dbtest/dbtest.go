// Package dbtest connects integration tests to the test database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/migrate"
)

const tables = `users, sessions, customers, products, carts, cart_items, orders, order_items,
order_tracking, payments, support_tickets, support_messages, feedback, contacts, contact_replies`

// Pool returns a migrated, empty database. Tests are skipped when
// TEST_DB_DSN is not set.
func Pool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE `+tables+` RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// InsertUser creates a user row and returns its id.
func InsertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, username string, staff bool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, is_staff)
VALUES ($1, $1 || '@example.com', 'x', $2)
RETURNING id::text`, username, staff).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertCustomer creates a user plus customer profile and returns the
// customer id.
func InsertCustomer(ctx context.Context, t *testing.T, pool *pgxpool.Pool, username string) string {
	t.Helper()
	userID := InsertUser(ctx, t, pool, username, false)
	var id string
	if err := pool.QueryRow(ctx, `INSERT INTO customers (user_id, phone) VALUES ($1, '09171234567') RETURNING id::text`, userID).Scan(&id); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	return id
}

// InsertProduct creates a product and returns its id.
func InsertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, slug string, priceCents int64, stock int) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
INSERT INTO products (name, slug, product_type, price_cents, stock_quantity)
VALUES ($1, $1, 'snacks', $2, $3)
RETURNING id::text`, slug, priceCents, stock).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}
