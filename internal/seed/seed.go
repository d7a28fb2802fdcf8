package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type accountSeed struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsStaff   bool
	Phone     string
	Address   string
	City      string
}

type productSeed struct {
	Name        string
	Slug        string
	Description string
	ProductType string
	PriceCents  int64
	Stock       int
	Featured    bool
}

// Passwords for the demo accounts.
type Passwords struct {
	Staff    string
	Customer string
}

var products = []productSeed{
	{"Fresh Sweet Corn (Per Dozen)", "fresh-sweet-corn-dozen", "Handpicked sweet corn from our Leyte farm.", "fresh-corn", 25000, 50, true},
	{"Grilled Corn Pack (4 pcs)", "grilled-corn-pack", "Charcoal grilled corn, ready to eat.", "snacks", 18000, 30, true},
	{"Baby Corn (500g Pack)", "baby-corn-500g", "Tender baby corn for stir fries.", "farm-goods", 12000, 25, false},
	{"Family Corn Bundle", "family-corn-bundle", "Sweet corn, purple corn and snacks for the whole family.", "bundles", 48000, 15, true},
	{"Snack Pack", "snack-pack", "Assorted corn snacks.", "snacks", 15000, 40, false},
	{"Corn Lovers Set", "corn-lovers-set", "A sampler of our best sellers.", "bundles", 32000, 20, false},
	{"Sweet Corn", "sweet-corn", "Sweet corn sold per piece.", "fresh-corn", 20000, 60, false},
	{"Purple Corn", "purple-corn", "Heirloom purple corn.", "fresh-corn", 35000, 10, false},
	{"Buttered Corn Cups", "buttered-corn-cups", "Buttered corn kernels in a cup.", "snacks", 8000, 35, false},
}

// Apply inserts demo accounts and products. It is idempotent: existing
// accounts are left alone and products are refreshed by slug.
func Apply(ctx context.Context, pool *pgxpool.Pool, pw Passwords) error {
	accounts := []accountSeed{
		{Username: "admin_ann", Email: "admin@goldenmais.com", Password: pw.Staff, FirstName: "Ann", LastName: "Admin", IsStaff: true},
		{Username: "customer_ann", Email: "customer@goldenmais.com", Password: pw.Customer, FirstName: "Ann", LastName: "Customer",
			Phone: "09123456789", Address: "Sample Address", City: "Manila"},
	}
	for _, a := range accounts {
		if err := ensureAccount(ctx, pool, a); err != nil {
			return fmt.Errorf("ensure account %s: %w", a.Username, err)
		}
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	return nil
}

func ensureAccount(ctx context.Context, pool *pgxpool.Pool, a accountSeed) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const insertUser = `
INSERT INTO users (username, email, password_hash, first_name, last_name, is_staff)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
RETURNING id::text
`
	var userID string
	if err := pool.QueryRow(ctx, insertUser, a.Username, a.Email, string(hash), a.FirstName, a.LastName, a.IsStaff).Scan(&userID); err != nil {
		return err
	}
	if a.IsStaff {
		return nil
	}
	const insertCustomer = `
INSERT INTO customers (user_id, phone, address, city)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO NOTHING
`
	_, err = pool.Exec(ctx, insertCustomer, userID, a.Phone, a.Address, a.City)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (name, slug, description, product_type, price_cents, stock_quantity, is_featured)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    product_type = EXCLUDED.product_type,
    price_cents = EXCLUDED.price_cents,
    is_featured = EXCLUDED.is_featured,
    updated_at = NOW()
`
	_, err := pool.Exec(ctx, q, p.Name, p.Slug, p.Description, p.ProductType, p.PriceCents, p.Stock, p.Featured)
	if err != nil {
		return err
	}
	return nil
}
