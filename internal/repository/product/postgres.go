package product

import (
	"context"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, name, slug, description, product_type, price_cents, stock_quantity,
       is_featured, is_bestseller, is_new, free_delivery, created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM products WHERE ($1 = '' OR product_type = $1)
`, string(f.ProductType)).Scan(&total); err != nil {
		r.logger.Printf("product repo: count type=%s error=%v", f.ProductType, err)
		return nil, 0, err
	}

	q := `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR product_type = $1)
ORDER BY created_at DESC, name ASC
LIMIT $2 OFFSET $3
`
	products, err := r.query(ctx, q, string(f.ProductType), limit, f.Offset)
	if err != nil {
		r.logger.Printf("product repo: list type=%s error=%v", f.ProductType, err)
		return nil, 0, err
	}
	r.logger.Printf("product repo: list type=%s count=%d", f.ProductType, len(products))
	return products, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		err = db.MapError(err)
		if err != domain.ErrNotFound {
			r.logger.Printf("product repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		return nil, db.MapError(err)
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, slug, description, product_type, price_cents, stock_quantity,
                      is_featured, is_bestseller, is_new, free_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.Slug, p.Description, p.ProductType, p.PriceCents,
		p.StockQuantity, p.IsFeatured, p.IsBestseller, p.IsNew, p.FreeDelivery))
	if err != nil {
		r.logger.Printf("product repo: create slug=%s error=%v", p.Slug, err)
		return nil, db.MapError(err)
	}
	r.logger.Printf("product repo: created slug=%s id=%s", out.Slug, out.ID)
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
UPDATE products
SET name = $2, slug = $3, description = $4, product_type = $5, price_cents = $6, stock_quantity = $7,
    is_featured = $8, is_bestseller = $9, is_new = $10, free_delivery = $11, updated_at = NOW()
WHERE id = $1
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.ID, p.Name, p.Slug, p.Description, p.ProductType, p.PriceCents,
		p.StockQuantity, p.IsFeatured, p.IsBestseller, p.IsNew, p.FreeDelivery))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) SetStock(ctx context.Context, id string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET stock_quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: stock id=%s quantity=%d", id, quantity)
	return nil
}

// Upsert inserts or updates by slug.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, slug, description, product_type, price_cents, stock_quantity,
                      is_featured, is_bestseller, is_new, free_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    product_type = EXCLUDED.product_type,
    price_cents = EXCLUDED.price_cents,
    stock_quantity = EXCLUDED.stock_quantity,
    is_featured = EXCLUDED.is_featured,
    is_bestseller = EXCLUDED.is_bestseller,
    is_new = EXCLUDED.is_new,
    free_delivery = EXCLUDED.free_delivery,
    updated_at = NOW()
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.Slug, p.Description, p.ProductType, p.PriceCents,
		p.StockQuantity, p.IsFeatured, p.IsBestseller, p.IsNew, p.FreeDelivery))
	if err != nil {
		r.logger.Printf("product repo: upsert slug=%s error=%v", p.Slug, err)
		return nil, db.MapError(err)
	}
	r.logger.Printf("product repo: upserted slug=%s id=%s", out.Slug, out.ID)
	return out, nil
}

func (r *postgresRepo) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE stock_quantity < $1 ORDER BY stock_quantity ASC, name ASC`
	return r.query(ctx, q, threshold)
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.ProductType, &p.PriceCents, &p.StockQuantity,
		&p.IsFeatured, &p.IsBestseller, &p.IsNew, &p.FreeDelivery, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
