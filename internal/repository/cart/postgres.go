package cart

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := ensureCart(ctx, r.pool, customerID)
	if err != nil {
		return nil, err
	}

	const linesQuery = `
SELECT ci.id::text, ci.cart_id::text, ci.product_id::text, p.name, p.slug, p.price_cents, p.stock_quantity,
       ci.quantity, ci.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName, &item.ProductSlug,
			&item.PriceCents, &item.StockQuantity, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem increments the existing line for the product or creates it.
func (r *postgresRepo) AddItem(ctx context.Context, customerID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cart, err := ensureCart(ctx, tx, customerID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`, cart.ID, productID, quantity); err != nil {
		return db.MapError(err)
	}
	if err := touchCart(ctx, tx, cart.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetItemQuantity replaces the quantity, deleting the line when quantity <= 0.
func (r *postgresRepo) SetItemQuantity(ctx context.Context, customerID, itemID string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, customerID, itemID)
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items ci
SET quantity = $3
FROM carts c
WHERE ci.cart_id = c.id AND c.customer_id = $1 AND ci.id = $2
`, customerID, itemID, quantity)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, customerID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_items ci
USING carts c
WHERE ci.cart_id = c.id AND c.customer_id = $1 AND ci.id = $2
`, customerID, itemID)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func ensureCart(ctx context.Context, q db.DBTX, customerID string) (*domain.Cart, error) {
	const upsert = `
INSERT INTO carts (customer_id)
VALUES ($1)
ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
RETURNING id::text, customer_id::text, created_at, updated_at
`
	var cart domain.Cart
	if err := q.QueryRow(ctx, upsert, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, db.MapError(err)
	}
	return &cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return err
}
