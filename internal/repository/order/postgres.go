package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
	paymentrepo "storefront/internal/repository/payment"
	"storefront/internal/repository/tracking"
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

const orderColumns = `id::text, order_number, customer_id::text, status, delivery_method, delivery_address, phone,
       notes, payment_method, subtotal_cents, delivery_fee_cents, total_cents, tracking_number,
       estimated_delivery, delivered_at, delivery_notes, created_at, updated_at`

// Create writes the order, its items, the initial tracking event, the
// optional payment row and removes the consumed cart lines in one
// transaction. If any cart line is already gone the whole checkout is
// rolled back with domain.ErrCartChanged.
func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, *domain.Payment, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	o := in.Order
	insertOrder := `
INSERT INTO orders (order_number, customer_id, status, delivery_method, delivery_address, phone, notes,
                    payment_method, subtotal_cents, delivery_fee_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + orderColumns
	created, err := scanOrder(tx.QueryRow(ctx, insertOrder, o.OrderNumber, o.CustomerID, o.Status, o.DeliveryMethod,
		o.DeliveryAddress, o.Phone, o.Notes, o.PaymentMethod, o.SubtotalCents, o.DeliveryFeeCents, o.TotalCents))
	if err != nil {
		r.logger.Printf("order repo: create number=%s error=%v", o.OrderNumber, err)
		return nil, nil, db.MapError(err)
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, order_id::text, product_id::text, product_name, quantity, unit_price_cents, created_at
`
	for _, item := range in.Items {
		var saved domain.OrderItem
		if err := tx.QueryRow(ctx, insertItem, created.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceCents).Scan(
			&saved.ID, &saved.OrderID, &saved.ProductID, &saved.ProductName, &saved.Quantity, &saved.UnitPriceCents, &saved.CreatedAt,
		); err != nil {
			return nil, nil, db.MapError(err)
		}
		created.Items = append(created.Items, saved)
	}

	initial := in.Initial
	initial.OrderID = created.ID
	initial.Status = created.Status
	if _, err := tracking.Append(ctx, tx, initial); err != nil {
		return nil, nil, err
	}

	var payment *domain.Payment
	if in.Payment != nil {
		p := *in.Payment
		p.OrderID = created.ID
		if payment, err = paymentrepo.Insert(ctx, tx, p); err != nil {
			return nil, nil, err
		}
	}

	if len(in.CartItemIDs) > 0 {
		cmd, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND id::text = ANY($2::text[])
`, in.CartID, in.CartItemIDs)
		if err != nil {
			return nil, nil, db.MapError(err)
		}
		if int(cmd.RowsAffected()) != len(in.CartItemIDs) {
			r.logger.Printf("order repo: create number=%s cart_id=%s cart changed", o.OrderNumber, in.CartID)
			return nil, nil, domain.ErrCartChanged
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	r.logger.Printf("order repo: created number=%s id=%s items=%d", created.OrderNumber, created.ID, len(created.Items))
	return created, payment, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
}

// GetByNumberAndPhone matches both columns in one query so a wrong number and
// a wrong phone are indistinguishable to the caller.
func (r *postgresRepo) GetByNumberAndPhone(ctx context.Context, number, phone string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1 AND phone = $2`, number, phone)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, db.MapError(err)
	}
	if err := r.loadItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, int, error) {
	where := `WHERE TRUE`
	var args []any
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where += ` AND customer_id = $` + strconv.Itoa(len(args))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		where += ` AND status = ANY($` + strconv.Itoa(len(args)) + `::text[])`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		r.logger.Printf("order repo: count customer_id=%s error=%v", f.CustomerID, err)
		return nil, 0, db.MapError(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, f.Offset)
	q := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list customer_id=%s error=%v", f.CustomerID, err)
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	ptrs := make([]*domain.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresRepo) CountByStatus(ctx context.Context, customerID string) (map[domain.OrderStatus]int, error) {
	rows, err := r.pool.Query(ctx, `
SELECT status, COUNT(*)
FROM orders
WHERE ($1 = '' OR customer_id::text = $1)
GROUP BY status
`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[domain.OrderStatus]int{}
	for rows.Next() {
		var status domain.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// Count returns the number of orders created at or after since.
func (r *postgresRepo) Count(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

// Transition locks the order row, lets fn mutate it, then saves the row and
// appends the tracking event in the same transaction. Concurrent
// transitions on one order are serialized by the row lock, so every event
// is kept and the newest event always matches the stored status.
func (r *postgresRepo) Transition(ctx context.Context, orderID string, fn TransitionFunc) (*domain.Order, *domain.TrackingEvent, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
	if err != nil {
		return nil, nil, db.MapError(err)
	}
	from := o.Status

	event, err := fn(o)
	if err != nil {
		return nil, nil, err
	}

	updated, err := scanOrder(tx.QueryRow(ctx, `
UPDATE orders
SET status = $2, tracking_number = $3, estimated_delivery = $4, delivered_at = $5, delivery_notes = $6,
    updated_at = NOW()
WHERE id = $1
RETURNING `+orderColumns,
		o.ID, o.Status, o.TrackingNumber, o.EstimatedDelivery, o.DeliveredAt, o.DeliveryNotes))
	if err != nil {
		r.logger.Printf("order repo: transition id=%s error=%v", orderID, err)
		return nil, nil, db.MapError(err)
	}

	event.OrderID = updated.ID
	event.Status = updated.Status
	appended, err := tracking.Append(ctx, tx, event)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	r.logger.Printf("order repo: transition number=%s from=%s to=%s by=%s", updated.OrderNumber, from, updated.Status, appended.UpdatedBy)
	return updated, appended, nil
}

func (r *postgresRepo) History(ctx context.Context, orderID string) ([]domain.TrackingEvent, error) {
	return tracking.History(ctx, r.pool, orderID)
}

func (r *postgresRepo) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, quantity, unit_price_cents, created_at
FROM order_items
WHERE order_id::text = ANY($1::text[])
ORDER BY created_at ASC, id ASC
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPriceCents, &item.CreatedAt); err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.Status, &o.DeliveryMethod, &o.DeliveryAddress, &o.Phone,
		&o.Notes, &o.PaymentMethod, &o.SubtotalCents, &o.DeliveryFeeCents, &o.TotalCents, &o.TrackingNumber,
		&o.EstimatedDelivery, &o.DeliveredAt, &o.DeliveryNotes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
