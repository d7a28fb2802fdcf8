package payment

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

const paymentColumns = `id::text, order_id::text, method, amount_cents, currency, status, checkout_id,
       reference_number, checkout_url, last_error, created_at, updated_at`

// Insert creates a payment row on q, typically the order creation transaction.
func Insert(ctx context.Context, q db.DBTX, p domain.Payment) (*domain.Payment, error) {
	stmt := `
INSERT INTO payments (id, order_id, method, amount_cents, currency, status, reference_number)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7)
RETURNING ` + paymentColumns
	out, err := scanPayment(q.QueryRow(ctx, stmt, p.ID, p.OrderID, p.Method, p.AmountCents, p.Currency, p.Status, p.ReferenceNumber))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *postgresRepo) GetByCheckoutID(ctx context.Context, checkoutID string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE checkout_id = $1`, checkoutID)
}

func (r *postgresRepo) LatestForOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID)
}

func (r *postgresRepo) getOne(ctx context.Context, q, arg string) (*domain.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		return nil, db.MapError(err)
	}
	return p, nil
}

func (r *postgresRepo) MarkCheckoutStarted(ctx context.Context, id, checkoutID, reference, checkoutURL string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE payments
SET checkout_id = $2, reference_number = $3, checkout_url = $4, status = 'processing', updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`, id, checkoutID, reference, checkoutURL)
	if err != nil {
		r.logger.Printf("payment repo: start id=%s checkout_id=%s error=%v", id, checkoutID, err)
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status domain.PaymentStatus, lastError string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE payments
SET status = $2, last_error = $3, updated_at = NOW()
WHERE id = $1 AND status NOT IN ('completed', 'failed', 'cancelled')
`, id, status, lastError)
	if err != nil {
		r.logger.Printf("payment repo: status id=%s status=%s error=%v", id, status, err)
		return false, db.MapError(err)
	}
	r.logger.Printf("payment repo: status id=%s status=%s changed=%t", id, status, cmd.RowsAffected() > 0)
	return cmd.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.AmountCents, &p.Currency, &p.Status, &p.CheckoutID,
		&p.ReferenceNumber, &p.CheckoutURL, &p.LastError, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
