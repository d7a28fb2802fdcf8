package customer

import (
	"context"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectCustomer = `
SELECT c.id::text, c.user_id::text, u.username, u.email, u.first_name, u.last_name,
       c.phone, c.address, c.city, c.created_at
FROM customers c
JOIN users u ON u.id = c.user_id
`

func (r *postgresRepo) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`
	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		r.logger.Printf("customer repo: ensure user_id=%s error=%v", userID, err)
		return nil, db.MapError(err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.getOne(ctx, selectCustomer+`WHERE c.id = $1`, id)
}

func (r *postgresRepo) GetByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	return r.getOne(ctx, selectCustomer+`WHERE c.user_id = $1`, userID)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg string) (*domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		return nil, db.MapError(err)
	}
	return c, nil
}

// List matches the search term against username, email, names and phone.
// A leading @ on the term is ignored.
func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Customer, int, error) {
	search := strings.TrimPrefix(strings.TrimSpace(f.Search), "@")
	where := `WHERE NOT u.is_staff`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += ` AND (u.username ILIKE $1 OR u.email ILIKE $1 OR u.first_name ILIKE $1
    OR u.last_name ILIKE $1 OR c.phone ILIKE $1)`
	}

	var total int
	countQ := `SELECT COUNT(*) FROM customers c JOIN users u ON u.id = c.user_id ` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		r.logger.Printf("customer repo: count search=%q error=%v", search, err)
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	q := selectCustomer + where + ` ORDER BY c.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("customer repo: list search=%q error=%v", search, err)
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) UpdateContact(ctx context.Context, id, phone, address, city string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE customers
SET phone = $2, address = $3, city = $4
WHERE id = $1
`, id, phone, address, city)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of customer profiles created at or after since.
// A zero since counts every customer.
func (r *postgresRepo) Count(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM customers c JOIN users u ON u.id = c.user_id
WHERE NOT u.is_staff AND c.created_at >= $1
`, since).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.UserID, &c.Username, &c.Email, &c.FirstName, &c.LastName, &c.Phone, &c.Address, &c.City, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
