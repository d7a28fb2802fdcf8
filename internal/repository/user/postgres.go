package user

import (
	"context"
	"io"
	"log"
	"strings"

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

const selectUser = `
SELECT id::text, username, email, password_hash, first_name, last_name, is_staff, created_at
FROM users
`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (username, email, password_hash, first_name, last_name, is_staff)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, username, email, password_hash, first_name, last_name, is_staff, created_at
`
	out, err := scanUser(r.pool.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff))
	if err != nil {
		r.logger.Printf("user repo: create username=%s error=%v", u.Username, err)
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	out, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE id = $1`, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	out, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE lower(username) = $1`, strings.ToLower(username)))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) ListStaff(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, selectUser+`WHERE is_staff ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Printf("user repo: list staff error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, id, email, firstName, lastName string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE users
SET email = $2, first_name = $3, last_name = $4
WHERE id = $1
`, id, email, firstName, lastName)
	if err != nil {
		return db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
