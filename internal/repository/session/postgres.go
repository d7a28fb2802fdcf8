package session

import (
	"context"

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

func (r *postgresRepo) Create(ctx context.Context, s domain.Session) error {
	const q = `
INSERT INTO sessions (id, user_id, is_staff, expires_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.pool.Exec(ctx, q, s.ID, s.UserID, s.IsStaff, s.ExpiresAt)
	return db.MapError(err)
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	const q = `
SELECT id, user_id::text, is_staff, expires_at, created_at
FROM sessions
WHERE id = $1
`
	var out domain.Session
	if err := r.pool.QueryRow(ctx, q, id).Scan(&out.ID, &out.UserID, &out.IsStaff, &out.ExpiresAt, &out.CreatedAt); err != nil {
		return nil, db.MapError(err)
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
