package feedback

import (
	"context"
	"fmt"
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

const feedbackSelect = `
SELECT f.id::text, f.customer_id::text,
       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
       f.feedback_type, f.subject, f.message, f.rating, f.order_id::text, f.is_anonymous, f.is_published,
       f.admin_response, f.responded_by::text, f.responded_at, f.created_at
FROM feedback f
JOIN customers c ON c.id = f.customer_id
JOIN users u ON u.id = c.user_id
`

func (r *postgresRepo) Create(ctx context.Context, f domain.Feedback) (*domain.Feedback, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO feedback (customer_id, feedback_type, subject, message, rating, order_id, is_anonymous)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text
`, f.CustomerID, f.Type, f.Subject, f.Message, f.Rating, f.OrderID, f.IsAnonymous).Scan(&id)
	if err != nil {
		r.logger.Printf("feedback repo: create customer_id=%s error=%v", f.CustomerID, err)
		return nil, db.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	out, err := scanFeedback(r.pool.QueryRow(ctx, feedbackSelect+`WHERE f.id = $1`, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Feedback, int, error) {
	where := `WHERE TRUE`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(` AND `+clause, len(args))
	}
	if f.CustomerID != "" {
		add(`f.customer_id = $%d`, f.CustomerID)
	}
	if f.Type != "" {
		add(`f.feedback_type = $%d`, string(f.Type))
	}
	if f.Rating > 0 {
		add(`f.rating = $%d`, f.Rating)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback f `+where, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	q := feedbackSelect + where + fmt.Sprintf(` ORDER BY f.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("feedback repo: list error=%v", err)
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *fb)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) Respond(ctx context.Context, id string, resp Response) (*domain.Feedback, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE feedback
SET admin_response = $2, is_published = $3, responded_by = $4, responded_at = NOW()
WHERE id = $1
`, id, resp.Text, resp.Publish, resp.RespondedBy)
	if err != nil {
		return nil, db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	r.logger.Printf("feedback repo: responded id=%s by=%s published=%t", id, resp.RespondedBy, resp.Publish)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (*domain.Feedback, error) {
	var f domain.Feedback
	if err := row.Scan(&f.ID, &f.CustomerID, &f.CustomerName, &f.Type, &f.Subject, &f.Message, &f.Rating, &f.OrderID,
		&f.IsAnonymous, &f.IsPublished, &f.AdminResponse, &f.RespondedBy, &f.RespondedAt, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
