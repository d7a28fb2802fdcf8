package contact

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
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

const contactColumns = `id::text, user_id::text, name, email, subject, message, is_read, created_at, last_updated`

func (r *postgresRepo) Create(ctx context.Context, m domain.ContactMessage) (*domain.ContactMessage, error) {
	out, err := scanContact(r.pool.QueryRow(ctx, `
INSERT INTO contacts (user_id, name, email, subject, message)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+contactColumns, m.UserID, m.Name, m.Email, m.Subject, m.Message))
	if err != nil {
		r.logger.Printf("contact repo: create email=%s error=%v", m.Email, err)
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	out, err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.ContactMessage, int, error) {
	where := `WHERE TRUE`
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		where += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if f.Read != nil {
		args = append(args, *f.Read)
		where += fmt.Sprintf(` AND is_read = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, f.Offset)
	q := fmt.Sprintf(`SELECT %s FROM contacts %s ORDER BY last_updated DESC LIMIT $%d OFFSET $%d`,
		contactColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var out []domain.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) Replies(ctx context.Context, contactID string) ([]domain.ContactReply, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, contact_id::text, sender_id::text, sender_name, message, is_admin, is_read, created_at
FROM contact_replies
WHERE contact_id = $1
ORDER BY created_at ASC
`, contactID)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	out := []domain.ContactReply{}
	for rows.Next() {
		var reply domain.ContactReply
		if err := rows.Scan(&reply.ID, &reply.ContactID, &reply.SenderID, &reply.SenderName, &reply.Message,
			&reply.IsAdmin, &reply.IsRead, &reply.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, reply)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AddReply(ctx context.Context, reply domain.ContactReply) (*domain.ContactReply, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	out := reply
	out.IsRead = false
	if err := tx.QueryRow(ctx, `
INSERT INTO contact_replies (contact_id, sender_id, sender_name, message, is_admin, is_read)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, created_at
`, reply.ContactID, reply.SenderID, reply.SenderName, reply.Message, reply.IsAdmin, out.IsRead).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, db.MapError(err)
	}
	if _, err := tx.Exec(ctx, `
UPDATE contacts SET is_read = $2, last_updated = NOW() WHERE id = $1
`, reply.ContactID, reply.IsAdmin); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) MarkRead(ctx context.Context, contactID string, byAdmin bool) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if byAdmin {
		cmd, err := tx.Exec(ctx, `UPDATE contacts SET is_read = TRUE WHERE id = $1`, contactID)
		if err != nil {
			return db.MapError(err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}
	// Replies written by the other side become read for the viewer.
	if _, err := tx.Exec(ctx, `
UPDATE contact_replies SET is_read = TRUE
WHERE contact_id = $1 AND is_admin = $2 AND NOT is_read
`, contactID, !byAdmin); err != nil {
		return db.MapError(err)
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE NOT is_read`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	if err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt, &m.LastUpdated); err != nil {
		return nil, err
	}
	return &m, nil
}
