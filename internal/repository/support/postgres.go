package support

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

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

const ticketColumns = `t.id::text, t.ticket_number, t.customer_id::text,
       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
       t.subject, t.description, t.priority, t.status, t.assigned_to::text, t.created_at, t.updated_at, t.resolved_at`

const ticketFrom = `
FROM support_tickets t
JOIN customers c ON c.id = t.customer_id
JOIN users u ON u.id = c.user_id
`

func (r *postgresRepo) Create(ctx context.Context, t domain.SupportTicket, senderID string) (*domain.SupportTicket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
INSERT INTO support_tickets (ticket_number, customer_id, subject, description, priority, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`, t.TicketNumber, t.CustomerID, t.Subject, t.Description, t.Priority, t.Status).Scan(&id)
	if err != nil {
		r.logger.Printf("support repo: create number=%s error=%v", t.TicketNumber, err)
		return nil, db.MapError(err)
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO support_messages (ticket_id, sender_id, message, is_internal)
VALUES ($1, $2, $3, FALSE)
`, id, senderID, t.Description); err != nil {
		return nil, db.MapError(err)
	}

	out, err := scanTicket(tx.QueryRow(ctx, `SELECT `+ticketColumns+ticketFrom+`WHERE t.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("support repo: created number=%s", out.TicketNumber)
	return out, nil
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.SupportTicket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+ticketFrom+`WHERE t.ticket_number = $1`, number))
	if err != nil {
		return nil, db.MapError(err)
	}
	return t, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.SupportTicket, int, error) {
	where := `WHERE TRUE`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(` AND `+clause, len(args))
	}
	if f.CustomerID != "" {
		add(`t.customer_id = $%d`, f.CustomerID)
	}
	if f.Status != "" {
		add(`t.status = $%d`, string(f.Status))
	}
	if f.Priority != "" {
		add(`t.priority = $%d`, string(f.Priority))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+ticketFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	q := `SELECT ` + ticketColumns + ticketFrom + where +
		` ORDER BY t.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("support repo: list error=%v", err)
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var out []domain.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) Messages(ctx context.Context, ticketID string, includeInternal bool) ([]domain.SupportMessage, error) {
	rows, err := r.pool.Query(ctx, `
SELECT m.id::text, m.ticket_id::text, m.sender_id::text,
       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
       m.message, m.is_internal, m.created_at
FROM support_messages m
JOIN users u ON u.id = m.sender_id
WHERE m.ticket_id = $1 AND ($2 OR NOT m.is_internal)
ORDER BY m.created_at ASC, m.id ASC
`, ticketID, includeInternal)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	out := []domain.SupportMessage{}
	for rows.Next() {
		var m domain.SupportMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.SenderName, &m.Message, &m.IsInternal, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AddMessage(ctx context.Context, m domain.SupportMessage) (*domain.SupportMessage, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	out := m
	if err := tx.QueryRow(ctx, `
INSERT INTO support_messages (ticket_id, sender_id, message, is_internal)
VALUES ($1, $2, $3, $4)
RETURNING id::text, created_at
`, m.TicketID, m.SenderID, m.Message, m.IsInternal).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, db.MapError(err)
	}
	if _, err := tx.Exec(ctx, `UPDATE support_tickets SET updated_at = NOW() WHERE id = $1`, m.TicketID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, ticketID string, u TicketUpdate) (*domain.SupportTicket, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE support_tickets
SET status = $2, priority = $3, assigned_to = $4, resolved_at = COALESCE(resolved_at, $5), updated_at = NOW()
WHERE id = $1
`, ticketID, u.Status, u.Priority, u.AssignedTo, u.ResolvedAt)
	if err != nil {
		r.logger.Printf("support repo: update id=%s error=%v", ticketID, err)
		return nil, db.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	t, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+ticketFrom+`WHERE t.id = $1`, ticketID))
	if err != nil {
		return nil, db.MapError(err)
	}
	return t, nil
}

func (r *postgresRepo) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM support_tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[domain.TicketStatus]int{}
	for rows.Next() {
		var s domain.TicketStatus
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := row.Scan(&t.ID, &t.TicketNumber, &t.CustomerID, &t.CustomerName, &t.Subject, &t.Description,
		&t.Priority, &t.Status, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt, &t.ResolvedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
