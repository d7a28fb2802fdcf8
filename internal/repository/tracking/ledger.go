// Package tracking is the append-only status history of orders. Rows can be
// appended and read; nothing here updates or deletes them, and the schema
// rejects both.
package tracking

import (
	"context"

	"storefront/internal/db"
	"storefront/internal/domain"
)

// Append writes one event on q, which is normally the transaction that also
// updates the order row.
func Append(ctx context.Context, q db.DBTX, e domain.TrackingEvent) (*domain.TrackingEvent, error) {
	const stmt = `
INSERT INTO order_tracking (order_id, status, message, location, updated_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id::text, status, message, location, updated_by, created_at
`
	if e.UpdatedBy == "" {
		e.UpdatedBy = domain.SystemActor
	}
	var out domain.TrackingEvent
	err := q.QueryRow(ctx, stmt, e.OrderID, e.Status, e.Message, e.Location, e.UpdatedBy).Scan(
		&out.ID, &out.OrderID, &out.Status, &out.Message, &out.Location, &out.UpdatedBy, &out.CreatedAt,
	)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &out, nil
}

// History returns every event for the order, newest first.
func History(ctx context.Context, q db.DBTX, orderID string) ([]domain.TrackingEvent, error) {
	const stmt = `
SELECT id, order_id::text, status, message, location, updated_by, created_at
FROM order_tracking
WHERE order_id = $1
ORDER BY id DESC
`
	rows, err := q.Query(ctx, stmt, orderID)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	out := []domain.TrackingEvent{}
	for rows.Next() {
		var e domain.TrackingEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Message, &e.Location, &e.UpdatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
