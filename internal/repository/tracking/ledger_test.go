package tracking

import (
	"context"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestLedger_HistoryNewestFirstAndAppendOnly(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID := dbtest.InsertCustomer(ctx, t, pool, "juan")

	var orderID string
	err := pool.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_id, status, delivery_method, phone, payment_method,
                    subtotal_cents, delivery_fee_cents, total_cents)
VALUES ('AB12CD34', $1, 'pending', 'pickup', '0917', 'cash', 100, 0, 100)
RETURNING id::text`, customerID).Scan(&orderID)
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}

	for _, s := range []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed, domain.StatusProcessing} {
		if _, err := Append(ctx, pool, domain.TrackingEvent{OrderID: orderID, Status: s, Message: s.Label()}); err != nil {
			t.Fatalf("Append %s: %v", s, err)
		}
	}

	history, err := History(ctx, pool, orderID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 events, got %d", len(history))
	}
	if history[0].Status != domain.StatusProcessing || history[2].Status != domain.StatusPending {
		t.Fatalf("expected newest first, got %s ... %s", history[0].Status, history[2].Status)
	}
	if history[0].UpdatedBy != domain.SystemActor {
		t.Fatalf("expected default actor, got %q", history[0].UpdatedBy)
	}

	if _, err := pool.Exec(ctx, `UPDATE order_tracking SET message = 'edited' WHERE order_id = $1`, orderID); err == nil {
		t.Fatalf("expected update to be rejected")
	}
	if _, err := pool.Exec(ctx, `DELETE FROM order_tracking WHERE order_id = $1`, orderID); err == nil {
		t.Fatalf("expected delete to be rejected")
	}
}
