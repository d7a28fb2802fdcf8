package domain

import "testing"

func TestProgress_ExactMapping(t *testing.T) {
	want := map[OrderStatus]int{
		StatusPending:        10,
		StatusConfirmed:      25,
		StatusProcessing:     50,
		StatusReadyForPickup: 65,
		StatusShipped:        85,
		StatusDelivered:      100,
		StatusReturned:       75,
		StatusCancelled:      0,
	}
	for status, pct := range want {
		got, ok := Progress(status)
		if !ok {
			t.Fatalf("expected %s to be known", status)
		}
		if got != pct {
			t.Fatalf("progress(%s) = %d, want %d", status, got, pct)
		}
	}
	if len(OrderStatuses) != len(want) {
		t.Fatalf("expected %d statuses, got %d", len(want), len(OrderStatuses))
	}
}

func TestProgress_UnknownStatus(t *testing.T) {
	if _, ok := Progress(OrderStatus("lost")); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if s, ok := ParseOrderStatus(" shipped "); !ok || s != StatusShipped {
		t.Fatalf("expected shipped, got %q ok=%v", s, ok)
	}
	if _, ok := ParseOrderStatus("Shipped"); ok {
		t.Fatalf("status tokens are case sensitive")
	}
}

func TestLabel(t *testing.T) {
	if StatusShipped.Label() != "Out for Delivery" {
		t.Fatalf("unexpected label %q", StatusShipped.Label())
	}
	if StatusPending.Label() != "Order Placed" {
		t.Fatalf("unexpected label %q", StatusPending.Label())
	}
}

func TestCancellable(t *testing.T) {
	for _, s := range OrderStatuses {
		want := s != StatusDelivered && s != StatusCancelled
		if s.Cancellable() != want {
			t.Fatalf("cancellable(%s) = %v, want %v", s, s.Cancellable(), want)
		}
	}
}

func TestBucketStatuses_CoverEveryStatusOnce(t *testing.T) {
	seen := map[OrderStatus]OrderBucket{}
	for _, b := range OrderBuckets {
		statuses, ok := b.Statuses()
		if !ok {
			t.Fatalf("bucket %s unknown", b)
		}
		for _, s := range statuses {
			if prev, dup := seen[s]; dup {
				t.Fatalf("status %s in both %s and %s", s, prev, b)
			}
			seen[s] = b
		}
	}
	if len(seen) != len(OrderStatuses) {
		t.Fatalf("expected every status bucketed, got %d", len(seen))
	}
	if statuses, ok := BucketAll.Statuses(); !ok || statuses != nil {
		t.Fatalf("expected all bucket to be unfiltered")
	}
	if _, ok := OrderBucket("archived").Statuses(); ok {
		t.Fatalf("expected unknown bucket to be rejected")
	}
}

func TestCartTotals(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{PriceCents: 25000, Quantity: 2},
		{PriceCents: 8000, Quantity: 3},
	}}
	count, total := cart.Totals()
	if count != 5 || total != 74000 {
		t.Fatalf("unexpected totals count=%d total=%d", count, total)
	}
	if count, total := (Cart{}).Totals(); count != 0 || total != 0 {
		t.Fatalf("expected zero totals for empty cart")
	}
}

func TestInsufficientStockError_ListsEveryLine(t *testing.T) {
	err := &InsufficientStockError{Items: []StockShortage{
		{ProductName: "Purple Corn", Requested: 12, Available: 10},
		{ProductName: "Snack Pack", Requested: 5, Available: 1},
	}}
	want := "insufficient stock: Purple Corn: Only 10 in stock, but you ordered 12. Snack Pack: Only 1 in stock, but you ordered 5."
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
