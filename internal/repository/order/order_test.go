package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

func seedCart(ctx context.Context, t *testing.T, pool *pgxpool.Pool) (string, *domain.Cart) {
	t.Helper()
	customerID := dbtest.InsertCustomer(ctx, t, pool, "ana")
	productID := dbtest.InsertProduct(ctx, t, pool, "family-corn-bundle", 48000, 15)
	carts := cartrepo.NewPostgres(pool)
	if err := carts.AddItem(ctx, customerID, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := carts.GetOrCreate(ctx, customerID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	return customerID, cart
}

func createInput(customerID string, cart *domain.Cart, number string) CreateInput {
	item := cart.Items[0]
	return CreateInput{
		Order: domain.Order{
			OrderNumber:      number,
			CustomerID:       customerID,
			Status:           domain.StatusPending,
			DeliveryMethod:   domain.DeliveryMethodDelivery,
			DeliveryAddress:  "Brgy. Uno",
			Phone:            "09170000000",
			PaymentMethod:    domain.PaymentMethodCash,
			SubtotalCents:    item.LineTotalCents(),
			DeliveryFeeCents: 5000,
			TotalCents:       item.LineTotalCents() + 5000,
		},
		Items: []domain.OrderItem{{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.PriceCents,
		}},
		Initial:     domain.TrackingEvent{Message: "Order has been placed successfully."},
		CartID:      cart.ID,
		CartItemIDs: []string{item.ID},
	}
}

func TestPostgres_CreateIsAtomicWithCart(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID, cart := seedCart(ctx, t, pool)
	repo := NewPostgres(pool, nil)

	created, _, err := repo.Create(ctx, createInput(customerID, cart, "AAAA1111"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.StatusPending || len(created.Items) != 1 {
		t.Fatalf("unexpected order %+v", created)
	}

	after, err := cartrepo.NewPostgres(pool).GetOrCreate(ctx, customerID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("expected cart cleared, got %d items", len(after.Items))
	}

	// Same cart lines again: they are gone, so nothing may be written.
	if _, _, err := repo.Create(ctx, createInput(customerID, cart, "BBBB2222")); !errors.Is(err, domain.ErrCartChanged) {
		t.Fatalf("expected ErrCartChanged, got %v", err)
	}
	if _, err := repo.GetByNumber(ctx, "BBBB2222"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected rolled back order to be absent, got %v", err)
	}

	history, err := repo.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Status != domain.StatusPending {
		t.Fatalf("expected one pending event, got %+v", history)
	}
}

func TestPostgres_DuplicateOrderNumber(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID, cart := seedCart(ctx, t, pool)
	repo := NewPostgres(pool, nil)

	in := createInput(customerID, cart, "CCCC3333")
	in.CartItemIDs = nil
	if _, _, err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := repo.Create(ctx, in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_PublicLookupNeedsBothColumns(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID, cart := seedCart(ctx, t, pool)
	repo := NewPostgres(pool, nil)
	if _, _, err := repo.Create(ctx, createInput(customerID, cart, "DDDD4444")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.GetByNumberAndPhone(ctx, "DDDD4444", "09170000000"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if _, err := repo.GetByNumberAndPhone(ctx, "DDDD4444", "09179999999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("wrong phone: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByNumberAndPhone(ctx, "ZZZZ9999", "09170000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("wrong number: expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ConcurrentTransitionsKeepEveryEvent(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID, cart := seedCart(ctx, t, pool)
	repo := NewPostgres(pool, nil)
	created, _, err := repo.Create(ctx, createInput(customerID, cart, "EEEE5555"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	targets := []domain.OrderStatus{domain.StatusConfirmed, domain.StatusProcessing, domain.StatusShipped, domain.StatusConfirmed}
	var wg sync.WaitGroup
	errs := make(chan error, len(targets))
	for _, target := range targets {
		wg.Add(1)
		go func(target domain.OrderStatus) {
			defer wg.Done()
			_, _, err := repo.Transition(ctx, created.ID, func(o *domain.Order) (domain.TrackingEvent, error) {
				o.Status = target
				return domain.TrackingEvent{Message: "moved", UpdatedBy: "staff"}, nil
			})
			errs <- err
		}(target)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Transition: %v", err)
		}
	}

	history, err := repo.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(targets)+1 {
		t.Fatalf("expected %d events, got %d", len(targets)+1, len(history))
	}
	current, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if history[0].Status != current.Status {
		t.Fatalf("newest event %s does not match order status %s", history[0].Status, current.Status)
	}
}

func TestPostgres_TransitionErrorLeavesOrderUnchanged(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID, cart := seedCart(ctx, t, pool)
	repo := NewPostgres(pool, nil)
	created, _, err := repo.Create(ctx, createInput(customerID, cart, "FFFF6666"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	blocked := errors.New("blocked")
	_, _, err = repo.Transition(ctx, created.ID, func(o *domain.Order) (domain.TrackingEvent, error) {
		o.Status = domain.StatusCancelled
		return domain.TrackingEvent{}, blocked
	})
	if !errors.Is(err, blocked) {
		t.Fatalf("expected callback error, got %v", err)
	}
	current, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", current.Status)
	}
	history, _ := repo.History(ctx, created.ID)
	if len(history) != 1 {
		t.Fatalf("expected no new events, got %d", len(history))
	}
}
