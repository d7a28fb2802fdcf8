package cart

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_AddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	customerID := dbtest.InsertCustomer(ctx, t, pool, "maria")
	productID := dbtest.InsertProduct(ctx, t, pool, "snack-pack", 15000, 40)

	repo := NewPostgres(pool)
	if err := repo.AddItem(ctx, customerID, productID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.AddItem(ctx, customerID, productID, 3); err != nil {
		t.Fatalf("AddItem again: %v", err)
	}

	cart, err := repo.GetOrCreate(ctx, customerID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", cart.Items)
	}
	count, total := cart.Totals()
	if count != 5 || total != 75000 {
		t.Fatalf("unexpected totals count=%d total=%d", count, total)
	}
}

func TestPostgres_SetQuantityAndOwnership(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	owner := dbtest.InsertCustomer(ctx, t, pool, "owner")
	other := dbtest.InsertCustomer(ctx, t, pool, "other")
	productID := dbtest.InsertProduct(ctx, t, pool, "sweet-corn", 20000, 60)

	repo := NewPostgres(pool)
	if err := repo.AddItem(ctx, owner, productID, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := repo.GetOrCreate(ctx, owner)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	itemID := cart.Items[0].ID

	if err := repo.SetItemQuantity(ctx, other, itemID, 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign item, got %v", err)
	}
	if err := repo.SetItemQuantity(ctx, owner, itemID, 4); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	if err := repo.SetItemQuantity(ctx, owner, itemID, 0); err != nil {
		t.Fatalf("SetItemQuantity 0: %v", err)
	}
	cart, err = repo.GetOrCreate(ctx, owner)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected line removed, got %+v", cart.Items)
	}
}
