package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores one cart per customer. Item mutations are scoped by
// customer so one customer can never touch another's lines.
type Repository interface {
	GetOrCreate(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID string, quantity int) error
	SetItemQuantity(ctx context.Context, customerID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, customerID, itemID string) error
}
