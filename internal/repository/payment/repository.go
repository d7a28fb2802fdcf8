package payment

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByCheckoutID(ctx context.Context, checkoutID string) (*domain.Payment, error)
	LatestForOrder(ctx context.Context, orderID string) (*domain.Payment, error)
	MarkCheckoutStarted(ctx context.Context, id, checkoutID, reference, checkoutURL string) error
	// SetStatus moves a payment that is not yet final. It reports false when
	// the payment already reached a final status.
	SetStatus(ctx context.Context, id string, status domain.PaymentStatus, lastError string) (bool, error)
}
