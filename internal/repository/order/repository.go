package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// CreateInput is everything written by one checkout.
type CreateInput struct {
	Order   domain.Order
	Items   []domain.OrderItem
	Initial domain.TrackingEvent
	// CartID and CartItemIDs name the cart lines consumed by the order.
	// Both are empty for a direct purchase.
	CartID      string
	CartItemIDs []string
	Payment     *domain.Payment
}

type ListFilter struct {
	CustomerID string
	Statuses   []domain.OrderStatus
	Limit      int
	Offset     int
}

// TransitionFunc mutates the locked order in place and returns the event to
// record. The recorded event always carries the order's resulting status.
type TransitionFunc func(o *domain.Order) (domain.TrackingEvent, error)

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.Order, *domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByNumberAndPhone(ctx context.Context, number, phone string) (*domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, int, error)
	CountByStatus(ctx context.Context, customerID string) (map[domain.OrderStatus]int, error)
	Count(ctx context.Context, since time.Time) (int, error)
	Transition(ctx context.Context, orderID string, fn TransitionFunc) (*domain.Order, *domain.TrackingEvent, error)
	History(ctx context.Context, orderID string) ([]domain.TrackingEvent, error)
}
