package customer

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Repository persists and fetches customer profiles joined with their user.
type Repository interface {
	GetOrCreateByUser(ctx context.Context, userID string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	List(ctx context.Context, f ListFilter) ([]domain.Customer, int, error)
	UpdateContact(ctx context.Context, id, phone, address, city string) error
	Count(ctx context.Context, since time.Time) (int, error)
}
