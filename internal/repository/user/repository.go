package user

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListStaff(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id, email, firstName, lastName string) error
}
