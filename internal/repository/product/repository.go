package product

import (
	"context"

	"storefront/internal/domain"
)

type ListFilter struct {
	ProductType domain.ProductType
	Limit       int
	Offset      int
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetStock(ctx context.Context, id string, quantity int) error
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
}
