package feedback

import (
	"context"

	"storefront/internal/domain"
)

type ListFilter struct {
	CustomerID string
	Type       domain.FeedbackType
	Rating     int
	Limit      int
	Offset     int
}

type Response struct {
	Text        string
	Publish     bool
	RespondedBy string
}

type Repository interface {
	Create(ctx context.Context, f domain.Feedback) (*domain.Feedback, error)
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
	List(ctx context.Context, f ListFilter) ([]domain.Feedback, int, error)
	Respond(ctx context.Context, id string, resp Response) (*domain.Feedback, error)
	Count(ctx context.Context) (int, error)
}
