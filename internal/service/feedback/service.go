package feedback

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"storefront/internal/domain"
	feedbackrepo "storefront/internal/repository/feedback"
)

type feedbackRepo interface {
	Create(ctx context.Context, f domain.Feedback) (*domain.Feedback, error)
	List(ctx context.Context, f feedbackrepo.ListFilter) ([]domain.Feedback, int, error)
	Respond(ctx context.Context, id string, resp feedbackrepo.Response) (*domain.Feedback, error)
}

type orderGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type Service struct {
	repo     feedbackRepo
	orders   orderGetter
	pageSize int
}

func New(repo feedbackRepo, orders orderGetter, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Service{repo: repo, orders: orders, pageSize: pageSize}
}

type SubmitInput struct {
	Type        domain.FeedbackType `json:"type"`
	Subject     string              `json:"subject"`
	Message     string              `json:"message"`
	Rating      *int                `json:"rating"`
	OrderID     *string             `json:"orderId"`
	IsAnonymous bool                `json:"isAnonymous"`
}

// Submit stores feedback from a customer. A referenced order must belong to
// the same customer.
func (s *Service) Submit(ctx context.Context, customerID string, in SubmitInput) (*domain.Feedback, error) {
	if in.Type == "" {
		in.Type = domain.FeedbackGeneral
	}
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)
	verr := &domain.ValidationError{}
	if !in.Type.Valid() {
		verr.Add("type", "unknown feedback type")
	}
	if subject == "" {
		verr.Add("subject", "required")
	}
	if message == "" {
		verr.Add("message", "required")
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		verr.Add("rating", "must be between 1 and 5")
	}
	if in.OrderID != nil && strings.TrimSpace(*in.OrderID) == "" {
		in.OrderID = nil
	}
	if in.OrderID != nil {
		o, err := s.orders.GetByID(ctx, *in.OrderID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			verr.Add("orderId", "not one of your orders")
		case err != nil:
			return nil, err
		case o.CustomerID != customerID:
			verr.Add("orderId", "not one of your orders")
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	return s.repo.Create(ctx, domain.Feedback{
		CustomerID:  customerID,
		Type:        in.Type,
		Subject:     subject,
		Message:     message,
		Rating:      in.Rating,
		OrderID:     in.OrderID,
		IsAnonymous: in.IsAnonymous,
	})
}

type Page struct {
	Feedback   []domain.Feedback `json:"feedback"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string, page int) (*Page, error) {
	return s.list(ctx, feedbackrepo.ListFilter{CustomerID: customerID}, page)
}

// List is the staff view, filtered by type and exact rating when given.
func (s *Service) List(ctx context.Context, feedbackType, rating string, page int) (*Page, error) {
	f := feedbackrepo.ListFilter{Type: domain.FeedbackType(strings.TrimSpace(feedbackType))}
	if f.Type != "" && !f.Type.Valid() {
		return nil, domain.NewValidationError("type", "unknown feedback type")
	}
	if rating = strings.TrimSpace(rating); rating != "" {
		n, err := strconv.Atoi(rating)
		if err != nil || n < 1 || n > 5 {
			return nil, domain.NewValidationError("rating", "must be between 1 and 5")
		}
		f.Rating = n
	}
	return s.list(ctx, f, page)
}

type RespondInput struct {
	Response string `json:"response"`
	Publish  bool   `json:"publish"`
}

func (s *Service) Respond(ctx context.Context, id, staffUserID string, in RespondInput) (*domain.Feedback, error) {
	text := strings.TrimSpace(in.Response)
	if text == "" {
		return nil, domain.NewValidationError("response", "required")
	}
	return s.repo.Respond(ctx, id, feedbackrepo.Response{Text: text, Publish: in.Publish, RespondedBy: staffUserID})
}

func (s *Service) list(ctx context.Context, f feedbackrepo.ListFilter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	f.Limit = s.pageSize
	f.Offset = (page - 1) * s.pageSize
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Feedback{}
	}
	return &Page{Feedback: items, Total: total, Page: page, TotalPages: (total + s.pageSize - 1) / s.pageSize}, nil
}
