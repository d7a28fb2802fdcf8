package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID string, quantity int) error
	SetItemQuantity(ctx context.Context, customerID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, customerID, itemID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

var _ cartRepo = (cartrepo.Repository)(nil)

func New(repo cartRepo, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

// View is a cart with its totals recomputed from the current lines.
type View struct {
	*domain.Cart
	ItemCount  int   `json:"itemCount"`
	TotalCents int64 `json:"totalCents"`
}

type AddInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Service) Get(ctx context.Context, customerID string) (*View, error) {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	count, total := cart.Totals()
	return &View{Cart: cart, ItemCount: count, TotalCents: total}, nil
}

// Add puts quantity units of a product in the customer's cart, adding to an
// existing line for the same product. Stock is checked at checkout, not here.
func (s *Service) Add(ctx context.Context, customerID string, in AddInput) (*View, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.NewValidationError("productId", "required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	if s.productRepo == nil {
		return nil, errors.New("product repository unavailable")
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.AddItem(ctx, customerID, productID, in.Quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

// SetQuantity replaces a line's quantity. Zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, customerID, itemID string, quantity int) (*View, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, domain.NewValidationError("itemId", "required")
	}
	if err := s.repo.SetItemQuantity(ctx, customerID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

func (s *Service) Remove(ctx context.Context, customerID, itemID string) (*View, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, domain.NewValidationError("itemId", "required")
	}
	if err := s.repo.RemoveItem(ctx, customerID, itemID); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}
