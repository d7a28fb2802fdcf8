package cart

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubRepo struct {
	cart        *domain.Cart
	getErr      error
	addErr      error
	setErr      error
	removeErr   error
	lastAddCust string
	lastAddProd string
	lastAddQty  int
	lastSetItem string
	lastSetQty  int
	lastRemove  string
	addCalls    int
}

func (s *stubRepo) GetOrCreate(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.getErr
}

func (s *stubRepo) AddItem(_ context.Context, customerID, productID string, quantity int) error {
	s.addCalls++
	s.lastAddCust = customerID
	s.lastAddProd = productID
	s.lastAddQty = quantity
	return s.addErr
}

func (s *stubRepo) SetItemQuantity(_ context.Context, _, itemID string, quantity int) error {
	s.lastSetItem = itemID
	s.lastSetQty = quantity
	return s.setErr
}

func (s *stubRepo) RemoveItem(_ context.Context, _, itemID string) error {
	s.lastRemove = itemID
	return s.removeErr
}

type stubProductRepo struct {
	product *domain.Product
	err     error
	lastID  string
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func twoLineCart() *domain.Cart {
	return &domain.Cart{ID: "c1", CustomerID: "cust", Items: []domain.CartItem{
		{ID: "i1", ProductID: "p1", PriceCents: 20000, Quantity: 2},
		{ID: "i2", ProductID: "p2", PriceCents: 15000, Quantity: 1},
	}}
}

func TestServiceGetComputesTotals(t *testing.T) {
	svc := New(&stubRepo{cart: twoLineCart()}, nil)
	view, err := svc.Get(context.Background(), "cust")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ItemCount != 3 {
		t.Fatalf("expected 3 units, got %d", view.ItemCount)
	}
	if view.TotalCents != 55000 {
		t.Fatalf("expected 55000, got %d", view.TotalCents)
	}
}

func TestServiceGetEmptyCart(t *testing.T) {
	svc := New(&stubRepo{cart: &domain.Cart{ID: "c1"}}, nil)
	view, err := svc.Get(context.Background(), "cust")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ItemCount != 0 || view.TotalCents != 0 {
		t.Fatalf("expected zero totals, got %d/%d", view.ItemCount, view.TotalCents)
	}
}

func TestServiceAddValidation(t *testing.T) {
	repo := &stubRepo{cart: twoLineCart()}
	svc := New(repo, &stubProductRepo{product: &domain.Product{ID: "p1"}})

	var verr *domain.ValidationError
	if _, err := svc.Add(context.Background(), "cust", AddInput{ProductID: "  ", Quantity: 1}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for product id, got %v", err)
	}
	if _, err := svc.Add(context.Background(), "cust", AddInput{ProductID: "p1", Quantity: -2}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for quantity, got %v", err)
	}
	if repo.addCalls != 0 {
		t.Fatalf("expected no writes, got %d", repo.addCalls)
	}
}

func TestServiceAddDefaultsQuantityAndSkipsStockCheck(t *testing.T) {
	repo := &stubRepo{cart: twoLineCart()}
	products := &stubProductRepo{product: &domain.Product{ID: "p9", StockQuantity: 0}}
	svc := New(repo, products)

	if _, err := svc.Add(context.Background(), "cust", AddInput{ProductID: "p9"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastAddQty != 1 || repo.lastAddProd != "p9" || repo.lastAddCust != "cust" {
		t.Fatalf("unexpected add call: %+v", repo)
	}
	if products.lastID != "p9" {
		t.Fatalf("expected product lookup for p9, got %q", products.lastID)
	}
}

func TestServiceAddUnknownProduct(t *testing.T) {
	repo := &stubRepo{cart: twoLineCart()}
	svc := New(repo, &stubProductRepo{err: domain.ErrNotFound})
	_, err := svc.Add(context.Background(), "cust", AddInput{ProductID: "missing", Quantity: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.addCalls != 0 {
		t.Fatalf("expected no add call")
	}
}

func TestServiceAddRepoError(t *testing.T) {
	svc := New(&stubRepo{addErr: errors.New("boom")}, &stubProductRepo{product: &domain.Product{ID: "p1"}})
	if _, err := svc.Add(context.Background(), "cust", AddInput{ProductID: "p1", Quantity: 1}); err == nil || err.Error() != "boom" {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestServiceSetQuantityPassesThroughNonPositive(t *testing.T) {
	repo := &stubRepo{cart: twoLineCart()}
	svc := New(repo, nil)
	if _, err := svc.SetQuantity(context.Background(), "cust", "i1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSetItem != "i1" || repo.lastSetQty != 0 {
		t.Fatalf("unexpected set call: item=%s qty=%d", repo.lastSetItem, repo.lastSetQty)
	}
}

func TestServiceSetQuantityForeignLine(t *testing.T) {
	svc := New(&stubRepo{setErr: domain.ErrNotFound}, nil)
	if _, err := svc.SetQuantity(context.Background(), "cust", "other", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceRemove(t *testing.T) {
	repo := &stubRepo{cart: twoLineCart()}
	svc := New(repo, nil)
	if _, err := svc.Remove(context.Background(), "cust", "i2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastRemove != "i2" {
		t.Fatalf("expected i2 removed, got %q", repo.lastRemove)
	}
	var verr *domain.ValidationError
	if _, err := svc.Remove(context.Background(), "cust", ""); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
