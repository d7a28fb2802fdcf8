package customer

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	custrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
)

type stubRepo struct {
	customer   *domain.Customer
	getErr     error
	listOut    []domain.Customer
	listTotal  int
	lastFilter custrepo.ListFilter
	lastPhone  string
	lastCity   string
	updateErr  error
}

func (s *stubRepo) GetOrCreateByUser(_ context.Context, userID string) (*domain.Customer, error) {
	return &domain.Customer{ID: "cust-" + userID, UserID: userID}, nil
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Customer, error) {
	return s.customer, s.getErr
}

func (s *stubRepo) List(_ context.Context, f custrepo.ListFilter) ([]domain.Customer, int, error) {
	s.lastFilter = f
	return s.listOut, s.listTotal, nil
}

func (s *stubRepo) UpdateContact(_ context.Context, _, phone, _, city string) error {
	s.lastPhone = phone
	s.lastCity = city
	return s.updateErr
}

type stubUsers struct {
	calls              int
	userID             string
	email, first, last string
	err                error
}

func (s *stubUsers) UpdateProfile(_ context.Context, id, email, firstName, lastName string) error {
	s.calls++
	s.userID, s.email, s.first, s.last = id, email, firstName, lastName
	return s.err
}

type stubOrders struct {
	orders     []domain.Order
	lastFilter orderrepo.ListFilter
}

func (s *stubOrders) List(_ context.Context, f orderrepo.ListFilter) ([]domain.Order, int, error) {
	s.lastFilter = f
	return s.orders, len(s.orders), nil
}

func TestListPaginates(t *testing.T) {
	repo := &stubRepo{listTotal: 23}
	svc := New(repo, &stubUsers{}, &stubOrders{}, 10)

	page, err := svc.List(context.Background(), "  @maria ", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.Offset != 20 || repo.lastFilter.Limit != 10 {
		t.Fatalf("unexpected filter %+v", repo.lastFilter)
	}
	if repo.lastFilter.Search != "@maria" {
		t.Fatalf("expected trimmed search, got %q", repo.lastFilter.Search)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
	if page.Customers == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestDetailSumsNonCancelledOrders(t *testing.T) {
	orders := &stubOrders{orders: []domain.Order{
		{ID: "o1", Status: domain.StatusDelivered, TotalCents: 25000},
		{ID: "o2", Status: domain.StatusCancelled, TotalCents: 90000},
		{ID: "o3", Status: domain.StatusPending, TotalCents: 5000},
	}}
	svc := New(&stubRepo{customer: &domain.Customer{ID: "c1"}}, &stubUsers{}, orders, 10)

	d, err := svc.Detail(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.lastFilter.CustomerID != "c1" {
		t.Fatalf("expected orders for c1, got %q", orders.lastFilter.CustomerID)
	}
	if d.OrderCount != 3 || d.TotalSpentCents != 30000 {
		t.Fatalf("unexpected detail %+v", d)
	}
}

func TestDetailNotFound(t *testing.T) {
	svc := New(&stubRepo{getErr: domain.ErrNotFound}, &stubUsers{}, &stubOrders{}, 10)
	if _, err := svc.Detail(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateContact(t *testing.T) {
	repo := &stubRepo{customer: &domain.Customer{ID: "c1"}}
	users := &stubUsers{}
	svc := New(repo, users, &stubOrders{}, 10)

	if _, err := svc.UpdateContact(context.Background(), "c1", ContactInput{Phone: " 0917 ", City: " Calubian "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastPhone != "0917" || repo.lastCity != "Calubian" {
		t.Fatalf("expected trimmed values, got %q %q", repo.lastPhone, repo.lastCity)
	}
	if users.calls != 0 {
		t.Fatalf("expected account untouched, got %d profile updates", users.calls)
	}

	var verr *domain.ValidationError
	if _, err := svc.UpdateContact(context.Background(), "c1", ContactInput{Phone: "012345678901234567890"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateContact_AccountFields(t *testing.T) {
	repo := &stubRepo{customer: &domain.Customer{ID: "c1", UserID: "u1", Email: "old@example.com", FirstName: "Juan", LastName: "Cruz"}}
	users := &stubUsers{}
	svc := New(repo, users, &stubOrders{}, 10)

	first := " Juana "
	if _, err := svc.UpdateContact(context.Background(), "c1", ContactInput{FirstName: &first}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.userID != "u1" || users.first != "Juana" || users.last != "Cruz" || users.email != "old@example.com" {
		t.Fatalf("unexpected profile update %+v", users)
	}

	bad := "not-an-email"
	var verr *domain.ValidationError
	if _, err := svc.UpdateContact(context.Background(), "c1", ContactInput{Email: &bad}); !errors.As(err, &verr) || verr.Fields["email"] == "" {
		t.Fatalf("expected email validation error, got %v", err)
	}

	taken := "taken@example.com"
	users.err = domain.ErrAlreadyExists
	if _, err := svc.UpdateContact(context.Background(), "c1", ContactInput{Email: &taken}); !errors.As(err, &verr) {
		t.Fatalf("expected duplicate email to be a validation error, got %v", err)
	}
}
