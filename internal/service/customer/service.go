package customer

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront/internal/domain"
	custrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
)

type customerRepo interface {
	GetOrCreateByUser(ctx context.Context, userID string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, f custrepo.ListFilter) ([]domain.Customer, int, error)
	UpdateContact(ctx context.Context, id, phone, address, city string) error
}

type profileUpdater interface {
	UpdateProfile(ctx context.Context, id, email, firstName, lastName string) error
}

type orderLister interface {
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, int, error)
}

// Service serves customer profiles to the storefront and to staff.
type Service struct {
	repo     customerRepo
	users    profileUpdater
	orders   orderLister
	pageSize int
}

func New(repo customerRepo, users profileUpdater, orders orderLister, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Service{repo: repo, users: users, orders: orders, pageSize: pageSize}
}

// Ensure returns the customer profile of a user, creating it on first use.
func (s *Service) Ensure(ctx context.Context, userID string) (*domain.Customer, error) {
	return s.repo.GetOrCreateByUser(ctx, userID)
}

type Page struct {
	Customers  []domain.Customer `json:"customers"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// List searches customers by username, email, name or phone.
func (s *Service) List(ctx context.Context, search string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	customers, total, err := s.repo.List(ctx, custrepo.ListFilter{
		Search: strings.TrimSpace(search),
		Limit:  s.pageSize,
		Offset: (page - 1) * s.pageSize,
	})
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return &Page{
		Customers:  customers,
		Total:      total,
		Page:       page,
		TotalPages: (total + s.pageSize - 1) / s.pageSize,
	}, nil
}

// Detail is a customer with their most recent orders.
type Detail struct {
	Customer        domain.Customer `json:"customer"`
	Orders          []domain.Order  `json:"orders"`
	OrderCount      int             `json:"orderCount"`
	TotalSpentCents int64           `json:"totalSpentCents"`
}

func (s *Service) Detail(ctx context.Context, id string) (*Detail, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orders.List(ctx, orderrepo.ListFilter{CustomerID: id})
	if err != nil {
		return nil, err
	}
	d := &Detail{Customer: *c, Orders: orders, OrderCount: total}
	for _, o := range orders {
		if o.Status != domain.StatusCancelled {
			d.TotalSpentCents += o.TotalCents
		}
	}
	if d.Orders == nil {
		d.Orders = []domain.Order{}
	}
	return d, nil
}

// ContactInput holds the fields staff may edit. Nil account fields are left
// unchanged.
type ContactInput struct {
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UpdateContact replaces the contact fields and, when given, the name and
// email on the customer's account.
func (s *Service) UpdateContact(ctx context.Context, id string, in ContactInput) (*domain.Customer, error) {
	phone := strings.TrimSpace(in.Phone)
	verr := &domain.ValidationError{}
	if len(phone) > 20 {
		verr.Add("phone", "must be at most 20 characters")
	}
	if in.Email != nil {
		if e := strings.TrimSpace(*in.Email); e != "" {
			if _, err := mail.ParseAddress(e); err != nil {
				verr.Add("email", "enter a valid email address")
			}
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil || in.FirstName != nil || in.LastName != nil {
		email := pick(in.Email, current.Email)
		first := pick(in.FirstName, current.FirstName)
		last := pick(in.LastName, current.LastName)
		if err := s.users.UpdateProfile(ctx, current.UserID, email, first, last); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return nil, domain.NewValidationError("email", "email already in use")
			}
			return nil, err
		}
	}
	if err := s.repo.UpdateContact(ctx, id, phone, strings.TrimSpace(in.Address), strings.TrimSpace(in.City)); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func pick(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return strings.TrimSpace(*v)
}
