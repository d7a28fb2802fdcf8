package dashboard

import (
	"context"
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

const recentOrders = 5

type productStats interface {
	Count(ctx context.Context) (int, error)
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
}

type sinceCounter interface {
	Count(ctx context.Context, since time.Time) (int, error)
}

type orderStats interface {
	sinceCounter
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, int, error)
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

type unreadCounter interface {
	CountUnread(ctx context.Context) (int, error)
}

type ticketStats interface {
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
}

// Sources groups the repositories the dashboard reads from.
type Sources struct {
	Products  productStats
	Customers sinceCounter
	Orders    orderStats
	Feedback  counter
	Contacts  unreadCounter
	Tickets   ticketStats
}

type Service struct {
	src               Sources
	lowStockThreshold int
	now               func() time.Time
}

func New(src Sources, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Service{src: src, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// Build gathers the admin dashboard. Monthly figures count from the first
// day of the current month in UTC.
func (s *Service) Build(ctx context.Context) (*domain.Dashboard, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		d   domain.Dashboard
		err error
	)
	if d.Counts.Products, err = s.src.Products.Count(ctx); err != nil {
		return nil, err
	}
	if d.Counts.Customers, err = s.src.Customers.Count(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if d.Counts.MonthlyCustomers, err = s.src.Customers.Count(ctx, monthStart); err != nil {
		return nil, err
	}
	if d.Counts.Orders, err = s.src.Orders.Count(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if d.Counts.MonthlyOrders, err = s.src.Orders.Count(ctx, monthStart); err != nil {
		return nil, err
	}
	if d.Counts.Feedback, err = s.src.Feedback.Count(ctx); err != nil {
		return nil, err
	}
	if d.Counts.UnreadContacts, err = s.src.Contacts.CountUnread(ctx); err != nil {
		return nil, err
	}
	tickets, err := s.src.Tickets.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	d.Counts.OpenTickets = tickets[domain.TicketOpen] + tickets[domain.TicketInProgress]

	if d.LowStock, err = s.src.Products.LowStock(ctx, s.lowStockThreshold); err != nil {
		return nil, err
	}
	if d.RecentOrders, _, err = s.src.Orders.List(ctx, orderrepo.ListFilter{Limit: recentOrders}); err != nil {
		return nil, err
	}
	if d.LowStock == nil {
		d.LowStock = []domain.Product{}
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []domain.Order{}
	}
	return &d, nil
}
