package order

import (
	"context"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

// Tracked is an order with its history, newest event first.
type Tracked struct {
	Order    domain.Order           `json:"order"`
	History  []domain.TrackingEvent `json:"history"`
	Progress int                    `json:"progress"`
	Label    string                 `json:"statusLabel"`
}

// PublicTrack finds an order by number and phone. Any mismatch is reported
// as domain.ErrNotFound.
func (s *Service) PublicTrack(ctx context.Context, number, phone string) (*Tracked, error) {
	if number == "" || phone == "" {
		return nil, domain.ErrNotFound
	}
	o, err := s.orders.GetByNumberAndPhone(ctx, number, phone)
	if err != nil {
		return nil, err
	}
	return s.tracked(ctx, o)
}

// TrackForCustomer returns an order owned by the customer. Orders owned by
// someone else are reported as not found.
func (s *Service) TrackForCustomer(ctx context.Context, customerID, number string) (*Tracked, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return s.tracked(ctx, o)
}

// Detail returns any order with its history for staff.
func (s *Service) Detail(ctx context.Context, orderID string) (*Tracked, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.tracked(ctx, o)
}

func (s *Service) tracked(ctx context.Context, o *domain.Order) (*Tracked, error) {
	history, err := s.orders.History(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	progress, _ := domain.Progress(o.Status)
	return &Tracked{Order: *o, History: history, Progress: progress, Label: o.Status.Label()}, nil
}

// Page is one page of orders.
type Page struct {
	Orders     []domain.Order `json:"orders"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// History is a customer's order list for one bucket plus the size of every
// bucket.
type History struct {
	Bucket domain.OrderBucket         `json:"bucket"`
	Counts map[domain.OrderBucket]int `json:"counts"`
	Page
}

func (s *Service) CustomerHistory(ctx context.Context, customerID string, bucket domain.OrderBucket, page int) (*History, error) {
	if bucket == "" {
		bucket = domain.BucketAll
	}
	statuses, ok := bucket.Statuses()
	if !ok {
		return nil, domain.NewValidationError("bucket", "unknown order bucket "+string(bucket))
	}
	p, err := s.page(ctx, orderrepo.ListFilter{CustomerID: customerID, Statuses: statuses}, page)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.orders.CountByStatus(ctx, customerID)
	if err != nil {
		return nil, err
	}
	counts := map[domain.OrderBucket]int{}
	all := 0
	for _, b := range domain.OrderBuckets {
		bs, _ := b.Statuses()
		for _, st := range bs {
			counts[b] += byStatus[st]
			all += byStatus[st]
		}
	}
	counts[domain.BucketAll] = all

	return &History{Bucket: bucket, Counts: counts, Page: *p}, nil
}

// List returns orders for staff, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, page int) (*Page, error) {
	var statuses []domain.OrderStatus
	if status != "" {
		st, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, domain.NewValidationError("status", "unknown order status "+status)
		}
		statuses = []domain.OrderStatus{st}
	}
	return s.page(ctx, orderrepo.ListFilter{Statuses: statuses}, page)
}

// Recent returns the newest orders across all customers.
func (s *Service) Recent(ctx context.Context, n int) ([]domain.Order, error) {
	orders, _, err := s.orders.List(ctx, orderrepo.ListFilter{Limit: n})
	return orders, err
}

func (s *Service) page(ctx context.Context, f orderrepo.ListFilter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	f.Limit = s.opts.PageSize
	f.Offset = (page - 1) * s.opts.PageSize
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	pages := (total + s.opts.PageSize - 1) / s.opts.PageSize
	return &Page{Orders: orders, Total: total, Page: page, PageSize: s.opts.PageSize, TotalPages: pages}, nil
}
