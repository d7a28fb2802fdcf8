// Package support runs customer support tickets and their message threads.
package support

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"time"

	"storefront/internal/domain"
	supportrepo "storefront/internal/repository/support"
)

const numberAttempts = 5

type ticketRepo interface {
	Create(ctx context.Context, t domain.SupportTicket, senderID string) (*domain.SupportTicket, error)
	GetByNumber(ctx context.Context, number string) (*domain.SupportTicket, error)
	List(ctx context.Context, f supportrepo.ListFilter) ([]domain.SupportTicket, int, error)
	Messages(ctx context.Context, ticketID string, includeInternal bool) ([]domain.SupportMessage, error)
	AddMessage(ctx context.Context, m domain.SupportMessage) (*domain.SupportMessage, error)
	Update(ctx context.Context, ticketID string, u supportrepo.TicketUpdate) (*domain.SupportTicket, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
}

type Service struct {
	repo     ticketRepo
	pageSize int
	logger   *log.Logger

	now       func() time.Time
	newNumber func() string
}

func New(repo ticketRepo, pageSize int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Service{repo: repo, pageSize: pageSize, logger: logger, now: time.Now, newNumber: randomTicketNumber}
}

type CreateInput struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// Create opens a ticket. The description becomes the first message.
func (s *Service) Create(ctx context.Context, customerID, senderUserID string, in CreateInput) (*domain.SupportTicket, error) {
	subject := strings.TrimSpace(in.Subject)
	description := strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	verr := &domain.ValidationError{}
	if subject == "" {
		verr.Add("subject", "required")
	} else if len(subject) > 200 {
		verr.Add("subject", "must be at most 200 characters")
	}
	if description == "" {
		verr.Add("description", "required")
	}
	if !in.Priority.Valid() {
		verr.Add("priority", "must be low, medium, high or urgent")
	}
	if !verr.Empty() {
		return nil, verr
	}

	ticket := domain.SupportTicket{
		CustomerID:  customerID,
		Subject:     subject,
		Description: description,
		Priority:    in.Priority,
		Status:      domain.TicketOpen,
	}
	for attempt := 0; attempt < numberAttempts; attempt++ {
		ticket.TicketNumber = s.newNumber()
		out, err := s.repo.Create(ctx, ticket, senderUserID)
		if err == nil {
			s.logger.Printf("support service: opened number=%s customer_id=%s", out.TicketNumber, customerID)
			return out, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, errors.New("could not allocate a unique ticket number")
}

type Page struct {
	Tickets    []domain.SupportTicket `json:"tickets"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"totalPages"`
}

func (s *Service) ListForCustomer(ctx context.Context, customerID string, page int) (*Page, error) {
	return s.list(ctx, supportrepo.ListFilter{CustomerID: customerID}, page)
}

// View returns a customer's own ticket without internal messages.
func (s *Service) View(ctx context.Context, customerID, number string) (*domain.SupportTicket, error) {
	t, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return s.withMessages(ctx, t, false)
}

// Reply posts a customer message on their own ticket.
func (s *Service) Reply(ctx context.Context, customerID, senderUserID, number, message string) (*domain.SupportMessage, error) {
	t, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return s.post(ctx, t, senderUserID, message, false)
}

// Dashboard is the staff ticket list with per-status counts.
type Dashboard struct {
	Counts map[domain.TicketStatus]int `json:"counts"`
	Page
}

func (s *Service) Dashboard(ctx context.Context, status, priority string, page int) (*Dashboard, error) {
	f := supportrepo.ListFilter{
		Status:   domain.TicketStatus(strings.TrimSpace(status)),
		Priority: domain.TicketPriority(strings.TrimSpace(priority)),
	}
	verr := &domain.ValidationError{}
	if f.Status != "" && !f.Status.Valid() {
		verr.Add("status", "unknown ticket status")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		verr.Add("priority", "unknown ticket priority")
	}
	if !verr.Empty() {
		return nil, verr
	}
	p, err := s.list(ctx, f, page)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Counts: counts, Page: *p}, nil
}

// Detail returns any ticket with every message, internal ones included.
func (s *Service) Detail(ctx context.Context, number string) (*domain.SupportTicket, error) {
	t, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.withMessages(ctx, t, true)
}

// StaffReply posts a staff message, optionally visible to staff only.
func (s *Service) StaffReply(ctx context.Context, staffUserID, number, message string, internal bool) (*domain.SupportMessage, error) {
	t, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, t, staffUserID, message, internal)
}

// UpdateInput holds the staff-editable fields. Empty fields keep their value;
// an AssignedTo pointing at "" unassigns.
type UpdateInput struct {
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	AssignedTo *string               `json:"assignedTo"`
}

func (s *Service) Update(ctx context.Context, number string, in UpdateInput) (*domain.SupportTicket, error) {
	t, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	u := supportrepo.TicketUpdate{Status: t.Status, Priority: t.Priority, AssignedTo: t.AssignedTo}
	verr := &domain.ValidationError{}
	if in.Status != "" {
		if !in.Status.Valid() {
			verr.Add("status", "unknown ticket status")
		}
		u.Status = in.Status
	}
	if in.Priority != "" {
		if !in.Priority.Valid() {
			verr.Add("priority", "unknown ticket priority")
		}
		u.Priority = in.Priority
	}
	if !verr.Empty() {
		return nil, verr
	}
	if in.AssignedTo != nil {
		if strings.TrimSpace(*in.AssignedTo) == "" {
			u.AssignedTo = nil
		} else {
			assignee := strings.TrimSpace(*in.AssignedTo)
			u.AssignedTo = &assignee
		}
	}
	if u.Status == domain.TicketResolved {
		now := s.now().UTC()
		u.ResolvedAt = &now
	}
	out, err := s.repo.Update(ctx, t.ID, u)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("support service: updated number=%s status=%s priority=%s", number, out.Status, out.Priority)
	return out, nil
}

func (s *Service) post(ctx context.Context, t *domain.SupportTicket, senderID, message string, internal bool) (*domain.SupportMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewValidationError("message", "required")
	}
	return s.repo.AddMessage(ctx, domain.SupportMessage{
		TicketID:   t.ID,
		SenderID:   senderID,
		Message:    message,
		IsInternal: internal,
	})
}

func (s *Service) withMessages(ctx context.Context, t *domain.SupportTicket, includeInternal bool) (*domain.SupportTicket, error) {
	msgs, err := s.repo.Messages(ctx, t.ID, includeInternal)
	if err != nil {
		return nil, err
	}
	t.Messages = msgs
	return t, nil
}

func (s *Service) list(ctx context.Context, f supportrepo.ListFilter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	f.Limit = s.pageSize
	f.Offset = (page - 1) * s.pageSize
	tickets, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.SupportTicket{}
	}
	return &Page{Tickets: tickets, Total: total, Page: page, TotalPages: (total + s.pageSize - 1) / s.pageSize}, nil
}

func randomTicketNumber() string {
	return fmt.Sprintf("GM%06d", rand.Intn(1000000))
}
