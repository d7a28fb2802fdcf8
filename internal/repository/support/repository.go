package support

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type ListFilter struct {
	CustomerID string
	Status     domain.TicketStatus
	Priority   domain.TicketPriority
	Limit      int
	Offset     int
}

// TicketUpdate carries the staff-editable fields of a ticket.
type TicketUpdate struct {
	Status     domain.TicketStatus
	Priority   domain.TicketPriority
	AssignedTo *string
	ResolvedAt *time.Time
}

type Repository interface {
	// Create stores the ticket and its description as the first message.
	Create(ctx context.Context, t domain.SupportTicket, senderID string) (*domain.SupportTicket, error)
	GetByNumber(ctx context.Context, number string) (*domain.SupportTicket, error)
	List(ctx context.Context, f ListFilter) ([]domain.SupportTicket, int, error)
	Messages(ctx context.Context, ticketID string, includeInternal bool) ([]domain.SupportMessage, error)
	AddMessage(ctx context.Context, m domain.SupportMessage) (*domain.SupportMessage, error)
	Update(ctx context.Context, ticketID string, u TicketUpdate) (*domain.SupportTicket, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
}
