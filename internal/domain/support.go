package domain

import "time"

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

type SupportTicket struct {
	ID           string           `json:"id"`
	TicketNumber string           `json:"ticketNumber"`
	CustomerID   string           `json:"customerId"`
	CustomerName string           `json:"customerName,omitempty"`
	Subject      string           `json:"subject"`
	Description  string           `json:"description"`
	Priority     TicketPriority   `json:"priority"`
	Status       TicketStatus     `json:"status"`
	AssignedTo   *string          `json:"assignedTo,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	ResolvedAt   *time.Time       `json:"resolvedAt,omitempty"`
	Messages     []SupportMessage `json:"messages,omitempty"`
}

// SupportMessage with IsInternal set is visible to staff only.
type SupportMessage struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"isInternal"`
	CreatedAt  time.Time `json:"createdAt"`
}
