package contact

import (
	"context"

	"storefront/internal/domain"
)

type ListFilter struct {
	UserID string
	// Read filters by read flag when non-nil.
	Read   *bool
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, m domain.ContactMessage) (*domain.ContactMessage, error)
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, f ListFilter) ([]domain.ContactMessage, int, error)
	Replies(ctx context.Context, contactID string) ([]domain.ContactReply, error)
	// AddReply stores the reply and sets the thread's read flag: staff
	// replies leave it read, customer replies mark it unread.
	AddReply(ctx context.Context, reply domain.ContactReply) (*domain.ContactReply, error)
	// MarkRead flags the thread read and marks replies from the other side
	// as read for the viewer.
	MarkRead(ctx context.Context, contactID string, byAdmin bool) error
	CountUnread(ctx context.Context) (int, error)
}
