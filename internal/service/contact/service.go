// Package contact is the contact-form inbox: public submissions, reply
// threads for signed-in users and the staff inbox.
package contact

import (
	"context"
	"net/mail"
	"strings"

	"storefront/internal/domain"
	contactrepo "storefront/internal/repository/contact"
)

const inboxPageSize = 10

type contactRepo interface {
	Create(ctx context.Context, m domain.ContactMessage) (*domain.ContactMessage, error)
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, f contactrepo.ListFilter) ([]domain.ContactMessage, int, error)
	Replies(ctx context.Context, contactID string) ([]domain.ContactReply, error)
	AddReply(ctx context.Context, reply domain.ContactReply) (*domain.ContactReply, error)
	MarkRead(ctx context.Context, contactID string, byAdmin bool) error
}

type Service struct {
	repo contactRepo
}

func New(repo contactRepo) *Service {
	return &Service{repo: repo}
}

type SubmitInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit stores a contact message. caller is nil for anonymous visitors;
// otherwise the message is linked to the account and name and email default
// from it.
func (s *Service) Submit(ctx context.Context, caller *domain.User, in SubmitInput) (*domain.ContactMessage, error) {
	m := domain.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if caller != nil {
		uid := caller.ID
		m.UserID = &uid
		if m.Name == "" {
			m.Name = displayName(*caller)
		}
		if m.Email == "" {
			m.Email = caller.Email
		}
	}
	verr := &domain.ValidationError{}
	if m.Name == "" {
		verr.Add("name", "required")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		verr.Add("email", "must be a valid email address")
	}
	if m.Message == "" {
		verr.Add("message", "required")
	}
	if !verr.Empty() {
		return nil, verr
	}
	return s.repo.Create(ctx, m)
}

type Page struct {
	Messages   []domain.ContactMessage `json:"messages"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
}

// Mine lists the caller's own conversations.
func (s *Service) Mine(ctx context.Context, userID string, page int) (*Page, error) {
	return s.list(ctx, contactrepo.ListFilter{UserID: userID}, page)
}

// Thread returns one of the caller's conversations and marks staff replies
// in it as read.
func (s *Service) Thread(ctx context.Context, userID, id string) (*domain.ContactMessage, error) {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, id, false); err != nil {
		return nil, err
	}
	return s.withReplies(ctx, m)
}

// Reply adds a customer reply, which puts the thread back in the staff
// unread list.
func (s *Service) Reply(ctx context.Context, caller domain.User, id, message string) (*domain.ContactReply, error) {
	if _, err := s.owned(ctx, caller.ID, id); err != nil {
		return nil, err
	}
	return s.reply(ctx, caller, id, message, false)
}

// Inbox is the staff list. filter is "unread", "read" or empty for all.
func (s *Service) Inbox(ctx context.Context, filter string, page int) (*Page, error) {
	f := contactrepo.ListFilter{}
	switch strings.TrimSpace(filter) {
	case "":
	case "unread":
		read := false
		f.Read = &read
	case "read":
		read := true
		f.Read = &read
	default:
		return nil, domain.NewValidationError("filter", "must be read or unread")
	}
	return s.list(ctx, f, page)
}

// Open is the staff thread view. Opening marks the thread read.
func (s *Service) Open(ctx context.Context, id string) (*domain.ContactMessage, error) {
	if err := s.repo.MarkRead(ctx, id, true); err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withReplies(ctx, m)
}

func (s *Service) StaffReply(ctx context.Context, staff domain.User, id, message string) (*domain.ContactReply, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.reply(ctx, staff, id, message, true)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id, true)
}

func (s *Service) reply(ctx context.Context, sender domain.User, id, message string, admin bool) (*domain.ContactReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewValidationError("message", "required")
	}
	senderID := sender.ID
	return s.repo.AddReply(ctx, domain.ContactReply{
		ContactID:  id,
		SenderID:   &senderID,
		SenderName: displayName(sender),
		Message:    message,
		IsAdmin:    admin,
	})
}

func (s *Service) owned(ctx context.Context, userID, id string) (*domain.ContactMessage, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID == nil || *m.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *Service) withReplies(ctx context.Context, m *domain.ContactMessage) (*domain.ContactMessage, error) {
	replies, err := s.repo.Replies(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Replies = replies
	return m, nil
}

func (s *Service) list(ctx context.Context, f contactrepo.ListFilter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	f.Limit = inboxPageSize
	f.Offset = (page - 1) * inboxPageSize
	msgs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ContactMessage{}
	}
	return &Page{Messages: msgs, Total: total, Page: page, TotalPages: (total + inboxPageSize - 1) / inboxPageSize}, nil
}

func displayName(u domain.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}
