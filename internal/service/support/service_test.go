package support

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
	supportrepo "storefront/internal/repository/support"
)

type memTickets struct {
	tickets  map[string]*domain.SupportTicket
	messages []domain.SupportMessage
	updates  []supportrepo.TicketUpdate
}

func newMemTickets() *memTickets {
	return &memTickets{tickets: map[string]*domain.SupportTicket{}}
}

func (m *memTickets) Create(_ context.Context, t domain.SupportTicket, senderID string) (*domain.SupportTicket, error) {
	if _, ok := m.tickets[t.TicketNumber]; ok {
		return nil, domain.ErrAlreadyExists
	}
	t.ID = "t-" + t.TicketNumber
	m.tickets[t.TicketNumber] = &t
	m.messages = append(m.messages, domain.SupportMessage{TicketID: t.ID, SenderID: senderID, Message: t.Description})
	out := t
	return &out, nil
}

func (m *memTickets) GetByNumber(_ context.Context, number string) (*domain.SupportTicket, error) {
	t, ok := m.tickets[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *memTickets) List(_ context.Context, f supportrepo.ListFilter) ([]domain.SupportTicket, int, error) {
	var out []domain.SupportTicket
	for _, t := range m.tickets {
		if f.CustomerID != "" && t.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *memTickets) Messages(_ context.Context, ticketID string, includeInternal bool) ([]domain.SupportMessage, error) {
	out := []domain.SupportMessage{}
	for _, msg := range m.messages {
		if msg.TicketID == ticketID && (includeInternal || !msg.IsInternal) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memTickets) AddMessage(_ context.Context, msg domain.SupportMessage) (*domain.SupportMessage, error) {
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memTickets) Update(_ context.Context, ticketID string, u supportrepo.TicketUpdate) (*domain.SupportTicket, error) {
	m.updates = append(m.updates, u)
	for _, t := range m.tickets {
		if t.ID == ticketID {
			t.Status = u.Status
			t.Priority = u.Priority
			t.AssignedTo = u.AssignedTo
			if t.ResolvedAt == nil {
				t.ResolvedAt = u.ResolvedAt
			}
			out := *t
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTickets) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	out := map[domain.TicketStatus]int{}
	for _, t := range m.tickets {
		out[t.Status]++
	}
	return out, nil
}

func newTestService(repo *memTickets, numbers ...string) *Service {
	svc := New(repo, 10, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC) }
	if len(numbers) > 0 {
		svc.newNumber = func() string {
			n := numbers[0]
			if len(numbers) > 1 {
				numbers = numbers[1:]
			}
			return n
		}
	}
	return svc
}

func TestCreateDefaultsAndRetriesNumber(t *testing.T) {
	repo := newMemTickets()
	repo.tickets["GM000001"] = &domain.SupportTicket{ID: "existing", TicketNumber: "GM000001"}
	svc := newTestService(repo, "GM000001", "GM000002")

	ticket, err := svc.Create(context.Background(), "cust-1", "user-1", CreateInput{Subject: "Late order", Description: "Where is my corn?"})
	require.NoError(t, err)
	assert.Equal(t, "GM000002", ticket.TicketNumber)
	assert.Equal(t, domain.PriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketOpen, ticket.Status)
	require.Len(t, repo.messages, 1)
	assert.Equal(t, "Where is my corn?", repo.messages[0].Message)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemTickets())
	_, err := svc.Create(context.Background(), "cust-1", "user-1", CreateInput{Priority: "whenever"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "subject")
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "priority")
}

func TestRandomTicketNumberFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		n := randomTicketNumber()
		assert.Regexp(t, `^GM\d{6}$`, n)
	}
}

func TestCustomerViewHidesInternalMessagesAndForeignTickets(t *testing.T) {
	repo := newMemTickets()
	svc := newTestService(repo, "GM123456")
	ctx := context.Background()
	_, err := svc.Create(ctx, "cust-1", "user-1", CreateInput{Subject: "Refund", Description: "Please refund"})
	require.NoError(t, err)
	_, err = svc.StaffReply(ctx, "staff-1", "GM123456", "Customer is a regular", true)
	require.NoError(t, err)
	_, err = svc.StaffReply(ctx, "staff-1", "GM123456", "We are on it", false)
	require.NoError(t, err)

	view, err := svc.View(ctx, "cust-1", "GM123456")
	require.NoError(t, err)
	assert.Len(t, view.Messages, 2)

	detail, err := svc.Detail(ctx, "GM123456")
	require.NoError(t, err)
	assert.Len(t, detail.Messages, 3)

	_, err = svc.View(ctx, "cust-2", "GM123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Reply(ctx, "cust-2", "user-2", "GM123456", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateSetsResolvedAtOnce(t *testing.T) {
	repo := newMemTickets()
	svc := newTestService(repo, "GM654321")
	ctx := context.Background()
	_, err := svc.Create(ctx, "cust-1", "user-1", CreateInput{Subject: "Damaged", Description: "Box was wet", Priority: domain.PriorityHigh})
	require.NoError(t, err)

	staff := "staff-1"
	updated, err := svc.Update(ctx, "GM654321", UpdateInput{Status: domain.TicketResolved, AssignedTo: &staff})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	first := *updated.ResolvedAt
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, "staff-1", *updated.AssignedTo)

	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	empty := ""
	again, err := svc.Update(ctx, "GM654321", UpdateInput{Status: domain.TicketResolved, AssignedTo: &empty})
	require.NoError(t, err)
	assert.Equal(t, first, *again.ResolvedAt)
	assert.Nil(t, again.AssignedTo)

	_, err = svc.Update(ctx, "GM654321", UpdateInput{Status: "archived"})
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDashboardCountsAndFilters(t *testing.T) {
	repo := newMemTickets()
	repo.tickets["A"] = &domain.SupportTicket{ID: "a", TicketNumber: "A", Status: domain.TicketOpen}
	repo.tickets["B"] = &domain.SupportTicket{ID: "b", TicketNumber: "B", Status: domain.TicketClosed}
	svc := newTestService(repo)

	d, err := svc.Dashboard(context.Background(), "open", "", 1)
	require.NoError(t, err)
	assert.Len(t, d.Tickets, 1)
	assert.Equal(t, 1, d.Counts[domain.TicketOpen])
	assert.Equal(t, 1, d.Counts[domain.TicketClosed])

	_, err = svc.Dashboard(context.Background(), "", "meh", 1)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
