package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	accountsvc "storefront/internal/service/account"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubAccounts struct {
	sessions   map[string]*accountsvc.Principal
	terminated []string
	login      *accountsvc.Login
	loginErr   error
	signupErr  error
	staffLogin bool
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{sessions: map[string]*accountsvc.Principal{
		"customer-token": {User: domain.User{ID: "u-cust", Username: "juan"}, SessionID: "s-cust"},
		"other-token":    {User: domain.User{ID: "u-other", Username: "maria"}, SessionID: "s-other"},
		"staff-token":    {User: domain.User{ID: "u-staff", Username: "admin", IsStaff: true}, SessionID: "s-staff"},
	}}
}

func (s *stubAccounts) Signup(_ context.Context, in accountsvc.SignupInput) (*domain.User, *domain.Customer, error) {
	if s.signupErr != nil {
		return nil, nil, s.signupErr
	}
	return &domain.User{ID: "u-new", Username: in.Username}, &domain.Customer{ID: "c-new"}, nil
}

func (s *stubAccounts) CreateStaff(_ context.Context, in accountsvc.SignupInput) (*domain.User, error) {
	return &domain.User{ID: "u-new-staff", Username: in.Username, IsStaff: true}, nil
}

func (s *stubAccounts) ListStaff(context.Context) ([]domain.User, error) {
	return []domain.User{{ID: "u-staff", Username: "admin", IsStaff: true}}, nil
}

func (s *stubAccounts) Login(_ context.Context, _, _ string, staff bool) (*accountsvc.Login, error) {
	s.staffLogin = staff
	return s.login, s.loginErr
}

func (s *stubAccounts) Authenticate(_ context.Context, token string) (*accountsvc.Principal, error) {
	p, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return p, nil
}

func (s *stubAccounts) Terminate(_ context.Context, sessionID string) error {
	s.terminated = append(s.terminated, sessionID)
	return nil
}

func (s *stubAccounts) SessionTTL() time.Duration { return time.Hour }

// stubCustomers maps user ids to customer profiles.
type stubCustomers struct{}

func (stubCustomers) Ensure(_ context.Context, userID string) (*domain.Customer, error) {
	return &domain.Customer{ID: "c-" + strings.TrimPrefix(userID, "u-"), UserID: userID}, nil
}

func (stubCustomers) List(context.Context, string, int) (*customersvc.Page, error) {
	return &customersvc.Page{Customers: []domain.Customer{}}, nil
}

func (stubCustomers) Detail(context.Context, string) (*customersvc.Detail, error) {
	return nil, domain.ErrNotFound
}

func (stubCustomers) UpdateContact(context.Context, string, customersvc.ContactInput) (*domain.Customer, error) {
	return nil, domain.ErrNotFound
}

type stubOrders struct {
	placeErr   error
	cancelErr  error
	orders     map[string]domain.Order
	lastBucket domain.OrderBucket
	tracked    string
}

func (s *stubOrders) PlaceOrder(_ context.Context, customer domain.Customer, _ ordersvc.PlaceInput) (*ordersvc.Placement, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &ordersvc.Placement{Order: &domain.Order{ID: "o-new", CustomerID: customer.ID}}, nil
}

func (s *stubOrders) BuyNow(ctx context.Context, customer domain.Customer, _ string, _ int, in ordersvc.PlaceInput) (*ordersvc.Placement, error) {
	return s.PlaceOrder(ctx, customer, in)
}

func (s *stubOrders) AdvanceStatus(_ context.Context, orderID string, in ordersvc.AdvanceInput, actor string) (*domain.TrackingEvent, error) {
	return &domain.TrackingEvent{OrderID: orderID, Status: domain.OrderStatus(in.Status), UpdatedBy: actor}, nil
}

func (s *stubOrders) CancelOrder(_ context.Context, orderID, reason, actor string) (*domain.TrackingEvent, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &domain.TrackingEvent{OrderID: orderID, Status: domain.StatusCancelled, Message: reason, UpdatedBy: actor}, nil
}

func (s *stubOrders) PublicTrack(_ context.Context, number, phone string) (*ordersvc.Tracked, error) {
	for _, o := range s.orders {
		if o.OrderNumber == number && o.Phone == phone {
			return &ordersvc.Tracked{Order: o}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrders) TrackForCustomer(_ context.Context, customerID, number string) (*ordersvc.Tracked, error) {
	s.tracked = number
	for _, o := range s.orders {
		if o.OrderNumber == number && o.CustomerID == customerID {
			return &ordersvc.Tracked{Order: o}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrders) Detail(_ context.Context, orderID string) (*ordersvc.Tracked, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ordersvc.Tracked{Order: o}, nil
}

func (s *stubOrders) CustomerHistory(_ context.Context, _ string, bucket domain.OrderBucket, page int) (*ordersvc.History, error) {
	s.lastBucket = bucket
	return &ordersvc.History{Bucket: bucket, Page: ordersvc.Page{Orders: []domain.Order{}, Page: page}}, nil
}

func (s *stubOrders) List(context.Context, string, int) (*ordersvc.Page, error) {
	return &ordersvc.Page{Orders: []domain.Order{}}, nil
}

type stubPayments struct {
	payments   map[string]domain.Payment
	webhookErr error
	signature  string
	reconciled []string
}

func (s *stubPayments) Get(_ context.Context, id string) (*domain.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubPayments) Reconcile(_ context.Context, id string) (*domain.Payment, error) {
	s.reconciled = append(s.reconciled, id)
	p := s.payments[id]
	p.Status = domain.PaymentCompleted
	return &p, nil
}

func (s *stubPayments) HandleWebhook(_ context.Context, _ []byte, signature string) (*domain.Payment, error) {
	s.signature = signature
	if s.webhookErr != nil {
		return nil, s.webhookErr
	}
	return &domain.Payment{ID: "pay-1", Status: domain.PaymentCompleted}, nil
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Accounts == nil {
		deps.Accounts = newStubAccounts()
	}
	if deps.Customers == nil {
		deps.Customers = stubCustomers{}
	}
	router, err := buildRouter(logDiscard(), nil, deps, nil)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
