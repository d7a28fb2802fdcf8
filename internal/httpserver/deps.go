package httpserver

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	accountsvc "storefront/internal/service/account"
	cartsvc "storefront/internal/service/cart"
	contactsvc "storefront/internal/service/contact"
	customersvc "storefront/internal/service/customer"
	feedbacksvc "storefront/internal/service/feedback"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	supportsvc "storefront/internal/service/support"
)

// Deps lists the services the router dispatches to.
type Deps struct {
	Accounts  accountService
	Customers customerService
	Products  productService
	Carts     cartService
	Orders    orderService
	Payments  paymentService
	Dashboard dashboardService
	Support   supportService
	Feedback  feedbackService
	Contact   contactService
	Metrics   *metrics.Metrics

	// StaffSignup opens POST /admin/register to anyone.
	StaffSignup bool
}

type accountService interface {
	Signup(ctx context.Context, in accountsvc.SignupInput) (*domain.User, *domain.Customer, error)
	CreateStaff(ctx context.Context, in accountsvc.SignupInput) (*domain.User, error)
	ListStaff(ctx context.Context) ([]domain.User, error)
	Login(ctx context.Context, username, password string, staff bool) (*accountsvc.Login, error)
	Authenticate(ctx context.Context, token string) (*accountsvc.Principal, error)
	Terminate(ctx context.Context, sessionID string) error
	SessionTTL() time.Duration
}

type customerService interface {
	Ensure(ctx context.Context, userID string) (*domain.Customer, error)
	List(ctx context.Context, search string, page int) (*customersvc.Page, error)
	Detail(ctx context.Context, id string) (*customersvc.Detail, error)
	UpdateContact(ctx context.Context, id string, in customersvc.ContactInput) (*domain.Customer, error)
}

type productService interface {
	List(ctx context.Context, productType string, page int) (*productsvc.Page, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	SetStock(ctx context.Context, id string, quantity int) (*domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, customerID string) (*cartsvc.View, error)
	Add(ctx context.Context, customerID string, in cartsvc.AddInput) (*cartsvc.View, error)
	SetQuantity(ctx context.Context, customerID, itemID string, quantity int) (*cartsvc.View, error)
	Remove(ctx context.Context, customerID, itemID string) (*cartsvc.View, error)
}

type orderService interface {
	PlaceOrder(ctx context.Context, customer domain.Customer, in ordersvc.PlaceInput) (*ordersvc.Placement, error)
	BuyNow(ctx context.Context, customer domain.Customer, productID string, quantity int, in ordersvc.PlaceInput) (*ordersvc.Placement, error)
	AdvanceStatus(ctx context.Context, orderID string, in ordersvc.AdvanceInput, actor string) (*domain.TrackingEvent, error)
	CancelOrder(ctx context.Context, orderID, reason, actor string) (*domain.TrackingEvent, error)
	PublicTrack(ctx context.Context, number, phone string) (*ordersvc.Tracked, error)
	TrackForCustomer(ctx context.Context, customerID, number string) (*ordersvc.Tracked, error)
	Detail(ctx context.Context, orderID string) (*ordersvc.Tracked, error)
	CustomerHistory(ctx context.Context, customerID string, bucket domain.OrderBucket, page int) (*ordersvc.History, error)
	List(ctx context.Context, status string, page int) (*ordersvc.Page, error)
}

type paymentService interface {
	Get(ctx context.Context, id string) (*domain.Payment, error)
	Reconcile(ctx context.Context, paymentID string) (*domain.Payment, error)
	HandleWebhook(ctx context.Context, raw []byte, signature string) (*domain.Payment, error)
}

type dashboardService interface {
	Build(ctx context.Context) (*domain.Dashboard, error)
}

type supportService interface {
	Create(ctx context.Context, customerID, senderUserID string, in supportsvc.CreateInput) (*domain.SupportTicket, error)
	ListForCustomer(ctx context.Context, customerID string, page int) (*supportsvc.Page, error)
	View(ctx context.Context, customerID, number string) (*domain.SupportTicket, error)
	Reply(ctx context.Context, customerID, senderUserID, number, message string) (*domain.SupportMessage, error)
	Dashboard(ctx context.Context, status, priority string, page int) (*supportsvc.Dashboard, error)
	Detail(ctx context.Context, number string) (*domain.SupportTicket, error)
	StaffReply(ctx context.Context, staffUserID, number, message string, internal bool) (*domain.SupportMessage, error)
	Update(ctx context.Context, number string, in supportsvc.UpdateInput) (*domain.SupportTicket, error)
}

type feedbackService interface {
	Submit(ctx context.Context, customerID string, in feedbacksvc.SubmitInput) (*domain.Feedback, error)
	ListForCustomer(ctx context.Context, customerID string, page int) (*feedbacksvc.Page, error)
	List(ctx context.Context, feedbackType, rating string, page int) (*feedbacksvc.Page, error)
	Respond(ctx context.Context, id, staffUserID string, in feedbacksvc.RespondInput) (*domain.Feedback, error)
}

type contactService interface {
	Submit(ctx context.Context, caller *domain.User, in contactsvc.SubmitInput) (*domain.ContactMessage, error)
	Mine(ctx context.Context, userID string, page int) (*contactsvc.Page, error)
	Thread(ctx context.Context, userID, id string) (*domain.ContactMessage, error)
	Reply(ctx context.Context, caller domain.User, id, message string) (*domain.ContactReply, error)
	Inbox(ctx context.Context, filter string, page int) (*contactsvc.Page, error)
	Open(ctx context.Context, id string) (*domain.ContactMessage, error)
	StaffReply(ctx context.Context, staff domain.User, id, message string) (*domain.ContactReply, error)
	MarkRead(ctx context.Context, id string) error
}
