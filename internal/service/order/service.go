// Package order places orders and moves them through their lifecycle. Every
// status change is written together with its tracking event.
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

const (
	placedMessage       = "Order has been placed successfully. We will start preparing your fresh corn products."
	awaitingPayment     = "Order placed. Awaiting payment via %s."
	defaultCancelReason = "Order cancelled by admin"
	numberAttempts      = 5
)

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, *domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByNumberAndPhone(ctx context.Context, number, phone string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, int, error)
	CountByStatus(ctx context.Context, customerID string) (map[domain.OrderStatus]int, error)
	Transition(ctx context.Context, orderID string, fn orderrepo.TransitionFunc) (*domain.Order, *domain.TrackingEvent, error)
	History(ctx context.Context, orderID string) ([]domain.TrackingEvent, error)
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, customerID string) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// CheckoutStarter opens a hosted checkout for an order that is paid through
// the gateway. It returns the URL the buyer should be sent to.
type CheckoutStarter interface {
	StartCheckout(ctx context.Context, o domain.Order, p domain.Payment, buyer domain.Customer) (string, error)
}

// Publisher is notified after a tracking event has been committed.
type Publisher interface {
	PublishTracking(ctx context.Context, o domain.Order, e domain.TrackingEvent)
}

type Recorder interface {
	OrderPlaced(method domain.PaymentMethod)
	OrderTransitioned(status domain.OrderStatus)
}

type Options struct {
	Currency          string
	DeliveryFeeCents  int64
	DefaultLocation   string
	EstimatedDelivery time.Duration
	PageSize          int
}

type Service struct {
	orders   orderRepo
	carts    cartRepo
	products productRepo
	checkout CheckoutStarter
	events   Publisher
	metrics  Recorder
	opts     Options
	logger   *log.Logger

	now               func() time.Time
	newOrderNumber    func() string
	newTrackingNumber func() string
}

func New(orders orderRepo, carts cartRepo, products productRepo, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.EstimatedDelivery <= 0 {
		opts.EstimatedDelivery = 72 * time.Hour
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Service{
		orders:            orders,
		carts:             carts,
		products:          products,
		opts:              opts,
		logger:            logger,
		now:               time.Now,
		newOrderNumber:    randomOrderNumber,
		newTrackingNumber: randomTrackingNumber,
	}
}

// UseCheckout routes gateway payment methods through c.
func (s *Service) UseCheckout(c CheckoutStarter) { s.checkout = c }

func (s *Service) UsePublisher(p Publisher) { s.events = p }

func (s *Service) UseRecorder(r Recorder) { s.metrics = r }

// PlaceInput holds the checkout form fields.
type PlaceInput struct {
	DeliveryMethod  domain.DeliveryMethod `json:"deliveryMethod"`
	DeliveryAddress string                `json:"deliveryAddress"`
	Phone           string                `json:"phone"`
	Notes           string                `json:"notes"`
	PaymentMethod   domain.PaymentMethod  `json:"paymentMethod"`
}

// Placement is the result of a checkout. CheckoutURL is set when the buyer
// must continue on the payment gateway; PaymentError is set when the
// gateway could not be reached, in which case the order stays pending.
type Placement struct {
	Order        *domain.Order   `json:"order"`
	Payment      *domain.Payment `json:"payment,omitempty"`
	CheckoutURL  string          `json:"checkoutUrl,omitempty"`
	PaymentError string          `json:"paymentError,omitempty"`
}

type line struct {
	product  domain.Product
	quantity int
}

// PlaceOrder converts the customer's cart into an order.
func (s *Service) PlaceOrder(ctx context.Context, customer domain.Customer, in PlaceInput) (*Placement, error) {
	in = normalize(in)
	if verr := validatePlace(in); !verr.Empty() {
		return nil, verr
	}
	cart, err := s.carts.GetOrCreate(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]line, 0, len(cart.Items))
	itemIDs := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, line{
			product: domain.Product{
				ID:            item.ProductID,
				Name:          item.ProductName,
				PriceCents:    item.PriceCents,
				StockQuantity: item.StockQuantity,
			},
			quantity: item.Quantity,
		})
		itemIDs = append(itemIDs, item.ID)
	}
	return s.place(ctx, customer, in, lines, cart.ID, itemIDs)
}

// BuyNow checks out a single product without touching the cart.
func (s *Service) BuyNow(ctx context.Context, customer domain.Customer, productID string, quantity int, in PlaceInput) (*Placement, error) {
	in = normalize(in)
	verr := validatePlace(in)
	if quantity < 1 {
		if verr == nil {
			verr = &domain.ValidationError{}
		}
		verr.Add("quantity", "must be at least 1")
	}
	if !verr.Empty() {
		return nil, verr
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.place(ctx, customer, in, []line{{product: *product, quantity: quantity}}, "", nil)
}

func (s *Service) place(ctx context.Context, customer domain.Customer, in PlaceInput, lines []line, cartID string, cartItemIDs []string) (*Placement, error) {
	if err := checkStock(lines); err != nil {
		return nil, err
	}

	var subtotal int64
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		subtotal += l.product.PriceCents * int64(l.quantity)
		items = append(items, domain.OrderItem{
			ProductID:      l.product.ID,
			ProductName:    l.product.Name,
			Quantity:       l.quantity,
			UnitPriceCents: l.product.PriceCents,
		})
	}
	var fee int64
	if in.DeliveryMethod == domain.DeliveryMethodDelivery {
		fee = s.opts.DeliveryFeeCents
	}

	address := in.DeliveryAddress
	if in.DeliveryMethod == domain.DeliveryMethodPickup {
		address = ""
	}
	input := orderrepo.CreateInput{
		Order: domain.Order{
			CustomerID:       customer.ID,
			Status:           domain.StatusPending,
			DeliveryMethod:   in.DeliveryMethod,
			DeliveryAddress:  address,
			Phone:            in.Phone,
			Notes:            in.Notes,
			PaymentMethod:    in.PaymentMethod,
			SubtotalCents:    subtotal,
			DeliveryFeeCents: fee,
			TotalCents:       subtotal + fee,
		},
		Items: items,
		Initial: domain.TrackingEvent{
			Status:    domain.StatusPending,
			Message:   placedMessage,
			Location:  s.opts.DefaultLocation,
			UpdatedBy: domain.SystemActor,
		},
		CartID:      cartID,
		CartItemIDs: cartItemIDs,
	}
	if in.PaymentMethod.RequiresCheckout() {
		input.Initial.Message = fmt.Sprintf(awaitingPayment, methodLabel(in.PaymentMethod))
		input.Payment = &domain.Payment{
			ID:          uuid.NewString(),
			Method:      in.PaymentMethod,
			AmountCents: subtotal + fee,
			Currency:    s.opts.Currency,
			Status:      domain.PaymentPending,
		}
	}

	var (
		created *domain.Order
		payment *domain.Payment
		err     error
	)
	for attempt := 0; attempt < numberAttempts; attempt++ {
		input.Order.OrderNumber = s.newOrderNumber()
		created, payment, err = s.orders.Create(ctx, input)
		if !errors.Is(err, domain.ErrAlreadyExists) {
			break
		}
		s.logger.Printf("order service: order number collision number=%s attempt=%d", input.Order.OrderNumber, attempt+1)
	}
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, errors.New("could not allocate a unique order number")
		}
		return nil, err
	}

	s.logger.Printf("order service: placed number=%s customer_id=%s total_cents=%d method=%s",
		created.OrderNumber, customer.ID, created.TotalCents, created.PaymentMethod)
	if s.metrics != nil {
		s.metrics.OrderPlaced(created.PaymentMethod)
	}
	s.publish(ctx, *created, domain.TrackingEvent{
		OrderID:   created.ID,
		Status:    created.Status,
		Message:   input.Initial.Message,
		Location:  input.Initial.Location,
		UpdatedBy: input.Initial.UpdatedBy,
		CreatedAt: created.CreatedAt,
	})

	placement := &Placement{Order: created, Payment: payment}
	if payment != nil && s.checkout != nil {
		url, err := s.checkout.StartCheckout(ctx, *created, *payment, customer)
		if err != nil {
			placement.PaymentError = err.Error()
		} else {
			placement.CheckoutURL = url
		}
	}
	return placement, nil
}

// AdvanceInput describes an admin status change. Message and Location are
// optional.
type AdvanceInput struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

// AdvanceStatus moves the order to any status, including the one it is
// already in, and records one tracking event.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, in AdvanceInput, actor string) (*domain.TrackingEvent, error) {
	target, ok := domain.ParseOrderStatus(in.Status)
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("%q is not a valid order status", in.Status))
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = "Order status updated to " + target.Label()
	}

	updated, event, err := s.orders.Transition(ctx, orderID, func(o *domain.Order) (domain.TrackingEvent, error) {
		now := s.now().UTC()
		o.Status = target
		if target == domain.StatusShipped {
			if o.TrackingNumber == nil {
				tn := s.newTrackingNumber()
				o.TrackingNumber = &tn
			}
			if o.EstimatedDelivery == nil {
				eta := now.Add(s.opts.EstimatedDelivery)
				o.EstimatedDelivery = &eta
			}
		}
		if target == domain.StatusDelivered && o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
		return domain.TrackingEvent{
			Message:   message,
			Location:  strings.TrimSpace(in.Location),
			UpdatedBy: actorOrSystem(actor),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, *updated, *event)
	return event, nil
}

// CancelOrder cancels an order unless it is already delivered or cancelled.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason, actor string) (*domain.TrackingEvent, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}
	updated, event, err := s.orders.Transition(ctx, orderID, func(o *domain.Order) (domain.TrackingEvent, error) {
		if !o.Status.Cancellable() {
			return domain.TrackingEvent{}, &domain.InvalidTransitionError{Current: o.Status, Target: domain.StatusCancelled}
		}
		o.Status = domain.StatusCancelled
		return domain.TrackingEvent{
			Message:   reason,
			Location:  s.opts.DefaultLocation,
			UpdatedBy: actorOrSystem(actor),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, *updated, *event)
	return event, nil
}

// AppendNote records a tracking event at the order's current status without
// changing it.
func (s *Service) AppendNote(ctx context.Context, orderID, message, actor string) (*domain.TrackingEvent, error) {
	updated, event, err := s.orders.Transition(ctx, orderID, func(o *domain.Order) (domain.TrackingEvent, error) {
		return domain.TrackingEvent{
			Message:   message,
			Location:  s.opts.DefaultLocation,
			UpdatedBy: actorOrSystem(actor),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *updated, *event)
	return event, nil
}

func (s *Service) afterTransition(ctx context.Context, o domain.Order, e domain.TrackingEvent) {
	if s.metrics != nil {
		s.metrics.OrderTransitioned(o.Status)
	}
	s.publish(ctx, o, e)
}

func (s *Service) publish(ctx context.Context, o domain.Order, e domain.TrackingEvent) {
	if s.events != nil {
		s.events.PublishTracking(ctx, o, e)
	}
}

func normalize(in PlaceInput) PlaceInput {
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.PaymentMethodCash
	}
	return in
}

func validatePlace(in PlaceInput) *domain.ValidationError {
	verr := &domain.ValidationError{}
	if !in.DeliveryMethod.Valid() {
		verr.Add("deliveryMethod", "must be delivery or pickup")
	}
	if !in.PaymentMethod.Valid() {
		verr.Add("paymentMethod", "must be cash, gcash or maya")
	}
	if in.Phone == "" {
		verr.Add("phone", "required")
	}
	if in.DeliveryMethod == domain.DeliveryMethodDelivery && in.DeliveryAddress == "" {
		verr.Add("deliveryAddress", "required for delivery")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// checkStock reports every line asking for more than is in stock.
func checkStock(lines []line) error {
	var short []domain.StockShortage
	for _, l := range lines {
		if l.quantity > l.product.StockQuantity {
			short = append(short, domain.StockShortage{
				ProductID:   l.product.ID,
				ProductName: l.product.Name,
				Requested:   l.quantity,
				Available:   l.product.StockQuantity,
			})
		}
	}
	if len(short) > 0 {
		return &domain.InsufficientStockError{Items: short}
	}
	return nil
}

func methodLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentMethodGCash:
		return "GCash"
	case domain.PaymentMethodMaya:
		return "PayMaya"
	}
	return string(m)
}

func actorOrSystem(actor string) string {
	if a := strings.TrimSpace(actor); a != "" {
		return a
	}
	return domain.SystemActor
}

func randomOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func randomTrackingNumber() string {
	var b strings.Builder
	b.WriteString("GM")
	for i := 0; i < 8; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}
