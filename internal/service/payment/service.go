// Package payment bridges gateway-paid orders to the hosted checkout API.
// Payment outcomes are stored on the payment row and noted on the order's
// tracking history; they never change the order status.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
)

// ErrInvalidSignature is returned for webhooks whose signature does not match.
var ErrInvalidSignature = fmt.Errorf("%w: invalid webhook signature", domain.ErrUnauthorized)

type paymentRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByCheckoutID(ctx context.Context, checkoutID string) (*domain.Payment, error)
	LatestForOrder(ctx context.Context, orderID string) (*domain.Payment, error)
	MarkCheckoutStarted(ctx context.Context, id, checkoutID, reference, checkoutURL string) error
	SetStatus(ctx context.Context, id string, status domain.PaymentStatus, lastError string) (bool, error)
}

type gateway interface {
	CreateCheckout(ctx context.Context, in CheckoutRequest) (*CheckoutResponse, error)
	GetCheckout(ctx context.Context, checkoutID string) (*CheckoutStatus, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Notes appends a tracking note at the order's current status.
type Notes interface {
	AppendNote(ctx context.Context, orderID, message, actor string) (*domain.TrackingEvent, error)
}

type Recorder interface {
	PaymentOutcome(status domain.PaymentStatus)
}

type Options struct {
	// PublicBaseURL prefixes the success/failure/cancel return URLs.
	PublicBaseURL string
	WebhookSecret string
}

type Service struct {
	payments paymentRepo
	gateway  gateway
	products productRepo
	notes    Notes
	metrics  Recorder
	opts     Options
	logger   *log.Logger
}

func New(payments paymentRepo, gw gateway, products productRepo, notes Notes, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Service{
		payments: payments,
		gateway:  gw,
		products: products,
		notes:    notes,
		opts:     opts,
		logger:   logger,
	}
}

func (s *Service) UseRecorder(r Recorder) { s.metrics = r }

func (s *Service) Get(ctx context.Context, id string) (*domain.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) LatestForOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	return s.payments.LatestForOrder(ctx, orderID)
}

// StartCheckout opens a hosted checkout for a freshly placed order and
// returns the URL to send the buyer to. On failure the payment is marked
// failed, the order gets a note, and the error is returned for display.
func (s *Service) StartCheckout(ctx context.Context, o domain.Order, p domain.Payment, buyer domain.Customer) (string, error) {
	req := s.checkoutRequest(ctx, o, p, buyer)
	resp, err := s.gateway.CreateCheckout(ctx, req)
	if err != nil {
		s.logger.Printf("payment service: checkout failed order=%s payment_id=%s err=%v", o.OrderNumber, p.ID, err)
		if _, serr := s.payments.SetStatus(ctx, p.ID, domain.PaymentFailed, err.Error()); serr != nil {
			s.logger.Printf("payment service: mark failed payment_id=%s err=%v", p.ID, serr)
		}
		s.record(domain.PaymentFailed)
		s.note(ctx, o.ID, fmt.Sprintf("Payment via %s could not be started. The order remains pending.", methodLabel(p.Method)))
		return "", err
	}
	if err := s.payments.MarkCheckoutStarted(ctx, p.ID, resp.CheckoutID, req.RequestReferenceNumber, resp.RedirectURL); err != nil {
		return "", err
	}
	s.logger.Printf("payment service: checkout started order=%s payment_id=%s checkout_id=%s", o.OrderNumber, p.ID, resp.CheckoutID)
	return resp.RedirectURL, nil
}

func (s *Service) checkoutRequest(ctx context.Context, o domain.Order, p domain.Payment, buyer domain.Customer) CheckoutRequest {
	currency := p.Currency
	items := make([]Item, 0, len(o.Items)+1)
	for _, it := range o.Items {
		items = append(items, Item{
			Name:        it.ProductName,
			Quantity:    it.Quantity,
			Code:        it.ProductID,
			Description: s.describe(ctx, it),
			Amount:      NewAmount(it.UnitPriceCents, currency),
			TotalAmount: NewAmount(it.LineTotalCents(), currency),
		})
	}
	if o.DeliveryFeeCents > 0 {
		items = append(items, Item{
			Name:        "Delivery Fee",
			Quantity:    1,
			Code:        "DELIVERY",
			Description: "Delivery fee for your order",
			Amount:      NewAmount(o.DeliveryFeeCents, currency),
			TotalAmount: NewAmount(o.DeliveryFeeCents, currency),
		})
	}

	firstName := buyer.FirstName
	if firstName == "" {
		firstName = "Customer"
	}
	metadata := map[string]string{"order_id": o.ID, "payment_id": p.ID}
	if p.Method == domain.PaymentMethodGCash {
		metadata["payment_method"] = string(p.Method)
	}
	return CheckoutRequest{
		TotalAmount: NewAmount(o.TotalCents, currency),
		Buyer: Buyer{
			FirstName: firstName,
			LastName:  buyer.LastName,
			Contact:   Contact{Phone: o.Phone, Email: buyer.Email},
		},
		Items: items,
		RedirectURL: RedirectURLs{
			Success: s.returnURL(p.ID, "success"),
			Failure: s.returnURL(p.ID, "failure"),
			Cancel:  s.returnURL(p.ID, "cancel"),
		},
		RequestReferenceNumber: ReferenceNumber(o, p),
		Metadata:               metadata,
	}
}

func (s *Service) describe(ctx context.Context, it domain.OrderItem) string {
	desc := it.ProductName
	if s.products != nil {
		if product, err := s.products.GetByID(ctx, it.ProductID); err == nil && product.Description != "" {
			desc = product.Description
		}
	}
	if r := []rune(desc); len(r) > 100 {
		desc = string(r[:100])
	}
	return desc
}

func (s *Service) returnURL(paymentID, outcome string) string {
	return fmt.Sprintf("%s/payments/%s/%s", s.opts.PublicBaseURL, paymentID, outcome)
}

// ReferenceNumber is the request reference sent to the gateway.
func ReferenceNumber(o domain.Order, p domain.Payment) string {
	if p.Method == domain.PaymentMethodGCash {
		return fmt.Sprintf("GM-GCASH-%s-%s", o.OrderNumber, p.ID)
	}
	return fmt.Sprintf("GM-%s-%s", o.OrderNumber, p.ID)
}

// Reconcile polls the gateway for a payment that has not reached a final
// status and records the outcome. Gateway errors are returned together with
// the unchanged payment.
func (s *Service) Reconcile(ctx context.Context, paymentID string) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status.Final() || p.CheckoutID == nil {
		return p, nil
	}
	st, err := s.gateway.GetCheckout(ctx, *p.CheckoutID)
	if err != nil {
		return p, err
	}
	return s.apply(ctx, p, MapStatus(st.Status))
}

type webhookBody struct {
	ID                     string `json:"id"`
	Status                 string `json:"status"`
	RequestReferenceNumber string `json:"requestReferenceNumber"`
}

// HandleWebhook verifies and applies a gateway notification. raw must be the
// exact request body the signature was computed over.
func (s *Service) HandleWebhook(ctx context.Context, raw []byte, signature string) (*domain.Payment, error) {
	if !VerifySignature(s.opts.WebhookSecret, raw, signature) {
		s.logger.Printf("payment service: webhook rejected bad signature")
		return nil, ErrInvalidSignature
	}
	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, domain.NewValidationError("body", "invalid JSON")
	}
	if strings.TrimSpace(body.ID) == "" {
		return nil, domain.NewValidationError("id", "required")
	}
	p, err := s.payments.GetByCheckoutID(ctx, body.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("payment service: webhook checkout_id=%s status=%s reference=%s", body.ID, body.Status, body.RequestReferenceNumber)
	return s.apply(ctx, p, MapStatus(body.Status))
}

func (s *Service) apply(ctx context.Context, p *domain.Payment, status domain.PaymentStatus) (*domain.Payment, error) {
	if !status.Final() {
		return p, nil
	}
	changed, err := s.payments.SetStatus(ctx, p.ID, status, "")
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.payments.GetByID(ctx, p.ID)
	}
	p.Status = status
	s.record(status)
	s.note(ctx, p.OrderID, outcomeMessage(*p))
	return p, nil
}

func (s *Service) note(ctx context.Context, orderID, message string) {
	if s.notes == nil {
		return
	}
	if _, err := s.notes.AppendNote(ctx, orderID, message, domain.SystemActor); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Printf("payment service: tracking note order_id=%s err=%v", orderID, err)
	}
}

func (s *Service) record(status domain.PaymentStatus) {
	if s.metrics != nil {
		s.metrics.PaymentOutcome(status)
	}
}

func outcomeMessage(p domain.Payment) string {
	label := methodLabel(p.Method)
	switch p.Status {
	case domain.PaymentCompleted:
		if p.ReferenceNumber != "" {
			return fmt.Sprintf("Payment received via %s. Reference: %s", label, p.ReferenceNumber)
		}
		return fmt.Sprintf("Payment received via %s.", label)
	case domain.PaymentFailed:
		return fmt.Sprintf("Payment via %s failed.", label)
	default:
		return fmt.Sprintf("Payment via %s was cancelled.", label)
	}
}

// MapStatus converts a gateway status token. Unknown tokens are pending.
func MapStatus(token string) domain.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "payment_success":
		return domain.PaymentCompleted
	case "payment_failed":
		return domain.PaymentFailed
	case "payment_cancelled":
		return domain.PaymentCancelled
	}
	return domain.PaymentPending
}

// Sign computes the hex HMAC-SHA256 of body with secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the HMAC of body. An empty
// secret never verifies.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
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
