package domain

import (
	"strings"
	"time"
)

// OrderStatus values are persisted and serialized verbatim.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusReturned       OrderStatus = "returned"
	StatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusReadyForPickup,
	StatusShipped,
	StatusDelivered,
	StatusReturned,
	StatusCancelled,
}

var statusInfo = map[OrderStatus]struct {
	label    string
	progress int
}{
	StatusPending:        {"Order Placed", 10},
	StatusConfirmed:      {"Order Confirmed", 25},
	StatusProcessing:     {"Preparing Order", 50},
	StatusReadyForPickup: {"Ready for Pickup", 65},
	StatusShipped:        {"Out for Delivery", 85},
	StatusDelivered:      {"Delivered", 100},
	StatusReturned:       {"Returned", 75},
	StatusCancelled:      {"Cancelled", 0},
}

// ParseOrderStatus accepts only members of the status enumeration.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.TrimSpace(raw))
	_, ok := statusInfo[s]
	return s, ok
}

func (s OrderStatus) Valid() bool {
	_, ok := statusInfo[s]
	return ok
}

// Label is the customer-facing name of the status.
func (s OrderStatus) Label() string {
	if info, ok := statusInfo[s]; ok {
		return info.label
	}
	return string(s)
}

// Progress maps a status to the percentage shown on tracking pages.
// Unknown statuses report ok == false.
func Progress(s OrderStatus) (int, bool) {
	info, ok := statusInfo[s]
	if !ok {
		return 0, false
	}
	return info.progress, true
}

// Cancellable reports whether an order in status s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s != StatusDelivered && s != StatusCancelled
}

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryMethodDelivery || m == DeliveryMethodPickup
}

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodGCash PaymentMethod = "gcash"
	PaymentMethodMaya  PaymentMethod = "maya"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodGCash, PaymentMethodMaya:
		return true
	}
	return false
}

// RequiresCheckout reports whether the method is settled through the
// hosted payment gateway.
func (m PaymentMethod) RequiresCheckout() bool {
	return m == PaymentMethodGCash || m == PaymentMethodMaya
}

type Order struct {
	ID                string         `json:"id"`
	OrderNumber       string         `json:"orderNumber"`
	CustomerID        string         `json:"customerId"`
	Status            OrderStatus    `json:"status"`
	DeliveryMethod    DeliveryMethod `json:"deliveryMethod"`
	DeliveryAddress   string         `json:"deliveryAddress,omitempty"`
	Phone             string         `json:"phone"`
	Notes             string         `json:"notes,omitempty"`
	PaymentMethod     PaymentMethod  `json:"paymentMethod"`
	SubtotalCents     int64          `json:"subtotalCents"`
	DeliveryFeeCents  int64          `json:"deliveryFeeCents"`
	TotalCents        int64          `json:"totalCents"`
	TrackingNumber    *string        `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time     `json:"deliveredAt,omitempty"`
	DeliveryNotes     string         `json:"deliveryNotes,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	Items             []OrderItem    `json:"items,omitempty"`
}

// OrderItem captures the unit price at checkout time.
type OrderItem struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (i OrderItem) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// OrderBucket groups statuses for the customer's order history tabs.
type OrderBucket string

const (
	BucketAll       OrderBucket = "all"
	BucketToPay     OrderBucket = "to_pay"
	BucketToShip    OrderBucket = "to_ship"
	BucketToReceive OrderBucket = "to_receive"
	BucketCompleted OrderBucket = "completed"
	BucketReturned  OrderBucket = "returned"
	BucketCancelled OrderBucket = "cancelled"
)

// OrderBuckets lists the status-derived buckets, excluding BucketAll.
var OrderBuckets = []OrderBucket{
	BucketToPay,
	BucketToShip,
	BucketToReceive,
	BucketCompleted,
	BucketReturned,
	BucketCancelled,
}

var bucketStatuses = map[OrderBucket][]OrderStatus{
	BucketToPay:     {StatusPending, StatusConfirmed},
	BucketToShip:    {StatusProcessing, StatusReadyForPickup},
	BucketToReceive: {StatusShipped},
	BucketCompleted: {StatusDelivered},
	BucketReturned:  {StatusReturned},
	BucketCancelled: {StatusCancelled},
}

// Statuses returns the statuses in the bucket. BucketAll returns nil,
// meaning no filter. Unknown buckets report ok == false.
func (b OrderBucket) Statuses() ([]OrderStatus, bool) {
	if b == BucketAll {
		return nil, true
	}
	statuses, ok := bucketStatuses[b]
	return statuses, ok
}
