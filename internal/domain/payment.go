package domain

import "time"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

// Final reports whether no further gateway update can change the status.
func (s PaymentStatus) Final() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentCancelled
}

// Payment records one hosted checkout attempt for an order.
type Payment struct {
	ID              string        `json:"id"`
	OrderID         string        `json:"orderId"`
	Method          PaymentMethod `json:"method"`
	AmountCents     int64         `json:"amountCents"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	CheckoutID      *string       `json:"checkoutId,omitempty"`
	ReferenceNumber string        `json:"referenceNumber,omitempty"`
	CheckoutURL     string        `json:"checkoutUrl,omitempty"`
	LastError       string        `json:"lastError,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
