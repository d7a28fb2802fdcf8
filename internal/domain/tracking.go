package domain

import "time"

// TrackingEvent is one row of an order's append-only status history.
type TrackingEvent struct {
	ID        int64       `json:"id"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message"`
	Location  string      `json:"location,omitempty"`
	UpdatedBy string      `json:"updatedBy"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SystemActor attributes events that no person triggered.
const SystemActor = "System"
