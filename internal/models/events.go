package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when the submission pipeline persists an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	ServiceName string `json:"service_name"`
	Subtotal    int64  `json:"subtotal"`
	Discount    int64  `json:"discount"`
	FinalAmount int64  `json:"final_amount"`
	CouponCode  string `json:"coupon_code,omitempty"`
	Status      string `json:"status"`
}

// OrderStatusChangedEvent published when the admin console moves an order
// through its lifecycle
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}
