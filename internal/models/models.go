package models

import (
	"errors"
	"time"
)

// Service represents a catalog entry (diamond pack, pass, etc.)
type Service struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"original_price,omitempty"`
	Category      string   `json:"category"`
	Features      []string `json:"features"`
}

// Coupon discount types
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// Coupon represents a discount code
type Coupon struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
	Type     string `json:"type"`
	IsValid  bool   `json:"is_valid"`
}

// CustomerDetails is the customer snapshot embedded in an order
type CustomerDetails struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// Order represents a persisted top-up order
type Order struct {
	ID                 string    `db:"id" json:"id"`
	CustomerName       string    `db:"customer_name" json:"customer_name"`
	CustomerEmail      string    `db:"customer_email" json:"customer_email"`
	CustomerPhone      string    `db:"customer_phone" json:"customer_phone"`
	AdditionalInfo     string    `db:"additional_info" json:"additional_info,omitempty"`
	GameID             string    `db:"game_id" json:"game_id"`
	Server             string    `db:"server" json:"server"`
	ServiceID          string    `db:"service_id" json:"service_id,omitempty"`
	ServiceName        string    `db:"service_name" json:"service_name"`
	ServiceDescription string    `db:"service_description" json:"service_description,omitempty"`
	Quantity           int       `db:"quantity" json:"quantity"`
	Subtotal           int64     `db:"subtotal" json:"subtotal"`
	Discount           int64     `db:"discount" json:"discount"`
	FinalAmount        int64     `db:"final_amount" json:"final_amount"`
	CouponCode         string    `db:"coupon_code" json:"coupon_code,omitempty"`
	Status             string    `db:"status" json:"status"`
	PaymentID          string    `db:"payment_id" json:"payment_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ErrInvalidTransition is returned when a status change is not permitted
// by the order lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownStatus is returned for a status outside the closed enum.
var ErrUnknownStatus = errors.New("unknown order status")

// allowedTransitions is the single source of truth for the order lifecycle:
// pending -> processing -> completed, with cancellation allowed from any
// non-terminal state. completed and cancelled are terminal.
var allowedTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderSummary aggregates order counts per status plus revenue over
// completed orders.
type OrderSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Revenue  int64          `json:"revenue"`
}
