package pricing

import (
	"context"
	"strings"

	"topup-service/internal/models"
)

// Quote is the result of pricing a service against an optional coupon.
type Quote struct {
	Subtotal    int64  `json:"subtotal"`
	Discount    int64  `json:"discount"`
	FinalAmount int64  `json:"final_amount"`
	CouponCode  string `json:"coupon_code,omitempty"`
	CouponValid bool   `json:"coupon_valid"`
}

// Table maps uppercase coupon codes to their definitions.
type Table map[string]models.Coupon

// DefaultTable returns the active coupon set.
func DefaultTable() Table {
	return Table{
		"WELCOME10": {Code: "WELCOME10", Discount: 10, Type: models.CouponTypePercentage, IsValid: true},
		"SAVE500":   {Code: "SAVE500", Discount: 500, Type: models.CouponTypeFixed, IsValid: true},
		"NEWUSER":   {Code: "NEWUSER", Discount: 15, Type: models.CouponTypePercentage, IsValid: true},
	}
}

// Engine computes subtotal/discount/final amounts. The coupon table is
// injected so tests and a future remote validation service can substitute it.
type Engine struct {
	table Table
}

// NewEngine creates a pricing engine over the given coupon table.
func NewEngine(table Table) *Engine {
	return &Engine{table: table}
}

// Lookup resolves a coupon code, case-insensitively. The context is accepted
// so a remote validation call can replace the table lookup later.
func (e *Engine) Lookup(ctx context.Context, code string) (models.Coupon, bool) {
	coupon, ok := e.table[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || !coupon.IsValid {
		return models.Coupon{}, false
	}
	return coupon, true
}

// Quote prices a service against an optional coupon code. An empty code means
// no coupon; an unknown code yields a zero discount with CouponValid false
// rather than an error. Percentage discounts are rounded half-up on whole
// currency units; fixed discounts are clamped to the service price. Quoting
// is idempotent: the same inputs always produce the same result.
func (e *Engine) Quote(ctx context.Context, service *models.Service, code string) Quote {
	if service == nil {
		return Quote{}
	}

	q := Quote{
		Subtotal:    service.Price,
		FinalAmount: service.Price,
		CouponValid: true,
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return q
	}

	coupon, ok := e.Lookup(ctx, code)
	if !ok {
		q.CouponValid = false
		return q
	}

	q.CouponCode = coupon.Code
	q.Discount = Discount(service.Price, coupon)
	q.FinalAmount = q.Subtotal - q.Discount
	if q.FinalAmount < 0 {
		q.FinalAmount = 0
	}
	return q
}

// Discount computes the discount a coupon grants on a price.
func Discount(price int64, coupon models.Coupon) int64 {
	var d int64
	switch coupon.Type {
	case models.CouponTypePercentage:
		// round half-up
		d = (price*coupon.Discount + 50) / 100
	case models.CouponTypeFixed:
		d = coupon.Discount
	}
	if d > price {
		d = price
	}
	if d < 0 {
		d = 0
	}
	return d
}
