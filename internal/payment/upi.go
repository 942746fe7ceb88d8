package payment

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"topup-service/internal/models"
)

// LinkBuilder generates UPI deep links for orders. Links are pure string
// construction: deterministic given the order and the configured payee.
type LinkBuilder struct {
	vpa       string
	payeeName string
}

// NewLinkBuilder creates a link builder for the configured payee VPA.
func NewLinkBuilder(vpa, payeeName string) *LinkBuilder {
	return &LinkBuilder{vpa: vpa, payeeName: payeeName}
}

// OrderLink builds the upi://pay link for an order. The transaction note
// embeds the order id and service name and is percent-encoded.
func (b *LinkBuilder) OrderLink(order *models.Order) string {
	note := fmt.Sprintf("Order %s - %s", order.ID, order.ServiceName)
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s",
		escape(b.vpa),
		escape(b.payeeName),
		strconv.FormatInt(order.FinalAmount, 10),
		escape(note))
}

// escape percent-encodes a query value. UPI apps expect %20 for spaces, not
// the application/x-www-form-urlencoded plus sign.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
