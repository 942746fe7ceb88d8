package integrations

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"

	"topup-service/internal/models"
)

// EmailNotifier sends the new-order notification to the operator inbox.
type EmailNotifier struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

// NewEmailNotifier creates a Resend-backed notifier. An empty API key
// disables it.
func NewEmailNotifier(apiKey, fromEmail, toEmail string) *EmailNotifier {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &EmailNotifier{
		client:    client,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// Enabled reports whether the notifier is configured.
func (n *EmailNotifier) Enabled() bool {
	return n.client != nil && n.toEmail != ""
}

// SendOrderNotification emails the operator about a newly created order.
func (n *EmailNotifier) SendOrderNotification(ctx context.Context, order *models.Order) error {
	params := &resend.SendEmailRequest{
		From:    n.fromEmail,
		To:      []string{n.toEmail},
		Subject: fmt.Sprintf("New order %s - %s", order.ID, order.ServiceName),
		Html:    orderNotificationHTML(order),
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send order notification: %w", err)
	}
	return nil
}

func orderNotificationHTML(order *models.Order) string {
	row := func(label, value string) string {
		return fmt.Sprintf("<tr><td><strong>%s</strong></td><td>%s</td></tr>", label, html.EscapeString(value))
	}

	return fmt.Sprintf(`<h2>New Order Received</h2><table>%s%s%s%s%s%s%s%s</table>`,
		row("Order ID", order.ID),
		row("Service", order.ServiceName),
		row("Amount", fmt.Sprintf("INR %d", order.FinalAmount)),
		row("Customer", order.CustomerName),
		row("Phone", order.CustomerPhone),
		row("Email", order.CustomerEmail),
		row("Game ID", order.GameID),
		row("Server", order.Server),
	)
}
