package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"topup-service/internal/models"
)

// SheetsClient appends order rows to an external spreadsheet via its
// append-row webhook. Every call is best-effort from the pipeline's point of
// view; the client itself just reports errors.
type SheetsClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewSheetsClient creates a spreadsheet mirror client. An empty webhook URL
// disables the client.
func NewSheetsClient(webhookURL string, timeout time.Duration) *SheetsClient {
	return &SheetsClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a webhook is configured.
func (c *SheetsClient) Enabled() bool {
	return c.webhookURL != ""
}

// AppendOrderRow appends one row describing the order. Column order is fixed:
// timestamp, orderId, name, email, phone, gameId, server, serviceName,
// amount, status.
func (c *SheetsClient) AppendOrderRow(ctx context.Context, order *models.Order) error {
	row := []interface{}{
		order.CreatedAt.UTC().Format(time.RFC3339),
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.GameID,
		order.Server,
		order.ServiceName,
		order.FinalAmount,
		order.Status,
	}

	body, err := json.Marshal(map[string]interface{}{"values": [][]interface{}{row}})
	if err != nil {
		return fmt.Errorf("failed to marshal sheet row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet append request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sheet append returned status %d", resp.StatusCode)
	}
	return nil
}
