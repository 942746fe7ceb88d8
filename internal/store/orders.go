package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"topup-service/internal/models"
)

// ErrOrderNotFound is returned when an order id matches no row.
var ErrOrderNotFound = errors.New("order not found")

// CreateOrder inserts a new order. The database assigns the identifier and
// timestamps, which are echoed back onto the passed order.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			customer_name, customer_email, customer_phone, additional_info,
			game_id, server, service_id, service_name, service_description,
			quantity, subtotal, discount, final_amount, coupon_code,
			status, payment_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id, created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.AdditionalInfo,
		order.GameID, order.Server, order.ServiceID, order.ServiceName, order.ServiceDescription,
		order.Quantity, order.Subtotal, order.Discount, order.FinalAmount, order.CouponCode,
		order.Status, order.PaymentID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves all orders, most recent first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// UpdateOrderStatus moves an order from one status to another. The current
// status is part of the WHERE clause so a concurrent admin update can never
// persist a transition that was checked against a stale status. Returns
// false when no row matched.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, fromStatus, toStatus string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		toStatus, orderID, fromStatus)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SummarizeOrders aggregates order counts per status and revenue over
// completed orders.
func (s *Store) SummarizeOrders(ctx context.Context) (*models.OrderSummary, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
		Amount int64  `db:"amount"`
	}{}

	err := s.db.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) AS count, COALESCE(SUM(final_amount), 0) AS amount FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}

	summary := &models.OrderSummary{ByStatus: make(map[string]int)}
	for _, r := range rows {
		summary.Total += r.Count
		summary.ByStatus[r.Status] = r.Count
		if r.Status == models.OrderStatusCompleted {
			summary.Revenue += r.Amount
		}
	}
	return summary, nil
}
