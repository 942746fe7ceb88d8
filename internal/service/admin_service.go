package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"topup-service/internal/models"
	"topup-service/internal/util"
)

// AdminStore is the persistence surface the admin console needs.
type AdminStore interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, fromStatus, toStatus string) (bool, error)
	SummarizeOrders(ctx context.Context) (*models.OrderSummary, error)
}

// SummaryCache caches the aggregate order summary.
type SummaryCache interface {
	GetCachedSummary(ctx context.Context) (*models.OrderSummary, error)
	CacheSummary(ctx context.Context, summary *models.OrderSummary, ttl time.Duration) error
	InvalidateSummary(ctx context.Context) error
}

// AdminService backs the admin order console: bulk order reads, aggregate
// counts, and guarded status transitions.
type AdminService struct {
	store      AdminStore
	cache      SummaryCache
	events     EventPublisher
	summaryTTL time.Duration
	logger     *zap.Logger
}

// NewAdminService creates a new admin service. cache and events may be nil.
func NewAdminService(store AdminStore, cache SummaryCache, events EventPublisher, summaryTTL time.Duration) *AdminService {
	return &AdminService{
		store:      store,
		cache:      cache,
		events:     events,
		summaryTTL: summaryTTL,
		logger:     util.GetLogger(),
	}
}

// ListOrders returns all orders, most recent first.
func (s *AdminService) ListOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.ListOrders")
	defer span.End()

	return s.store.ListOrders(ctx)
}

// Summary returns per-status counts and completed revenue, served from the
// cache when fresh.
func (s *AdminService) Summary(ctx context.Context) (*models.OrderSummary, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.Summary")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.GetCachedSummary(ctx)
		if err != nil {
			s.logger.Warn("Summary cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	summary, err := s.store.SummarizeOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheSummary(ctx, summary, s.summaryTTL); err != nil {
			s.logger.Warn("Summary cache write failed", zap.Error(err))
		}
	}

	return summary, nil
}

// UpdateStatus moves an order through its lifecycle. Transitions outside the
// central table are rejected and the order is left unchanged. Concurrent
// updates are last-write-wins: the losing update fails the status guard and
// is rejected.
func (s *AdminService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.UpdateStatus")
	defer span.End()

	if !models.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, newStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, newStatus) {
		util.OrderStatusRejectionsTotal.Inc()
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, newStatus)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, orderID, order.Status, newStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		// lost a race with another admin session
		util.OrderStatusRejectionsTotal.Inc()
		return nil, fmt.Errorf("%w: order %s changed concurrently", models.ErrInvalidTransition, orderID)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(order.Status, newStatus).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", newStatus))

	if s.cache != nil {
		if err := s.cache.InvalidateSummary(ctx); err != nil {
			s.logger.Warn("Failed to invalidate summary cache", zap.Error(err))
		}
	}

	s.publishStatusChanged(ctx, orderID, order.Status, newStatus)

	return s.store.GetOrderByID(ctx, orderID)
}

func (s *AdminService) publishStatusChanged(ctx context.Context, orderID, from, to string) {
	if s.events == nil {
		return
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now().UTC(),
		},
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}

	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		util.IntegrationFailuresTotal.WithLabelValues("kafka").Inc()
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
