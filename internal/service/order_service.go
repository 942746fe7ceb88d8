package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"topup-service/internal/catalog"
	"topup-service/internal/checkout"
	"topup-service/internal/models"
	"topup-service/internal/payment"
	"topup-service/internal/pricing"
	"topup-service/internal/util"
)

// OrderStore is the persistence surface the pipeline needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
}

// SheetMirror appends order rows to the external spreadsheet (best-effort).
type SheetMirror interface {
	Enabled() bool
	AppendOrderRow(ctx context.Context, order *models.Order) error
}

// Notifier sends the operator notification (best-effort).
type Notifier interface {
	Enabled() bool
	SendOrderNotification(ctx context.Context, order *models.Order) error
}

// EventPublisher publishes order lifecycle events (best-effort).
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// IdempotencyCache deduplicates retried submissions.
type IdempotencyCache interface {
	AcquireIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) (bool, error)
	GetIdempotentOrderID(ctx context.Context, key string) (string, error)
}

// OrderService runs the order submission pipeline.
type OrderService struct {
	store             OrderStore
	catalog           *catalog.Catalog
	pricing           *pricing.Engine
	sheets            SheetMirror
	notifier          Notifier
	events            EventPublisher
	idem              IdempotencyCache
	links             *payment.LinkBuilder
	sideEffectTimeout time.Duration
	logger            *zap.Logger
}

// NewOrderService creates a new order service. events and idem may be nil
// when the corresponding backends are not configured.
func NewOrderService(
	store OrderStore,
	cat *catalog.Catalog,
	engine *pricing.Engine,
	sheets SheetMirror,
	notifier Notifier,
	events EventPublisher,
	idem IdempotencyCache,
	links *payment.LinkBuilder,
	sideEffectTimeout time.Duration,
) *OrderService {
	return &OrderService{
		store:             store,
		catalog:           cat,
		pricing:           engine,
		sheets:            sheets,
		notifier:          notifier,
		events:            events,
		idem:              idem,
		links:             links,
		sideEffectTimeout: sideEffectTimeout,
		logger:            util.GetLogger(),
	}
}

// SubmitOrderRequest is the order submission payload. Field validation is
// done by the checkout draft so rejections carry user-facing messages.
type SubmitOrderRequest struct {
	CustomerName       string `json:"customer_name"`
	CustomerEmail      string `json:"customer_email"`
	CustomerPhone      string `json:"customer_phone"`
	AdditionalInfo     string `json:"additional_info"`
	GameID             string `json:"game_id"`
	Server             string `json:"server"`
	ServiceID          string `json:"service_id"`
	ServiceName        string `json:"service_name"`
	ServiceDescription string `json:"service_description"`
	Amount             int64  `json:"amount"`
	CouponCode         string `json:"coupon_code"`
	PaymentID          string `json:"payment_id"`
	IdempotencyKey     string `json:"idempotency_key,omitempty"`
}

// SubmitOrderResponse mirrors the wire contract of the order endpoint.
type SubmitOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	UPIURL  string `json:"upiUrl,omitempty"`
}

// Submit runs the pipeline: validate, persist (fatal on failure), attempt the
// spreadsheet mirror and operator email concurrently (logged on failure,
// never surfaced), publish the created event, and build the payment link.
func (s *OrderService) Submit(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Submit")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SubmissionLatency.Observe(time.Since(start).Seconds())
	}()

	sub, err := s.buildSubmission(ctx, req)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idem != nil {
		existingID, err := s.idem.GetIdempotentOrderID(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		} else if existingID != "" {
			return s.duplicateResponse(ctx, req.IdempotencyKey, existingID)
		}
	}

	order := &models.Order{
		CustomerName:       sub.Customer.Name,
		CustomerEmail:      sub.Customer.Email,
		CustomerPhone:      sub.Customer.Phone,
		AdditionalInfo:     sub.Customer.AdditionalInfo,
		GameID:             sub.GameID,
		Server:             sub.Server,
		ServiceID:          sub.Service.ID,
		ServiceName:        sub.Service.Name,
		ServiceDescription: sub.Service.Description,
		Quantity:           1,
		Subtotal:           sub.Subtotal,
		Discount:           sub.Discount,
		FinalAmount:        sub.FinalAmount,
		CouponCode:         sub.CouponCode,
		Status:             models.OrderStatusPending,
		PaymentID:          req.PaymentID,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	util.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("service", order.ServiceName),
		zap.Int64("final_amount", order.FinalAmount))

	if req.IdempotencyKey != "" && s.idem != nil {
		if _, err := s.idem.AcquireIdempotency(ctx, req.IdempotencyKey, order.ID, 24*time.Hour); err != nil {
			s.logger.Warn("Failed to record idempotency key",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
	}

	s.runSideEffects(order)
	s.publishCreated(ctx, order)

	return &SubmitOrderResponse{
		Success: true,
		OrderID: order.ID,
		Message: "Order processed successfully",
		UPIURL:  s.links.OrderLink(order),
	}, nil
}

// buildSubmission assembles and validates the checkout draft for a request.
// Services are resolved against the catalog; a service the catalog no longer
// carries falls back to the submitted name and amount.
func (s *OrderService) buildSubmission(ctx context.Context, req *SubmitOrderRequest) (*checkout.Submission, error) {
	svc := s.resolveService(req)

	draft := checkout.New().
		WithService(svc).
		WithGameID(req.GameID).
		WithServer(req.Server).
		WithCustomer(models.CustomerDetails{
			Name:           req.CustomerName,
			Email:          req.CustomerEmail,
			Phone:          req.CustomerPhone,
			AdditionalInfo: req.AdditionalInfo,
		})

	if req.CouponCode != "" {
		var q pricing.Quote
		draft, q = draft.ApplyCoupon(ctx, s.pricing, req.CouponCode)
		if q.CouponValid {
			util.CouponApplicationsTotal.WithLabelValues("applied").Inc()
		} else {
			util.CouponApplicationsTotal.WithLabelValues("invalid").Inc()
			s.logger.Info("Ignoring invalid coupon code",
				zap.String("coupon_code", req.CouponCode))
		}
	}

	return draft.BuildSubmission(ctx, s.pricing)
}

func (s *OrderService) resolveService(req *SubmitOrderRequest) *models.Service {
	if req.ServiceID != "" {
		if svc, ok := s.catalog.ByID(req.ServiceID); ok {
			return svc
		}
	}
	if req.ServiceName != "" {
		if svc, ok := s.catalog.ByName(req.ServiceName); ok {
			return svc
		}
	}
	if req.ServiceName == "" {
		return nil
	}
	return &models.Service{
		Name:        req.ServiceName,
		Description: req.ServiceDescription,
		Price:       req.Amount,
	}
}

// runSideEffects attempts the spreadsheet mirror and the operator email.
// The two run concurrently, each under its own timeout, and both are waited
// on before the pipeline returns. Failures are logged and counted only.
func (s *OrderService) runSideEffects(order *models.Order) {
	var wg sync.WaitGroup

	attempt := func(collaborator string, run func(context.Context) error) {
		defer wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
		defer cancel()

		if err := run(ctx); err != nil {
			util.IntegrationFailuresTotal.WithLabelValues(collaborator).Inc()
			s.logger.Error("Best-effort integration failed",
				zap.String("order_id", order.ID),
				zap.String("collaborator", collaborator),
				zap.Error(err))
		}
	}

	if s.sheets != nil && s.sheets.Enabled() {
		wg.Add(1)
		go attempt("sheets", func(ctx context.Context) error {
			return s.sheets.AppendOrderRow(ctx, order)
		})
	}

	if s.notifier != nil && s.notifier.Enabled() {
		wg.Add(1)
		go attempt("email", func(ctx context.Context) error {
			return s.notifier.SendOrderNotification(ctx, order)
		})
	}

	wg.Wait()
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	if s.events == nil {
		return
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now().UTC(),
		},
		OrderID:     order.ID,
		ServiceName: order.ServiceName,
		Subtotal:    order.Subtotal,
		Discount:    order.Discount,
		FinalAmount: order.FinalAmount,
		CouponCode:  order.CouponCode,
		Status:      order.Status,
	}

	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		util.IntegrationFailuresTotal.WithLabelValues("kafka").Inc()
		s.logger.Error("Failed to publish OrderCreated event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

// duplicateResponse answers a retried submission with the original order.
func (s *OrderService) duplicateResponse(ctx context.Context, key, orderID string) (*SubmitOrderResponse, error) {
	s.logger.Info("Duplicate submission detected",
		zap.String("idempotency_key", key),
		zap.String("order_id", orderID))

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing order: %w", err)
	}

	return &SubmitOrderResponse{
		Success: true,
		OrderID: order.ID,
		Message: "Order already processed",
		UPIURL:  s.links.OrderLink(order),
	}, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}
