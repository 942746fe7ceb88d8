package worker

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"topup-service/internal/broker"
	"topup-service/internal/models"
	"topup-service/internal/service"
	"topup-service/internal/util"
)

// SummaryWorker consumes order lifecycle events and keeps the cached admin
// summary fresh so the console reads stay off the orders table.
type SummaryWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        service.AdminStore
	cache        service.SummaryCache
	summaryTTL   time.Duration
	logger       *zap.Logger
}

// NewSummaryWorker creates a new summary worker
func NewSummaryWorker(
	consumer *broker.Consumer,
	store service.AdminStore,
	cache service.SummaryCache,
	summaryTTL time.Duration,
) *SummaryWorker {
	w := &SummaryWorker{
		consumer:   consumer,
		store:      store,
		cache:      cache,
		summaryTTL: summaryTTL,
		logger:     util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(func(ctx context.Context, event *models.OrderCreatedEvent) error {
		return w.refreshSummary(ctx, event.OrderID)
	})
	eventHandler.OnOrderStatusChanged(func(ctx context.Context, event *models.OrderStatusChangedEvent) error {
		return w.refreshSummary(ctx, event.OrderID)
	})
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *SummaryWorker) Start(ctx context.Context) error {
	log.Println("Starting summary worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SummaryWorker) Stop() error {
	log.Println("Stopping summary worker...")
	return w.consumer.Close()
}

func (w *SummaryWorker) refreshSummary(ctx context.Context, orderID string) error {
	summary, err := w.store.SummarizeOrders(ctx)
	if err != nil {
		w.logger.Error("Failed to recompute order summary",
			zap.String("order_id", orderID),
			zap.Error(err))
		return err
	}

	if err := w.cache.CacheSummary(ctx, summary, w.summaryTTL); err != nil {
		w.logger.Error("Failed to cache order summary",
			zap.String("order_id", orderID),
			zap.Error(err))
		return err
	}

	w.logger.Debug("Order summary refreshed",
		zap.String("order_id", orderID),
		zap.Int("total", summary.Total))
	return nil
}
