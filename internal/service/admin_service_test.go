package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"topup-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminStore struct {
	mu           sync.Mutex
	orders       map[string]*models.Order
	listed       []models.Order
	updateCalls  int
	summaryCalls int
}

func newFakeAdminStore(orders ...*models.Order) *fakeAdminStore {
	f := &fakeAdminStore{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
		f.listed = append(f.listed, *o)
	}
	return f
}

func (f *fakeAdminStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	cp := *order
	return &cp, nil
}

func (f *fakeAdminStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return f.listed, nil
}

func (f *fakeAdminStore) UpdateOrderStatus(ctx context.Context, orderID, fromStatus, toStatus string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	order, ok := f.orders[orderID]
	if !ok || order.Status != fromStatus {
		return false, nil
	}
	order.Status = toStatus
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeAdminStore) SummarizeOrders(ctx context.Context) (*models.OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls++
	summary := &models.OrderSummary{ByStatus: make(map[string]int)}
	for _, o := range f.orders {
		summary.Total++
		summary.ByStatus[o.Status]++
		if o.Status == models.OrderStatusCompleted {
			summary.Revenue += o.FinalAmount
		}
	}
	return summary, nil
}

type fakeSummaryCache struct {
	mu     sync.Mutex
	cached *models.OrderSummary
}

func (f *fakeSummaryCache) GetCachedSummary(ctx context.Context) (*models.OrderSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cached, nil
}

func (f *fakeSummaryCache) CacheSummary(ctx context.Context, s *models.OrderSummary, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached = s
	return nil
}

func (f *fakeSummaryCache) InvalidateSummary(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached = nil
	return nil
}

func pendingOrder(id string) *models.Order {
	return &models.Order{ID: id, Status: models.OrderStatusPending, FinalAmount: 500}
}

func TestUpdateStatusAllowedTransition(t *testing.T) {
	st := newFakeAdminStore(pendingOrder("ord-1"))
	events := &fakeEvents{}
	svc := NewAdminService(st, &fakeSummaryCache{}, events, time.Minute)

	order, err := svc.UpdateStatus(context.Background(), "ord-1", models.OrderStatusProcessing)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	require.Len(t, events.status, 1)
	assert.Equal(t, models.OrderStatusPending, events.status[0].FromStatus)
	assert.Equal(t, models.OrderStatusProcessing, events.status[0].ToStatus)
}

func TestUpdateStatusRejectsBackwardTransition(t *testing.T) {
	completed := &models.Order{ID: "ord-1", Status: models.OrderStatusCompleted}
	st := newFakeAdminStore(completed)
	svc := NewAdminService(st, nil, nil, time.Minute)

	_, err := svc.UpdateStatus(context.Background(), "ord-1", models.OrderStatusPending)

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, 0, st.updateCalls, "store must not be touched for a rejected transition")

	unchanged, _ := st.GetOrderByID(context.Background(), "ord-1")
	assert.Equal(t, models.OrderStatusCompleted, unchanged.Status)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	cancelled := &models.Order{ID: "ord-1", Status: models.OrderStatusCancelled}
	st := newFakeAdminStore(cancelled)
	svc := NewAdminService(st, nil, nil, time.Minute)

	for _, to := range []string{models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusCompleted} {
		_, err := svc.UpdateStatus(context.Background(), "ord-1", to)
		assert.ErrorIs(t, err, models.ErrInvalidTransition, to)
	}
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	st := newFakeAdminStore(pendingOrder("ord-1"))
	svc := NewAdminService(st, nil, nil, time.Minute)

	_, err := svc.UpdateStatus(context.Background(), "ord-1", "shipped")

	assert.ErrorIs(t, err, models.ErrUnknownStatus)
}

func TestUpdateStatusLostRaceIsRejected(t *testing.T) {
	st := newFakeAdminStore(pendingOrder("ord-1"))
	svc := NewAdminService(st, nil, nil, time.Minute)

	// another session cancels the order between read and update
	st.orders["ord-1"].Status = models.OrderStatusCancelled

	_, err := svc.UpdateStatus(context.Background(), "ord-1", models.OrderStatusProcessing)

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestSummaryComputesCountsAndRevenue(t *testing.T) {
	st := newFakeAdminStore(
		&models.Order{ID: "a", Status: models.OrderStatusPending, FinalAmount: 100},
		&models.Order{ID: "b", Status: models.OrderStatusCompleted, FinalAmount: 250},
		&models.Order{ID: "c", Status: models.OrderStatusCompleted, FinalAmount: 750},
		&models.Order{ID: "d", Status: models.OrderStatusCancelled, FinalAmount: 40},
	)
	svc := NewAdminService(st, nil, nil, time.Minute)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[models.OrderStatusPending])
	assert.Equal(t, 2, summary.ByStatus[models.OrderStatusCompleted])
	assert.Equal(t, int64(1000), summary.Revenue, "revenue covers completed orders only")
}

func TestSummaryServedFromCache(t *testing.T) {
	st := newFakeAdminStore(pendingOrder("ord-1"))
	cache := &fakeSummaryCache{}
	svc := NewAdminService(st, cache, nil, time.Minute)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.summaryCalls)

	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.summaryCalls, "second read must hit the cache")
}

func TestUpdateStatusInvalidatesSummaryCache(t *testing.T) {
	st := newFakeAdminStore(pendingOrder("ord-1"))
	cache := &fakeSummaryCache{cached: &models.OrderSummary{Total: 99}}
	svc := NewAdminService(st, cache, nil, time.Minute)

	_, err := svc.UpdateStatus(context.Background(), "ord-1", models.OrderStatusProcessing)
	require.NoError(t, err)

	assert.Nil(t, cache.cached)
}
