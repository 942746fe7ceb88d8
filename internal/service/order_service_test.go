package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"topup-service/internal/catalog"
	"topup-service/internal/checkout"
	"topup-service/internal/models"
	"topup-service/internal/payment"
	"topup-service/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	createErr error
	created   []*models.Order
	orders    map[string]*models.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*models.Order)}
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = fmt.Sprintf("ord-%d", len(f.created)+1)
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	f.created = append(f.created, order)
	f.orders[order.ID] = order
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	return order, nil
}

type fakeMirror struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeMirror) Enabled() bool { return true }

func (f *fakeMirror) AppendOrderRow(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeNotifier) Enabled() bool { return true }

func (f *fakeNotifier) SendOrderNotification(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeEvents struct {
	mu      sync.Mutex
	err     error
	created []*models.OrderCreatedEvent
	status  []*models.OrderStatusChangedEvent
}

func (f *fakeEvents) PublishOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, e)
	return f.err
}

func (f *fakeEvents) PublishOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = append(f.status, e)
	return f.err
}

func newTestOrderService(st *fakeStore, mirror *fakeMirror, notifier *fakeNotifier, events *fakeEvents) *OrderService {
	return NewOrderService(
		st,
		catalog.Default(),
		pricing.NewEngine(pricing.DefaultTable()),
		mirror,
		notifier,
		events,
		nil,
		payment.NewLinkBuilder("merchant@upi", "Top Up Store"),
		time.Second,
	)
}

func validRequest() *SubmitOrderRequest {
	return &SubmitOrderRequest{
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+91 99999 99999",
		GameID:        "12345678",
		Server:        "2001",
		ServiceID:     "diamonds-2195",
		ServiceName:   "2195 Diamonds",
		Amount:        2500,
	}
}

func TestSubmitSuccess(t *testing.T) {
	st := newFakeStore()
	mirror := &fakeMirror{}
	notifier := &fakeNotifier{}
	events := &fakeEvents{}
	svc := newTestOrderService(st, mirror, notifier, events)

	req := validRequest()
	req.CouponCode = "WELCOME10"

	resp, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "ord-1", resp.OrderID)
	assert.Contains(t, resp.UPIURL, "upi://pay?pa=merchant%40upi")
	assert.Contains(t, resp.UPIURL, "am=2250")

	require.Len(t, st.created, 1)
	order := st.created[0]
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2500), order.Subtotal)
	assert.Equal(t, int64(250), order.Discount)
	assert.Equal(t, int64(2250), order.FinalAmount)
	assert.Equal(t, "WELCOME10", order.CouponCode)
	assert.Equal(t, 1, order.Quantity)

	assert.Equal(t, 1, mirror.calls)
	assert.Equal(t, 1, notifier.calls)
	require.Len(t, events.created, 1)
	assert.Equal(t, order.ID, events.created[0].OrderID)
}

func TestSubmitSucceedsWhenSideEffectsFail(t *testing.T) {
	st := newFakeStore()
	mirror := &fakeMirror{err: errors.New("sheet webhook down")}
	notifier := &fakeNotifier{err: errors.New("resend unavailable")}
	svc := newTestOrderService(st, mirror, notifier, &fakeEvents{err: errors.New("broker down")})

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, 1, mirror.calls)
	assert.Equal(t, 1, notifier.calls)
}

func TestSubmitPersistenceFailureIsFatal(t *testing.T) {
	st := newFakeStore()
	st.createErr = errors.New("connection refused")
	mirror := &fakeMirror{}
	notifier := &fakeNotifier{}
	svc := newTestOrderService(st, mirror, notifier, &fakeEvents{})

	resp, err := svc.Submit(context.Background(), validRequest())

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, st.created)
	assert.Equal(t, 0, mirror.calls, "mirror must not run when persistence fails")
	assert.Equal(t, 0, notifier.calls, "notification must not run when persistence fails")
}

func TestSubmitValidationRejectedBeforePersistence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitOrderRequest)
		want   error
	}{
		{"empty phone", func(r *SubmitOrderRequest) { r.CustomerPhone = "" }, checkout.ErrMissingPhone},
		{"empty game id", func(r *SubmitOrderRequest) { r.GameID = "" }, checkout.ErrMissingGameID},
		{"empty server", func(r *SubmitOrderRequest) { r.Server = "" }, checkout.ErrMissingServer},
		{"no service", func(r *SubmitOrderRequest) { r.ServiceID = ""; r.ServiceName = "" }, checkout.ErrNoService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			mirror := &fakeMirror{}
			svc := newTestOrderService(st, mirror, &fakeNotifier{}, &fakeEvents{})

			req := validRequest()
			tt.mutate(req)

			_, err := svc.Submit(context.Background(), req)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, st.created)
			assert.Equal(t, 0, mirror.calls)
		})
	}
}

func TestSubmitIgnoresInvalidCoupon(t *testing.T) {
	st := newFakeStore()
	svc := newTestOrderService(st, &fakeMirror{}, &fakeNotifier{}, &fakeEvents{})

	req := validRequest()
	req.CouponCode = "BOGUS"

	resp, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, st.created, 1)
	assert.Equal(t, int64(0), st.created[0].Discount)
	assert.Equal(t, int64(2500), st.created[0].FinalAmount)
	assert.Empty(t, st.created[0].CouponCode)
}

func TestSubmitUncataloguedServiceFallsBackToAmount(t *testing.T) {
	st := newFakeStore()
	svc := newTestOrderService(st, &fakeMirror{}, &fakeNotifier{}, &fakeEvents{})

	req := validRequest()
	req.ServiceID = ""
	req.ServiceName = "Custom Recharge"
	req.Amount = 999

	resp, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, st.created, 1)
	assert.Equal(t, int64(999), st.created[0].Subtotal)
	assert.Equal(t, int64(999), st.created[0].FinalAmount)
}

type fakeIdem struct {
	mu   sync.Mutex
	keys map[string]string
	puts int
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{keys: make(map[string]string)}
}

func (f *fakeIdem) AcquireIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = orderID
	return true, nil
}

func (f *fakeIdem) GetIdempotentOrderID(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func TestSubmitDuplicateReturnsOriginalOrder(t *testing.T) {
	st := newFakeStore()
	idem := newFakeIdem()
	svc := NewOrderService(
		st,
		catalog.Default(),
		pricing.NewEngine(pricing.DefaultTable()),
		&fakeMirror{},
		&fakeNotifier{},
		&fakeEvents{},
		idem,
		payment.NewLinkBuilder("merchant@upi", "Top Up Store"),
		time.Second,
	)

	req := validRequest()
	req.IdempotencyKey = "client-key-1"

	first, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, "Order already processed", second.Message)
	assert.Len(t, st.created, 1)
}
