package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"topup-service/internal/models"
)

const summaryKey = "orders:summary"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireIdempotency claims an idempotency key for an order id. Returns
// false when the key was already claimed by an earlier submission.
func (c *Client) AcquireIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("idempotency:%s", key), orderID, ttl).Result()
}

// GetIdempotentOrderID returns the order id a key was claimed for, or ""
// when the key is unclaimed.
func (c *Client) GetIdempotentOrderID(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// CacheSummary stores the admin order summary with a TTL.
func (c *Client) CacheSummary(ctx context.Context, summary *models.OrderSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return c.rdb.Set(ctx, summaryKey, data, ttl).Err()
}

// GetCachedSummary returns the cached admin order summary, or nil on a miss.
func (c *Client) GetCachedSummary(ctx context.Context) (*models.OrderSummary, error) {
	data, err := c.rdb.Get(ctx, summaryKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary models.OrderSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// InvalidateSummary drops the cached summary so the next read recomputes it.
func (c *Client) InvalidateSummary(ctx context.Context) error {
	return c.rdb.Del(ctx, summaryKey).Err()
}
