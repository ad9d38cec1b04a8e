package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/config"
)

const (
	resultPrefix = "signal-analytics:result:"
	seenPrefix   = "signal-analytics:seen:"
)

// Client wraps a Valkey connection used for query result caching and
// ingestion idempotency
type Client struct {
	client valkey.Client
	log    *zap.Logger
}

// NewClient connects to Valkey and verifies the connection
func NewClient(ctx context.Context, cfg config.Valkey, log *zap.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	log.Info("Connecting to Valkey", zap.String("address", addr))

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	log.Info("Valkey connection established successfully")

	return &Client{client: client, log: log}, nil
}

// Get returns a cached result. The bool is false on a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(resultPrefix+key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}
	return b, true, nil
}

// Set stores a result for ttl
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := c.client.B().Set().
		Key(resultPrefix + key).
		Value(valkey.BinaryString(value)).
		ExSeconds(int64(ttl / time.Second)).
		Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// MarkSeen records an event id and reports whether this is its first sighting
func (c *Client) MarkSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	cmd := c.client.B().Set().
		Key(seenPrefix + eventID).
		Value("1").
		Nx().
		ExSeconds(int64(ttl / time.Second)).
		Build()
	err := c.client.Do(ctx, cmd).Error()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to mark event as seen: %w", err)
	}
	return true, nil
}

// Forget removes an event id recorded by MarkSeen
func (c *Client) Forget(ctx context.Context, eventID string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(seenPrefix+eventID).Build()).Error(); err != nil {
		return fmt.Errorf("failed to forget event: %w", err)
	}
	return nil
}

// Ping checks if the Valkey connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close closes the Valkey connection
func (c *Client) Close() {
	c.log.Info("Closing Valkey connection")
	c.client.Close()
}
