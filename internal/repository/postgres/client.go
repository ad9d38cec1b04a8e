package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/config"
)

// Client wraps the marketplace PostgreSQL connection pool
type Client struct {
	db  *sql.DB
	log *zap.Logger
}

// NewClient opens and verifies a connection pool to the marketplace database
func NewClient(ctx context.Context, config *config.Postgres, log *zap.Logger) (*Client, error) {
	log.Info("Connecting to PostgreSQL",
		zap.Int("maxOpenConns", config.MaxOpenConns))

	db, err := sql.Open("postgres", config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetimeSec) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		log.Error("Failed to ping PostgreSQL", zap.Error(err))
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info("PostgreSQL connection established successfully")

	return &Client{db: db, log: log}, nil
}

// DB returns the underlying connection pool
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the connection pool
func (c *Client) Close() error {
	c.log.Info("Closing PostgreSQL connection")
	if err := c.db.Close(); err != nil {
		c.log.Error("Error closing PostgreSQL connection", zap.Error(err))
		return err
	}
	return nil
}
