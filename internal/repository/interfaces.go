package repository

import (
	"context"
	"time"

	"github.com/tutorwise/signal-analytics/internal/domain"
)

// EventQuery selects events by the server-side receive time
type EventQuery struct {
	From time.Time
	To   time.Time
}

// EventReader is the read side of the signal event log
type EventReader interface {
	// FetchEvents returns every event received in the query range in one round trip
	FetchEvents(ctx context.Context, query EventQuery) ([]domain.RawEvent, error)

	// FetchSignalEvents returns every stored event for one signal
	FetchSignalEvents(ctx context.Context, signalID string) ([]domain.RawEvent, error)

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error
}

// EventRepository defines the interface for event storage operations
type EventRepository interface {
	EventReader

	// InsertBatch inserts a batch of events into the storage
	InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

// BookingQuery selects completed bookings by booking time
type BookingQuery struct {
	From time.Time
	To   time.Time
}

// MarketplaceReader reads bookings and listings from the marketplace database
type MarketplaceReader interface {
	FetchBookings(ctx context.Context, query BookingQuery) ([]domain.Booking, error)
	FetchListings(ctx context.Context) ([]domain.Listing, error)
	Ping(ctx context.Context) error
}
