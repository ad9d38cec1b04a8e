package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/repository"
)

// minorUnitExponent is the number of decimal places in the booking currency (GBP)
const minorUnitExponent = 2

// Repository implements MarketplaceReader over the bookings and listings tables
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new marketplace repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// FetchBookings returns completed bookings with booked_at in [From, To]
func (r *Repository) FetchBookings(ctx context.Context, query repository.BookingQuery) ([]domain.Booking, error) {
	rows, err := r.client.DB().QueryContext(ctx, `
		SELECT id, article_id, listing_id, amount, created_at, client_signal_id
		FROM bookings
		WHERE status = 'Completed' AND created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, id ASC
	`, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close booking rows", zap.Error(err))
		}
	}()

	var bookings []domain.Booking
	for rows.Next() {
		var (
			b         domain.Booking
			articleID sql.NullString
			listingID sql.NullString
			signalID  sql.NullString
			amount    decimal.Decimal
		)
		if err := rows.Scan(&b.BookingID, &articleID, &listingID, &amount, &b.BookedAt, &signalID); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		b.ArticleID = articleID.String
		b.ListingID = listingID.String
		b.ClientSignalID = signalID.String
		b.Revenue = ToMinorUnits(amount)
		b.BookedAt = b.BookedAt.UTC()
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}

	return bookings, nil
}

// FetchListings returns every listing with its category and lifecycle status
func (r *Repository) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.client.DB().QueryContext(ctx, `
		SELECT id, COALESCE(category, ''), status, COALESCE(published_at, created_at)
		FROM listings
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close listing rows", zap.Error(err))
		}
	}()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ListingID, &l.Category, &l.Status, &l.ListedAt); err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		l.ListedAt = l.ListedAt.UTC()
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	return listings, nil
}

// Ping checks if the PostgreSQL connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.DB().PingContext(ctx)
}

// Close closes the PostgreSQL connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// ToMinorUnits converts a NUMERIC amount to integer minor units, truncating
// anything below the minor unit
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitExponent).Truncate(0).IntPart()
}
