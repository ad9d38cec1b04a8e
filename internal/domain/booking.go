package domain

import "time"

// Booking is a completed booking read from the marketplace database.
// Revenue is in currency minor units.
type Booking struct {
	BookingID      string
	ArticleID      string
	ListingID      string
	Revenue        int64
	BookedAt       time.Time
	ClientSignalID string
}

// Listing is a tutor listing as seen by the visibility comparison
type Listing struct {
	ListingID string
	Category  string
	Status    string
	ListedAt  time.Time
}
