package aggregate

import (
	"sort"
	"time"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/journey"
)

// ListingOptions scopes the listing visibility comparison.
// A listing is mature when its status is in MatureStatuses and it was listed
// at least MinAge before To. A booking is blog-assisted when the booking
// client touched the booked listing from a blog source within Window before
// booked_at.
type ListingOptions struct {
	From              time.Time
	To                time.Time
	Window            time.Duration
	ListingTargetType string
	BlogSources       []string
	MatureStatuses    []string
	MinAge            time.Duration
}

// ListingVisibility compares a listing's blog-driven views with the average
// views of mature listings in its category. VisibilityMultiplier is nil when
// the category has no mature listing or their average is zero.
type ListingVisibility struct {
	ListingID            string
	Category             string
	Mature               bool
	TotalViews           int
	BlogViews            int
	BlogAssistedBookings int
	CategoryAvgViews     float64
	BaselineListings     int
	VisibilityMultiplier *float64
}

type categoryBaseline struct {
	listings int
	views    int
}

func (b categoryBaseline) average() float64 {
	if b.listings == 0 {
		return 0
	}
	return float64(b.views) / float64(b.listings)
}

// ListingVisibilityReport returns one row per listing with at least one
// blog-driven view, ranked by multiplier (nil last), then blog views, then id.
func ListingVisibilityReport(journeys map[string]*journey.Journey, listings []domain.Listing, bookings []domain.Booking, opts ListingOptions) []ListingVisibility {
	blog := toSet(opts.BlogSources)
	matureStatus := toSet(opts.MatureStatuses)
	cutoff := opts.To.Add(-opts.MinAge)

	totalViews := make(map[string]int)
	blogViews := make(map[string]int)
	for _, j := range journeys {
		for _, e := range j.Between(opts.From, opts.To) {
			if e.Type != domain.EventTypeView || e.TargetType != opts.ListingTargetType {
				continue
			}
			totalViews[e.TargetID]++
			if blog[e.SourceComponent] {
				blogViews[e.TargetID]++
			}
		}
	}

	assisted := make(map[string]int)
	for _, b := range bookings {
		if b.ListingID == "" {
			continue
		}
		if hasBlogTouch(journeys[b.ClientSignalID], b, opts, blog) {
			assisted[b.ListingID]++
		}
	}

	baselines := make(map[string]categoryBaseline)
	mature := make(map[string]bool, len(listings))
	for _, l := range listings {
		if !matureStatus[l.Status] || l.ListedAt.After(cutoff) {
			continue
		}
		mature[l.ListingID] = true
		b := baselines[l.Category]
		b.listings++
		b.views += totalViews[l.ListingID]
		baselines[l.Category] = b
	}

	var out []ListingVisibility
	for _, l := range listings {
		if blogViews[l.ListingID] == 0 {
			continue
		}
		baseline := baselines[l.Category]
		row := ListingVisibility{
			ListingID:            l.ListingID,
			Category:             l.Category,
			Mature:               mature[l.ListingID],
			TotalViews:           totalViews[l.ListingID],
			BlogViews:            blogViews[l.ListingID],
			BlogAssistedBookings: assisted[l.ListingID],
			CategoryAvgViews:     baseline.average(),
			BaselineListings:     baseline.listings,
		}
		if avg := baseline.average(); avg > 0 {
			m := float64(row.BlogViews) / avg
			row.VisibilityMultiplier = &m
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.VisibilityMultiplier != nil && b.VisibilityMultiplier == nil:
			return true
		case a.VisibilityMultiplier == nil && b.VisibilityMultiplier != nil:
			return false
		case a.VisibilityMultiplier != nil && *a.VisibilityMultiplier != *b.VisibilityMultiplier:
			return *a.VisibilityMultiplier > *b.VisibilityMultiplier
		}
		if a.BlogViews != b.BlogViews {
			return a.BlogViews > b.BlogViews
		}
		return a.ListingID < b.ListingID
	})

	return out
}

func hasBlogTouch(j *journey.Journey, b domain.Booking, opts ListingOptions, blog map[string]bool) bool {
	if j == nil {
		return false
	}
	for _, e := range j.Between(b.BookedAt.Add(-opts.Window), b.BookedAt) {
		if e.TargetType != opts.ListingTargetType || e.TargetID != b.ListingID {
			continue
		}
		if blog[e.SourceComponent] {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
