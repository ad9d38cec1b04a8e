package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorwise/signal-analytics/internal/attribution"
	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/journey"
)

var (
	rangeStart = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
)

type ev struct {
	eventType  domain.EventType
	targetType string
	targetID   string
	source     string
	at         time.Time
}

func journeysOf(bySignal map[string][]ev) map[string]*journey.Journey {
	out := make(map[string]*journey.Journey, len(bySignal))
	for signal, evs := range bySignal {
		events := make([]domain.Event, len(evs))
		for i, e := range evs {
			events[i] = domain.Event{
				EventID:         fmt.Sprintf("%s-%d", signal, i),
				SignalID:        signal,
				Type:            e.eventType,
				TargetType:      e.targetType,
				TargetID:        e.targetID,
				SourceComponent: e.source,
				OccurredAt:      e.at,
			}
		}
		out[signal] = journey.FromEvents(signal, events)
	}
	return out
}

func isArticle(targetType string) bool { return targetType == "article" }

func day(n int) time.Time { return rangeStart.Add(time.Duration(n) * 24 * time.Hour) }

func TestTopArticles_CountsAndJoin(t *testing.T) {
	journeys := journeysOf(map[string][]ev{
		"s1": {
			{domain.EventTypeView, "article", "a1", "blog", day(1)},
			{domain.EventTypeInteraction, "article", "a1", "blog", day(1)},
			{domain.EventTypeSave, "article", "a1", "blog", day(2)},
			{domain.EventTypeView, "listing", "l1", "blog", day(2)},
		},
		"s2": {
			{domain.EventTypeView, "article", "a1", "blog", day(3)},
			{domain.EventTypeView, "article", "a2", "blog", day(3)},
			// outside the range
			{domain.EventTypeView, "article", "a2", "blog", rangeStart.Add(-time.Hour)},
		},
	})
	summary := attribution.Summary{
		ModelType: attribution.LastTouch,
		Results: []attribution.Result{
			{ModelType: attribution.LastTouch, ArticleID: "a1", AttributedBookings: 1, AttributedRevenue: 5000},
			{ModelType: attribution.LastTouch, ArticleID: "a3", AttributedBookings: 1, AttributedRevenue: 2000},
		},
	}

	rows := TopArticles(journeys, summary, ArticleOptions{From: rangeStart, To: rangeEnd, IsContent: isArticle})

	require.Len(t, rows, 3)

	a1 := rows[0]
	assert.Equal(t, "a1", a1.ArticleID)
	assert.Equal(t, 2, a1.Views)
	assert.Equal(t, 1, a1.Interactions)
	assert.Equal(t, 1, a1.Saves)
	assert.Equal(t, 1, a1.Bookings)
	assert.Equal(t, int64(5000), a1.Revenue)
	require.NotNil(t, a1.ConversionRate)
	assert.InDelta(t, 0.5, *a1.ConversionRate, 1e-9)

	// a3 earned revenue with no views in range
	a3 := rows[1]
	assert.Equal(t, "a3", a3.ArticleID)
	assert.Nil(t, a3.ConversionRate)

	a2 := rows[2]
	assert.Equal(t, "a2", a2.ArticleID)
	assert.Equal(t, 1, a2.Views)
	require.NotNil(t, a2.ConversionRate)
	assert.Equal(t, 0.0, *a2.ConversionRate)
}

func TestTopArticles_Limit(t *testing.T) {
	bySignal := map[string][]ev{}
	for i := 0; i < 5; i++ {
		bySignal[fmt.Sprintf("s%d", i)] = []ev{{domain.EventTypeView, "article", fmt.Sprintf("a%d", i), "", day(1)}}
	}

	rows := TopArticles(journeysOf(bySignal), attribution.Summary{}, ArticleOptions{From: rangeStart, To: rangeEnd, IsContent: isArticle, Limit: 2})

	require.Len(t, rows, 2)
	assert.Equal(t, "a0", rows[0].ArticleID)
	assert.Equal(t, "a1", rows[1].ArticleID)
}

func TestTopArticles_Empty(t *testing.T) {
	rows := TopArticles(nil, attribution.Summary{}, ArticleOptions{From: rangeStart, To: rangeEnd, IsContent: isArticle})

	assert.Empty(t, rows)
}

func listingOpts() ListingOptions {
	return ListingOptions{
		From:              rangeStart,
		To:                rangeEnd,
		Window:            14 * 24 * time.Hour,
		ListingTargetType: "listing",
		BlogSources:       []string{"blog"},
		MatureStatuses:    []string{"published"},
		MinAge:            14 * 24 * time.Hour,
	}
}

func TestListingVisibilityReport_Multiplier(t *testing.T) {
	listings := []domain.Listing{
		{ListingID: "l1", Category: "maths", Status: "published", ListedAt: rangeStart.Add(-90 * 24 * time.Hour)},
		{ListingID: "l2", Category: "maths", Status: "published", ListedAt: rangeStart.Add(-90 * 24 * time.Hour)},
		// brand new listing: excluded from the baseline
		{ListingID: "l3", Category: "maths", Status: "published", ListedAt: rangeEnd.Add(-2 * 24 * time.Hour)},
		// draft listing: excluded from the baseline
		{ListingID: "l4", Category: "maths", Status: "draft", ListedAt: rangeStart.Add(-90 * 24 * time.Hour)},
	}
	journeys := journeysOf(map[string][]ev{
		"s1": {
			{domain.EventTypeView, "listing", "l1", "blog", day(1)},
			{domain.EventTypeView, "listing", "l1", "search", day(2)},
			{domain.EventTypeView, "listing", "l1", "search", day(3)},
			{domain.EventTypeView, "listing", "l1", "search", day(4)},
		},
		"s2": {
			{domain.EventTypeView, "listing", "l3", "blog", day(5)},
			{domain.EventTypeView, "listing", "l3", "blog", day(6)},
			{domain.EventTypeView, "listing", "l3", "blog", day(7)},
			{domain.EventTypeView, "listing", "l4", "search", day(7)},
			{domain.EventTypeView, "listing", "l4", "search", day(7)},
			{domain.EventTypeView, "listing", "l4", "search", day(7)},
			{domain.EventTypeView, "listing", "l4", "search", day(7)},
		},
	})
	bookings := []domain.Booking{
		{BookingID: "b1", ListingID: "l3", Revenue: 4000, BookedAt: day(8), ClientSignalID: "s2"},
		{BookingID: "b2", ListingID: "l1", Revenue: 4000, BookedAt: day(8), ClientSignalID: "unknown"},
	}

	rows := ListingVisibilityReport(journeys, listings, bookings, listingOpts())

	require.Len(t, rows, 2)

	// baseline: l1 (4 views) + l2 (0 views) over 2 mature listings = 2.0
	l3 := rows[0]
	assert.Equal(t, "l3", l3.ListingID)
	assert.False(t, l3.Mature)
	assert.Equal(t, 3, l3.BlogViews)
	assert.Equal(t, 1, l3.BlogAssistedBookings)
	assert.Equal(t, 2.0, l3.CategoryAvgViews)
	assert.Equal(t, 2, l3.BaselineListings)
	require.NotNil(t, l3.VisibilityMultiplier)
	assert.InDelta(t, 1.5, *l3.VisibilityMultiplier, 1e-9)

	l1 := rows[1]
	assert.Equal(t, "l1", l1.ListingID)
	assert.True(t, l1.Mature)
	assert.Equal(t, 4, l1.TotalViews)
	assert.Equal(t, 1, l1.BlogViews)
	assert.Equal(t, 0, l1.BlogAssistedBookings)
	require.NotNil(t, l1.VisibilityMultiplier)
	assert.InDelta(t, 0.5, *l1.VisibilityMultiplier, 1e-9)
}

func TestListingVisibilityReport_ZeroBaselineIsNil(t *testing.T) {
	listings := []domain.Listing{
		// only mature listing in the category has no views
		{ListingID: "l1", Category: "music", Status: "published", ListedAt: rangeStart.Add(-60 * 24 * time.Hour)},
		{ListingID: "l2", Category: "music", Status: "published", ListedAt: rangeEnd},
		// no mature listings at all in this category
		{ListingID: "l3", Category: "art", Status: "published", ListedAt: rangeEnd},
	}
	journeys := journeysOf(map[string][]ev{
		"s1": {
			{domain.EventTypeView, "listing", "l2", "blog", day(1)},
			{domain.EventTypeView, "listing", "l3", "blog", day(2)},
		},
	})

	rows := ListingVisibilityReport(journeys, listings, nil, listingOpts())

	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Nil(t, r.VisibilityMultiplier, r.ListingID)
		assert.Equal(t, 0.0, r.CategoryAvgViews)
	}
	assert.Equal(t, 1, rows[0].BaselineListings)
	assert.Equal(t, 0, rows[1].BaselineListings)
}

func TestListingVisibilityReport_NoBlogViews(t *testing.T) {
	listings := []domain.Listing{{ListingID: "l1", Category: "maths", Status: "published", ListedAt: rangeStart}}
	journeys := journeysOf(map[string][]ev{
		"s1": {{domain.EventTypeView, "listing", "l1", "search", day(1)}},
	})

	rows := ListingVisibilityReport(journeys, listings, nil, listingOpts())

	assert.Empty(t, rows)
}

func TestCompareModels(t *testing.T) {
	summaries := []attribution.Summary{
		{
			ModelType:            attribution.FirstTouch,
			Results:              []attribution.Result{{ArticleID: "a1"}, {ArticleID: "a2"}},
			AttributedBookings:   3,
			AttributedRevenue:    9000,
			UnattributedBookings: 1,
			UnattributedRevenue:  1000,
		},
		{ModelType: attribution.Linear},
	}

	rows := CompareModels(summaries)

	require.Len(t, rows, 2)
	assert.Equal(t, ModelComparison{
		ModelType:            attribution.FirstTouch,
		AttributedArticles:   2,
		AttributedBookings:   3,
		AttributedRevenue:    9000,
		UnattributedBookings: 1,
		UnattributedRevenue:  1000,
	}, rows[0])
	assert.Equal(t, attribution.Linear, rows[1].ModelType)
}

func TestListingVisibilityReport_BlogAssistWindow(t *testing.T) {
	listings := []domain.Listing{
		{ListingID: "l1", Category: "maths", Status: "published", ListedAt: rangeStart.Add(-90 * 24 * time.Hour)},
		{ListingID: "l2", Category: "maths", Status: "published", ListedAt: rangeStart.Add(-90 * 24 * time.Hour)},
	}
	journeys := journeysOf(map[string][]ev{
		"s1": {
			{domain.EventTypeView, "listing", "l1", "blog", day(2)},
		},
		// blog touch on a different listing than the one booked
		"s2": {
			{domain.EventTypeView, "listing", "l2", "blog", day(20)},
		},
	})
	bookings := []domain.Booking{
		{BookingID: "b1", ListingID: "l1", Revenue: 4000, BookedAt: day(22), ClientSignalID: "s1"},
		{BookingID: "b2", ListingID: "l1", Revenue: 4000, BookedAt: day(21), ClientSignalID: "s2"},
	}

	tests := []struct {
		name     string
		window   time.Duration
		assisted int
	}{
		{name: "touch inside 30 day window", window: 30 * 24 * time.Hour, assisted: 1},
		{name: "touch outside 7 day window", window: 7 * 24 * time.Hour, assisted: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := listingOpts()
			opts.Window = tt.window

			rows := ListingVisibilityReport(journeys, listings, bookings, opts)

			var l1 *ListingVisibility
			for i := range rows {
				if rows[i].ListingID == "l1" {
					l1 = &rows[i]
				}
			}
			require.NotNil(t, l1)
			assert.Equal(t, tt.assisted, l1.BlogAssistedBookings)
		})
	}
}
