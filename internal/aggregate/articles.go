// Package aggregate rolls journeys and attribution summaries up into the
// per-article, per-listing and per-model views served by the dashboard.
package aggregate

import (
	"sort"
	"time"

	"github.com/tutorwise/signal-analytics/internal/attribution"
	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/funnel"
	"github.com/tutorwise/signal-analytics/internal/journey"
)

// ArticlePerformance is one row of the top-articles view.
// ConversionRate is bookings / views, nil when views is zero.
type ArticlePerformance struct {
	ArticleID      string
	Views          int
	Interactions   int
	Saves          int
	Bookings       int
	Revenue        int64
	ConversionRate *float64
}

// ArticleOptions scopes the article roll-up
type ArticleOptions struct {
	From      time.Time
	To        time.Time
	IsContent func(targetType string) bool
	Limit     int
}

// TopArticles counts article engagement inside [From, To] and joins it with
// the attributed bookings and revenue of summary. Rows are ranked by revenue,
// then bookings, then views, then article id.
func TopArticles(journeys map[string]*journey.Journey, summary attribution.Summary, opts ArticleOptions) []ArticlePerformance {
	rows := make(map[string]*ArticlePerformance)
	row := func(id string) *ArticlePerformance {
		r, ok := rows[id]
		if !ok {
			r = &ArticlePerformance{ArticleID: id}
			rows[id] = r
		}
		return r
	}

	for _, j := range journeys {
		for _, e := range j.Between(opts.From, opts.To) {
			if e.TargetID == "" || !opts.IsContent(e.TargetType) {
				continue
			}
			switch e.Type {
			case domain.EventTypeView:
				row(e.TargetID).Views++
			case domain.EventTypeInteraction:
				row(e.TargetID).Interactions++
			case domain.EventTypeSave:
				row(e.TargetID).Saves++
			}
		}
	}

	for _, res := range summary.Results {
		r := row(res.ArticleID)
		r.Bookings = res.AttributedBookings
		r.Revenue = res.AttributedRevenue
	}

	out := make([]ArticlePerformance, 0, len(rows))
	for _, r := range rows {
		r.ConversionRate = funnel.Rate(r.Bookings, r.Views)
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		if a.Bookings != b.Bookings {
			return a.Bookings > b.Bookings
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		return a.ArticleID < b.ArticleID
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// ModelComparison is one row of the per-model attribution view
type ModelComparison struct {
	ModelType            attribution.ModelType
	AttributedArticles   int
	AttributedBookings   int
	AttributedRevenue    int64
	UnattributedBookings int
	UnattributedRevenue  int64
}

// CompareModels summarises each model's totals in the order given
func CompareModels(summaries []attribution.Summary) []ModelComparison {
	out := make([]ModelComparison, len(summaries))
	for i, s := range summaries {
		out[i] = ModelComparison{
			ModelType:            s.ModelType,
			AttributedArticles:   len(s.Results),
			AttributedBookings:   s.AttributedBookings,
			AttributedRevenue:    s.AttributedRevenue,
			UnattributedBookings: s.UnattributedBookings,
			UnattributedRevenue:  s.UnattributedRevenue,
		}
	}
	return out
}
