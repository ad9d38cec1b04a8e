package attribution

import (
	"sort"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/journey"
)

// Allocation is the outcome of one booking under one model
type Allocation struct {
	BookingID string
	Revenue   int64
	Credits   []Credit
}

// Attributed reports whether any touchpoint received credit
func (a Allocation) Attributed() bool {
	return len(a.Credits) > 0
}

// Result is the per-content roll-up for one model
type Result struct {
	ModelType          ModelType
	ArticleID          string
	AttributedBookings int
	AttributedRevenue  int64
}

// Summary is the attribution of a booking set under one model.
// TotalRevenue always equals AttributedRevenue + UnattributedRevenue.
type Summary struct {
	ModelType            ModelType
	Window               Window
	Results              []Result
	Allocations          []Allocation
	TotalBookings        int
	AttributedBookings   int
	UnattributedBookings int
	TotalRevenue         int64
	AttributedRevenue    int64
	UnattributedRevenue  int64
}

// Engine selects a Model by type and runs it over bookings
type Engine struct {
	eligibility Eligibility
	models      map[ModelType]Model
}

// NewEngine registers the built-in models with the given attributable target types
func NewEngine(attributableTargetTypes []string) *Engine {
	el := NewEligibility(attributableTargetTypes)
	e := &Engine{
		eligibility: el,
		models:      make(map[ModelType]Model, len(ModelTypes)),
	}
	for _, m := range []Model{firstTouch{el}, lastTouch{el}, linear{el}} {
		e.models[m.Type()] = m
	}
	return e
}

// Eligibility returns the touchpoint filter shared by all models
func (e *Engine) Eligibility() Eligibility {
	return e.eligibility
}

// Model returns the registered model for t
func (e *Engine) Model(t ModelType) (Model, error) {
	m, ok := e.models[t]
	if !ok {
		return nil, ErrUnknownModel
	}
	return m, nil
}

// Attribute allocates a single booking. A booking whose client signal has no
// journey, or whose journey has no eligible touchpoint, gets no credits.
func (e *Engine) Attribute(b domain.Booking, journeys map[string]*journey.Journey, w Window, t ModelType) (Allocation, error) {
	m, err := e.Model(t)
	if err != nil {
		return Allocation{}, err
	}
	return Allocation{
		BookingID: b.BookingID,
		Revenue:   b.Revenue,
		Credits:   m.Allocate(journeys[b.ClientSignalID], b, w),
	}, nil
}

// Run attributes every booking and rolls the credits up per article.
// Results are ordered by revenue desc, bookings desc, article id.
func (e *Engine) Run(bookings []domain.Booking, journeys map[string]*journey.Journey, w Window, t ModelType) (Summary, error) {
	m, err := e.Model(t)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		ModelType:   t,
		Window:      w,
		Allocations: make([]Allocation, 0, len(bookings)),
	}
	byArticle := make(map[string]*Result)

	for _, b := range bookings {
		alloc := Allocation{
			BookingID: b.BookingID,
			Revenue:   b.Revenue,
			Credits:   m.Allocate(journeys[b.ClientSignalID], b, w),
		}
		summary.Allocations = append(summary.Allocations, alloc)
		summary.TotalBookings++
		summary.TotalRevenue += b.Revenue

		if !alloc.Attributed() {
			summary.UnattributedBookings++
			summary.UnattributedRevenue += b.Revenue
			continue
		}

		summary.AttributedBookings++
		for _, c := range alloc.Credits {
			r, ok := byArticle[c.ContentID]
			if !ok {
				r = &Result{ModelType: t, ArticleID: c.ContentID}
				byArticle[c.ContentID] = r
			}
			r.AttributedBookings++
			r.AttributedRevenue += c.Amount
			summary.AttributedRevenue += c.Amount
		}
	}

	summary.Results = make([]Result, 0, len(byArticle))
	for _, r := range byArticle {
		summary.Results = append(summary.Results, *r)
	}
	sort.Slice(summary.Results, func(i, j int) bool {
		a, b := summary.Results[i], summary.Results[j]
		if a.AttributedRevenue != b.AttributedRevenue {
			return a.AttributedRevenue > b.AttributedRevenue
		}
		if a.AttributedBookings != b.AttributedBookings {
			return a.AttributedBookings > b.AttributedBookings
		}
		return a.ArticleID < b.ArticleID
	})

	return summary, nil
}

// ResultFor returns the result row for an article, if it earned any credit
func (s Summary) ResultFor(articleID string) (Result, bool) {
	for _, r := range s.Results {
		if r.ArticleID == articleID {
			return r, true
		}
	}
	return Result{}, false
}
