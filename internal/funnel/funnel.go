// Package funnel computes ordered-stage conversion over reconstructed journeys.
package funnel

import (
	"time"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/journey"
)

// StageDef is one funnel step: an event satisfies it when Match returns true
type StageDef struct {
	Name  string
	Match func(domain.Event) bool
}

// AnyOf builds a stage that matches any of the given event types
func AnyOf(name string, types ...domain.EventType) StageDef {
	set := make(map[domain.EventType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return StageDef{
		Name:  name,
		Match: func(e domain.Event) bool { return set[e.Type] },
	}
}

// Stage is one row of the funnel output. ConversionRate is nil for the first
// stage and whenever the previous stage count is zero.
type Stage struct {
	StageNumber    int      `json:"stage_number"`
	StageName      string   `json:"stage_name"`
	Count          int      `json:"count"`
	ConversionRate *float64 `json:"conversion_rate"`
}

// Options restricts which events take part. A zero From/To is unbounded.
type Options struct {
	From time.Time
	To   time.Time
}

func (o Options) includes(t time.Time) bool {
	if !o.From.IsZero() && t.Before(o.From) {
		return false
	}
	if !o.To.IsZero() && t.After(o.To) {
		return false
	}
	return true
}

// Calculate finds the highest stage each signal reached and counts, for every
// stage, the signals that reached at least that far. A signal that skipped
// earlier stages still counts at its highest stage, so counts never increase
// from one stage to the next.
func Calculate(journeys map[string]*journey.Journey, stages []StageDef, opts Options) []Stage {
	reachedAtLeast := make([]int, len(stages))

	for _, j := range journeys {
		highest := -1
		for _, e := range j.Events {
			if !opts.includes(e.OccurredAt) {
				continue
			}
			// scan from the top so a signal stops at its highest match
			for i := len(stages) - 1; i > highest; i-- {
				if stages[i].Match(e) {
					highest = i
					break
				}
			}
		}
		for i := 0; i <= highest; i++ {
			reachedAtLeast[i]++
		}
	}

	return FromCounts(stages, reachedAtLeast)
}

// FromCounts turns per-stage counts into Stage rows with conversion rates
func FromCounts(stages []StageDef, counts []int) []Stage {
	out := make([]Stage, len(stages))
	for i, def := range stages {
		out[i] = Stage{
			StageNumber: i + 1,
			StageName:   def.Name,
			Count:       counts[i],
		}
		if i > 0 {
			out[i].ConversionRate = Rate(counts[i], counts[i-1])
		}
	}
	return out
}

// Rate returns num/den, or nil when den is zero
func Rate(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	r := float64(num) / float64(den)
	return &r
}
