// Package journey groups raw signal events into time-ordered journeys.
package journey

import (
	"errors"
	"sort"
	"time"

	"github.com/tutorwise/signal-analytics/internal/domain"
)

// Journey is the ordered event sequence of one signal. It always holds at
// least one event.
type Journey struct {
	SignalID       string
	Events         []domain.Event
	IsDistribution bool
	DistributionID string
}

// TotalEvents returns the number of events in the journey
func (j *Journey) TotalEvents() int {
	return len(j.Events)
}

// FirstEventAt returns the timestamp of the earliest event
func (j *Journey) FirstEventAt() time.Time {
	return j.Events[0].OccurredAt
}

// LastEventAt returns the timestamp of the latest event
func (j *Journey) LastEventAt() time.Time {
	return j.Events[len(j.Events)-1].OccurredAt
}

// Duration is the span between the first and last event
func (j *Journey) Duration() time.Duration {
	return j.LastEventAt().Sub(j.FirstEventAt())
}

// TouchpointCount counts events whose target type is accepted by isContent
func (j *Journey) TouchpointCount(isContent func(targetType string) bool) int {
	n := 0
	for _, e := range j.Events {
		if isContent(e.TargetType) {
			n++
		}
	}
	return n
}

// Between returns the events with occurred_at in [from, to], in journey order
func (j *Journey) Between(from, to time.Time) []domain.Event {
	var out []domain.Event
	for _, e := range j.Events {
		if e.OccurredAt.Before(from) || e.OccurredAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Stats counts events left out of every journey
type Stats struct {
	MissingSignal      int
	MalformedTimestamp int
	UnknownType        int
}

// Unattributed is the total number of excluded events
func (s Stats) Unattributed() int {
	return s.MissingSignal + s.MalformedTimestamp + s.UnknownType
}

// Result is the output of Reconstruct
type Result struct {
	Journeys map[string]*Journey
	Stats    Stats
}

// SignalIDs returns the journey keys in ascending order
func (r Result) SignalIDs() []string {
	ids := make([]string, 0, len(r.Journeys))
	for id := range r.Journeys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reconstruct groups events by signal_id and orders each group by
// (occurred_at, event_id). Invalid events are excluded individually and
// counted in Stats; they never fail the whole reconstruction.
func Reconstruct(raw []domain.RawEvent) Result {
	result := Result{Journeys: make(map[string]*Journey)}

	groups := make(map[string][]domain.Event)
	for _, r := range raw {
		event, err := r.Validate()
		if err != nil {
			result.Stats.record(err)
			continue
		}
		groups[event.SignalID] = append(groups[event.SignalID], event)
	}

	for signalID, events := range groups {
		result.Journeys[signalID] = build(signalID, events)
	}

	return result
}

// FromEvents builds a single journey from validated events of one signal.
// It returns nil when events is empty.
func FromEvents(signalID string, events []domain.Event) *Journey {
	if len(events) == 0 {
		return nil
	}
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	return build(signalID, sorted)
}

func build(signalID string, events []domain.Event) *Journey {
	sort.Slice(events, func(a, b int) bool {
		return Less(events[a], events[b])
	})

	j := &Journey{
		SignalID:       signalID,
		Events:         events,
		IsDistribution: domain.IsDistributionSignal(signalID),
	}
	for _, e := range events {
		if e.DistributionID != "" {
			j.DistributionID = e.DistributionID
			break
		}
	}
	return j
}

// Less is the total journey order: occurred_at, then event_id
func Less(a, b domain.Event) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.Before(b.OccurredAt)
	}
	return a.EventID < b.EventID
}

func (s *Stats) record(err error) {
	switch {
	case errors.Is(err, domain.ErrMissingSignal):
		s.MissingSignal++
	case errors.Is(err, domain.ErrMalformedTimestamp):
		s.MalformedTimestamp++
	default:
		s.UnknownType++
	}
}
