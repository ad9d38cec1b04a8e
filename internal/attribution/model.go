// Package attribution allocates booking revenue to the content touchpoints
// of the booking client's journey.
package attribution

import (
	"errors"
	"fmt"
	"time"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/journey"
)

// ModelType selects an allocation strategy
type ModelType string

const (
	FirstTouch ModelType = "first_touch"
	LastTouch  ModelType = "last_touch"
	Linear     ModelType = "linear"
)

// ModelTypes lists the supported models in reporting order
var ModelTypes = []ModelType{FirstTouch, LastTouch, Linear}

var (
	ErrUnknownModel  = errors.New("unknown attribution model")
	ErrInvalidWindow = errors.New("invalid attribution window")
)

// ParseModelType validates a model name
func ParseModelType(s string) (ModelType, error) {
	for _, t := range ModelTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: first_touch, last_touch, linear)", ErrUnknownModel, s)
}

// Window is the look-back period in days
type Window int

// NewWindow accepts 7, 14 or 30 days
func NewWindow(days int) (Window, error) {
	switch days {
	case 7, 14, 30:
		return Window(days), nil
	}
	return 0, fmt.Errorf("%w: %d (supported: 7, 14, 30)", ErrInvalidWindow, days)
}

// Days returns the window length in days
func (w Window) Days() int {
	return int(w)
}

// Duration returns the window length
func (w Window) Duration() time.Duration {
	return time.Duration(w) * 24 * time.Hour
}

// Credit is the revenue (minor units) assigned to one piece of content.
// EventID is the touchpoint that earned it.
type Credit struct {
	ContentID string
	EventID   string
	Amount    int64
}

// Model allocates one booking's revenue across a journey. Credits returned by
// a model always sum to the booking revenue, or are empty when the journey
// has no eligible touchpoint.
type Model interface {
	Type() ModelType
	Allocate(j *journey.Journey, b domain.Booking, w Window) []Credit
}

// Eligibility decides which journey events may earn credit for a booking
type Eligibility struct {
	targetTypes map[string]bool
}

// NewEligibility accepts touchpoints whose target_type is in targetTypes
func NewEligibility(targetTypes []string) Eligibility {
	set := make(map[string]bool, len(targetTypes))
	for _, t := range targetTypes {
		set[t] = true
	}
	return Eligibility{targetTypes: set}
}

// IsContent reports whether a target type can earn attribution
func (e Eligibility) IsContent(targetType string) bool {
	return e.targetTypes[targetType]
}

// Touchpoints returns events in [booked_at - window, booked_at] that target
// attributable content, in journey order
func (e Eligibility) Touchpoints(j *journey.Journey, b domain.Booking, w Window) []domain.Event {
	if j == nil {
		return nil
	}
	var out []domain.Event
	for _, ev := range j.Between(b.BookedAt.Add(-w.Duration()), b.BookedAt) {
		if ev.TargetID == "" || !e.IsContent(ev.TargetType) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

type firstTouch struct{ Eligibility }

func (firstTouch) Type() ModelType { return FirstTouch }

func (m firstTouch) Allocate(j *journey.Journey, b domain.Booking, w Window) []Credit {
	tps := m.Touchpoints(j, b, w)
	if len(tps) == 0 {
		return nil
	}
	return []Credit{{ContentID: tps[0].TargetID, EventID: tps[0].EventID, Amount: b.Revenue}}
}

type lastTouch struct{ Eligibility }

func (lastTouch) Type() ModelType { return LastTouch }

func (m lastTouch) Allocate(j *journey.Journey, b domain.Booking, w Window) []Credit {
	tps := m.Touchpoints(j, b, w)
	if len(tps) == 0 {
		return nil
	}
	last := tps[len(tps)-1]
	return []Credit{{ContentID: last.TargetID, EventID: last.EventID, Amount: b.Revenue}}
}

type linear struct{ Eligibility }

func (linear) Type() ModelType { return Linear }

// Allocate splits revenue equally across distinct content, ordered by first
// touch. The truncation remainder goes to the earliest content.
func (m linear) Allocate(j *journey.Journey, b domain.Booking, w Window) []Credit {
	tps := m.Touchpoints(j, b, w)
	if len(tps) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tps))
	credits := make([]Credit, 0, len(tps))
	for _, tp := range tps {
		if seen[tp.TargetID] {
			continue
		}
		seen[tp.TargetID] = true
		credits = append(credits, Credit{ContentID: tp.TargetID, EventID: tp.EventID})
	}

	n := int64(len(credits))
	share := b.Revenue / n
	for i := range credits {
		credits[i].Amount = share
	}
	credits[0].Amount += b.Revenue - share*n

	return credits
}
