package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventType is the closed set of interaction kinds recorded for a signal
type EventType string

const (
	EventTypeView        EventType = "view"
	EventTypeInteraction EventType = "interaction"
	EventTypeSave        EventType = "save"
	EventTypeBooking     EventType = "booking"
)

// EventTypes lists every recognised event type in funnel order
var EventTypes = []EventType{EventTypeView, EventTypeInteraction, EventTypeSave, EventTypeBooking}

// ParseEventType maps a stored string onto the closed EventType set
func ParseEventType(s string) (EventType, bool) {
	for _, t := range EventTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

const (
	DistributionSignalPrefix = "dist_"
	SessionSignalPrefix      = "session_"
)

// IsDistributionSignal reports whether a signal id was minted by a distribution link
func IsDistributionSignal(signalID string) bool {
	return strings.HasPrefix(signalID, DistributionSignalPrefix)
}

var (
	ErrMissingSignal      = errors.New("missing signal_id")
	ErrMalformedTimestamp = errors.New("malformed occurred_at")
	ErrUnknownEventType   = errors.New("unknown event_type")
)

// RawEvent represents a signal event row stored in ClickHouse.
// OccurredAt is kept exactly as the client sent it.
type RawEvent struct {
	EventID         string    `ch:"event_id"`
	SignalID        *string   `ch:"signal_id"`
	EventType       string    `ch:"event_type"`
	TargetType      string    `ch:"target_type"`
	TargetID        string    `ch:"target_id"`
	SourceComponent string    `ch:"source_component"`
	DistributionID  *string   `ch:"distribution_id"`
	OccurredAt      string    `ch:"occurred_at"`
	ReceivedAt      time.Time `ch:"received_at"`
	Version         uint64    `ch:"version"`
}

// Event is a validated signal event
type Event struct {
	EventID         string    `json:"event_id"`
	SignalID        string    `json:"signal_id"`
	Type            EventType `json:"event_type"`
	TargetType      string    `json:"target_type"`
	TargetID        string    `json:"target_id"`
	SourceComponent string    `json:"source_component"`
	DistributionID  string    `json:"distribution_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Validate converts a stored row into an Event. The returned error wraps one of
// ErrMissingSignal, ErrMalformedTimestamp or ErrUnknownEventType.
func (r RawEvent) Validate() (Event, error) {
	if r.SignalID == nil || strings.TrimSpace(*r.SignalID) == "" {
		return Event{}, fmt.Errorf("event %s: %w", r.EventID, ErrMissingSignal)
	}

	occurredAt, err := ParseOccurredAt(r.OccurredAt)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", r.EventID, err)
	}

	eventType, ok := ParseEventType(r.EventType)
	if !ok {
		return Event{}, fmt.Errorf("event %s: %w: %q", r.EventID, ErrUnknownEventType, r.EventType)
	}

	event := Event{
		EventID:         r.EventID,
		SignalID:        *r.SignalID,
		Type:            eventType,
		TargetType:      r.TargetType,
		TargetID:        r.TargetID,
		SourceComponent: r.SourceComponent,
		OccurredAt:      occurredAt,
	}
	if r.DistributionID != nil {
		event.DistributionID = *r.DistributionID
	}

	return event, nil
}

var occurredAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseOccurredAt parses client timestamps. Values without a zone are UTC.
func ParseOccurredAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedTimestamp)
	}
	for _, layout := range occurredAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}
