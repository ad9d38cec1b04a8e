package queue

import "github.com/tutorwise/signal-analytics/internal/dto"

// SignalMessage is the queue body of one signal event. OccurredAt travels as
// the client sent it.
type SignalMessage struct {
	EventID         string `json:"event_id"`
	SignalID        string `json:"signal_id,omitempty"`
	EventType       string `json:"event_type"`
	TargetType      string `json:"target_type"`
	TargetID        string `json:"target_id"`
	SourceComponent string `json:"source_component,omitempty"`
	DistributionID  string `json:"distribution_id,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}

// NewSignalMessage builds the queue body for an accepted event
func NewSignalMessage(event *dto.PublishEventRequest, eventID string) SignalMessage {
	return SignalMessage{
		EventID:         eventID,
		SignalID:        event.SignalID,
		EventType:       event.EventType,
		TargetType:      event.TargetType,
		TargetID:        event.TargetID,
		SourceComponent: event.SourceComponent,
		DistributionID:  event.DistributionID,
		OccurredAt:      event.OccurredAt,
	}
}
