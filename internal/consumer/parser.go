package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/queue"
)

// ErrMissingEventID is returned for messages that cannot be de-duplicated
var ErrMissingEventID = errors.New("message has no event_id")

// JSONEventParser implements MessageParser for JSON-formatted signal messages
type JSONEventParser struct {
	now func() time.Time
}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{now: time.Now}
}

// Parse parses a JSON message body into a RawEvent. Event type and
// occurred_at are stored unvalidated; journey reconstruction classifies them.
func (p *JSONEventParser) Parse(body []byte) (*domain.RawEvent, error) {
	var msg queue.SignalMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	if msg.EventID == "" {
		return nil, ErrMissingEventID
	}

	receivedAt := p.now().UTC()

	return &domain.RawEvent{
		EventID:         msg.EventID,
		SignalID:        optional(msg.SignalID),
		EventType:       msg.EventType,
		TargetType:      msg.TargetType,
		TargetID:        msg.TargetID,
		SourceComponent: msg.SourceComponent,
		DistributionID:  optional(msg.DistributionID),
		OccurredAt:      msg.OccurredAt,
		ReceivedAt:      receivedAt,
		Version:         uint64(receivedAt.UnixNano()),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
