package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/dto"
	"github.com/tutorwise/signal-analytics/internal/queue"
)

// ErrInvalidEvent is returned for events rejected before they reach the queue
var ErrInvalidEvent = errors.New("invalid event")

// maxClockSkew is how far ahead of the server clock occurred_at may be
const maxClockSkew = time.Minute

// EventService validates tracker events and publishes them to the queue
type EventService struct {
	publisher queue.QueuePublisher
	now       func() time.Time
	log       *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(publisher queue.QueuePublisher, log *zap.Logger) *EventService {
	return &EventService{
		publisher: publisher,
		now:       time.Now,
		log:       log,
	}
}

// computeEventID generates a deterministic event ID based on event content
// Uses SHA-256 hash of: signal_id|event_type|target_type|target_id|source_component|occurred_at
func computeEventID(event *dto.PublishEventRequest) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		event.SignalID,
		event.EventType,
		event.TargetType,
		event.TargetID,
		event.SourceComponent,
		event.OccurredAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ProcessEvent processes a single event. Events without a signal id are
// accepted so the reconstructor can count them; a malformed occurred_at is
// rejected here.
func (s *EventService) ProcessEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	if _, ok := domain.ParseEventType(event.EventType); !ok {
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidEvent, domain.ErrUnknownEventType, event.EventType)
	}

	occurredAt, err := domain.ParseOccurredAt(event.OccurredAt)
	if err != nil {
		s.log.Warn("Timestamp validation failed: malformed occurred_at",
			zap.String("occurred_at", event.OccurredAt),
			zap.String("event_type", event.EventType))
		return "", fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	now := s.now()
	if occurredAt.After(now.Add(maxClockSkew)) {
		s.log.Warn("Timestamp validation failed: future timestamp",
			zap.Time("occurred_at", occurredAt),
			zap.Time("current_time", now),
			zap.String("event_type", event.EventType))
		return "", fmt.Errorf("%w: occurred_at cannot be in the future: %s", ErrInvalidEvent, event.OccurredAt)
	}

	eventID := computeEventID(event)

	if err := s.publisher.PublishEvent(ctx, event, eventID); err != nil {
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	return eventID, nil
}

// ProcessBulkEvents validates and processes multiple events. Each rejected
// event is reported as "events[<index>]: <reason>".
func (s *EventService) ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error) {
	var eventIDs []string
	var errs []string

	for i := range events {
		if err := ctx.Err(); err != nil {
			return eventIDs, errs, fmt.Errorf("failed to process bulk events: %w", err)
		}

		eventID, err := s.ProcessEvent(ctx, &events[i])
		if err != nil {
			errs = append(errs, fmt.Sprintf("events[%d]: %s", i, err))
			s.log.Warn("Failed to process event in bulk",
				zap.Int("index", i),
				zap.Error(err),
				zap.String("event_type", events[i].EventType))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, errs, nil
}
