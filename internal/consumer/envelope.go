package consumer

import (
	"context"

	"github.com/tutorwise/signal-analytics/internal/domain"
)

// Envelope carries one parsed signal event through the pipeline together
// with the callbacks that settle its queue message. ReceiveCount is the
// queue's delivery count, 1 on first delivery.
type Envelope struct {
	Event        *domain.RawEvent
	ReceiveCount int
	ack          func(context.Context) error
	nack         func(context.Context) error
}

// NewEnvelope wraps event; nil callbacks are no-ops
func NewEnvelope(event *domain.RawEvent, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Event:        event,
		ReceiveCount: 1,
		ack:          ack,
		nack:         nack,
	}
}

// Ack settles the message as stored
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack == nil {
		return nil
	}
	return e.ack(ctx)
}

// Nack leaves the message for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack == nil {
		return nil
	}
	return e.nack(ctx)
}
