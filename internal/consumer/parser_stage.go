package consumer

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/cache"
	"github.com/tutorwise/signal-analytics/internal/metrics"
	"github.com/tutorwise/signal-analytics/internal/queue"
)

// DedupConfig configures event id de-duplication. With FailOpen a failed
// lookup lets the message through; otherwise it is left for redelivery.
type DedupConfig struct {
	TTL      time.Duration
	FailOpen bool
}

// ParserStage turns queue messages into envelopes. Unparseable messages and
// already-seen event ids are deleted from the queue here and never reach
// the batch writer.
type ParserStage struct {
	queue       queue.QueueConsumer
	parser      MessageParser
	dedup       cache.Deduplicator
	dedupConfig DedupConfig
	log         *zap.Logger
}

// NewParserStage creates a new parser stage. A nil dedup disables de-duplication.
func NewParserStage(queueConsumer queue.QueueConsumer, parser MessageParser, dedup cache.Deduplicator, dedupConfig DedupConfig, log *zap.Logger) *ParserStage {
	return &ParserStage{
		queue:       queueConsumer,
		parser:      parser,
		dedup:       dedup,
		dedupConfig: dedupConfig,
		log:         log,
	}
}

// Start parses messages from in until it is closed or ctx is cancelled, and
// closes out on return
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		var msg types.Message
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case m, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}
			msg = m
		}

		envelope := p.parseMessage(ctx, msg)
		if envelope == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case out <- envelope:
		}
	}
}

// parseMessage returns nil for messages that must not be written
func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *Envelope {
	messageID := aws.ToString(msg.MessageId)
	receiveCount := approximateReceiveCount(msg)

	event, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Dropping unparseable signal message",
			zap.String("message_id", messageID),
			zap.Error(err))
		p.discard(ctx, msg, "unparseable")
		return nil
	}

	if receiveCount > 1 {
		metrics.EventRedeliveries.Inc()
		p.log.Info("Signal event redelivered",
			zap.String("event_id", event.EventID),
			zap.Int("receive_count", receiveCount))
	}

	if !p.firstSighting(ctx, msg, event.EventID) {
		return nil
	}

	envelope := NewEnvelope(event,
		func(ctx context.Context) error { return p.delete(ctx, msg) },
		// The message reappears after its visibility timeout; releasing the
		// id keeps that redelivery from being taken for a duplicate.
		func(ctx context.Context) error {
			if p.dedup == nil {
				return nil
			}
			return p.dedup.Forget(ctx, event.EventID)
		})
	envelope.ReceiveCount = receiveCount

	return envelope
}

// firstSighting reports whether the event should continue down the
// pipeline. Duplicates are deleted from the queue.
func (p *ParserStage) firstSighting(ctx context.Context, msg types.Message, eventID string) bool {
	if p.dedup == nil {
		return true
	}

	first, err := p.dedup.MarkSeen(ctx, eventID, p.dedupConfig.TTL)
	if err != nil {
		if p.dedupConfig.FailOpen {
			p.log.Warn("Idempotency check failed, processing message anyway",
				zap.String("event_id", eventID),
				zap.Error(err))
			return true
		}
		p.log.Warn("Idempotency check failed, leaving message for redelivery",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false
	}

	if !first {
		metrics.DuplicateEvents.Inc()
		p.log.Info("Skipping duplicate signal event",
			zap.String("event_id", eventID),
			zap.String("message_id", aws.ToString(msg.MessageId)))
		p.discard(ctx, msg, "duplicate")
		return false
	}

	return true
}

func (p *ParserStage) discard(ctx context.Context, msg types.Message, reason string) {
	if err := p.delete(ctx, msg); err != nil {
		p.log.Error("Failed to delete discarded message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.String("reason", reason),
			zap.Error(err))
	}
}

func (p *ParserStage) delete(ctx context.Context, msg types.Message) error {
	_, err := p.queue.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.queue.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	return err
}

// approximateReceiveCount reads the SQS delivery counter, 1 when absent
func approximateReceiveCount(msg types.Message) int {
	raw, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
