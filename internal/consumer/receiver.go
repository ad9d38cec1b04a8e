package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/metrics"
	"github.com/tutorwise/signal-analytics/internal/queue"
)

// ReceiverConfig configures the SQS long-poll loop. Failed polls back off
// from ErrorBackoff, doubling up to MaxBackoff.
type ReceiverConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	ErrorBackoff    time.Duration
	MaxBackoff      time.Duration
}

// Receiver long-polls the signal queue and forwards raw messages
type Receiver struct {
	queue  queue.QueueConsumer
	config ReceiverConfig
	log    *zap.Logger
}

// NewReceiver creates a new SQS receiver
func NewReceiver(queueConsumer queue.QueueConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	if config.ErrorBackoff <= 0 {
		config.ErrorBackoff = time.Second
	}
	if config.MaxBackoff < config.ErrorBackoff {
		config.MaxBackoff = config.ErrorBackoff
	}

	return &Receiver{
		queue:  queueConsumer,
		config: config,
		log:    log,
	}
}

// Start polls until ctx is cancelled and closes out on return
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	backoff := r.config.ErrorBackoff

	for ctx.Err() == nil {
		messages, err := r.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			metrics.QueueReceiveErrors.Inc()
			r.log.Error("Failed to receive signal messages",
				zap.Error(err),
				zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				break
			}
			backoff = min(backoff*2, r.config.MaxBackoff)
			continue
		}
		backoff = r.config.ErrorBackoff

		if !r.forward(ctx, messages, out) {
			break
		}
	}

	r.log.Info("Receiver shutting down")
}

func (r *Receiver) poll(ctx context.Context) ([]types.Message, error) {
	result, err := r.queue.ReceiveMessages(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.queue.QueueURL()),
		MaxNumberOfMessages: r.config.MaxMessages,
		WaitTimeSeconds:     r.config.WaitTimeSeconds,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, err
	}

	if len(result.Messages) > 0 {
		metrics.QueueMessagesReceived.Add(float64(len(result.Messages)))
		r.log.Debug("Received signal messages", zap.Int("message_count", len(result.Messages)))
	}

	return result.Messages, nil
}

// forward hands messages to the parser stage. It reports false when ctx was
// cancelled before every message was handed over.
func (r *Receiver) forward(ctx context.Context, messages []types.Message, out chan<- types.Message) bool {
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			return false
		case out <- msg:
		}
	}
	return true
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
