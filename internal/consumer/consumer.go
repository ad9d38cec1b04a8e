package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/cache"
	"github.com/tutorwise/signal-analytics/internal/config"
	"github.com/tutorwise/signal-analytics/internal/queue"
	"github.com/tutorwise/signal-analytics/internal/repository"
)

// Consumer moves signal events from SQS into the event store through a
// receive, parse and batch-write pipeline
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
	bufferSize  int
	log         *zap.Logger
}

// NewConsumer wires the pipeline from cfg. dedup may be nil when
// idempotency is disabled.
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, repo repository.EventRepository, dedup cache.Deduplicator, log *zap.Logger) *Consumer {
	c := cfg.Consumer

	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     c.ReceiveMaxMessages,
		WaitTimeSeconds: c.ReceiveWaitSec,
		ErrorBackoff:    time.Duration(c.ReceiveBackoffSec) * time.Second,
		MaxBackoff:      time.Duration(c.ReceiveMaxBackoffSec) * time.Second,
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONEventParser(), dedup, DedupConfig{
		TTL:      time.Duration(cfg.Valkey.IdempotencyTTLHours) * time.Hour,
		FailOpen: cfg.Valkey.IdempotencyFailOpen,
	}, log)

	batchWriter := NewBatchWriter(repo, BatchWriterConfig{
		MaxBatchSize:    c.BatchSizeMax,
		FlushTimeout:    time.Duration(c.BatchTimeoutSec) * time.Second,
		ShutdownTimeout: time.Duration(c.ShutdownTimeoutSec) * time.Second,
	}, log)

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		batchWriter: batchWriter,
		bufferSize:  c.BufferSize,
		log:         log,
	}
}

// Start runs the pipeline until ctx is cancelled. It returns after the batch
// writer has flushed what was already parsed.
func (c *Consumer) Start(ctx context.Context) error {
	messages := make(chan types.Message, c.bufferSize)
	envelopes := make(chan *Envelope, c.bufferSize)

	var wg sync.WaitGroup
	run := func(stage func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stage()
		}()
	}

	run(func() { c.receiver.Start(ctx, messages) })
	run(func() { c.parser.Start(ctx, messages, envelopes) })
	run(func() { c.batchWriter.Start(ctx, envelopes) })

	wg.Wait()
	c.log.Info("Consumer pipeline stopped")

	return nil
}
