package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/metrics"
	"github.com/tutorwise/signal-analytics/internal/repository"
)

const (
	flushSize     = "size"
	flushTimeout  = "timeout"
	flushShutdown = "shutdown"
)

// BatchWriterConfig configures the batch writer. ShutdownTimeout bounds the
// final flush once the pipeline context is cancelled.
type BatchWriterConfig struct {
	MaxBatchSize    int
	FlushTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// BatchWriter accumulates parsed signal events and writes them to the event
// store. Messages are acknowledged only after their batch is stored.
type BatchWriter struct {
	repository repository.EventRepository
	config     BatchWriterConfig
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(repo repository.EventRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = 1
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = 10 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

// pending is one batch in progress. The same event id can arrive twice when
// de-duplication is off or failed open; it is written once and every copy is
// acknowledged with the batch.
type pending struct {
	envelopes  []*Envelope
	events     []*domain.RawEvent
	seen       map[string]struct{}
	maxReceive int
}

func newPending(capacity int) *pending {
	return &pending{
		envelopes: make([]*Envelope, 0, capacity),
		events:    make([]*domain.RawEvent, 0, capacity),
		seen:      make(map[string]struct{}, capacity),
	}
}

func (p *pending) add(env *Envelope) {
	p.envelopes = append(p.envelopes, env)
	p.maxReceive = max(p.maxReceive, env.ReceiveCount)
	if _, dup := p.seen[env.Event.EventID]; dup {
		return
	}
	p.seen[env.Event.EventID] = struct{}{}
	p.events = append(p.events, env.Event)
}

func (p *pending) empty() bool {
	return len(p.envelopes) == 0
}

// Start consumes envelopes until in is closed or ctx is cancelled, flushing
// on size, on the flush interval and once more on the way out
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := newPending(w.config.MaxBatchSize)

	flush := func(ctx context.Context, reason string) {
		if batch.empty() {
			return
		}
		w.writeBatch(ctx, batch, reason)
		batch = newPending(w.config.MaxBatchSize)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			drainBuffered(in, batch)
			w.finalFlush(ctx, flush)
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				w.finalFlush(ctx, flush)
				return
			}

			batch.add(envelope)
			if len(batch.envelopes) >= w.config.MaxBatchSize {
				flush(ctx, flushSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			flush(ctx, flushTimeout)
		}
	}
}

// drainBuffered moves envelopes already parsed into the batch. Their event
// ids are marked seen, so leaving them unsettled would make the redelivery
// look like a duplicate.
func drainBuffered(in <-chan *Envelope, batch *pending) {
	for {
		select {
		case env, ok := <-in:
			if !ok {
				return
			}
			batch.add(env)
		default:
			return
		}
	}
}

// finalFlush writes what is left on a context that survives the pipeline's
// cancellation
func (w *BatchWriter) finalFlush(ctx context.Context, flush func(context.Context, string)) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.ShutdownTimeout)
	defer cancel()
	flush(flushCtx, flushShutdown)
}

func (w *BatchWriter) writeBatch(ctx context.Context, batch *pending, reason string) {
	metrics.BatchFlushes.WithLabelValues(reason).Inc()

	inserted, err := w.repository.InsertBatch(ctx, batch.events)
	switch {
	case err != nil:
		w.log.Error("Failed to insert signal event batch",
			zap.Error(err),
			zap.String("reason", reason),
			zap.Int("event_count", len(batch.events)),
			zap.Int("max_receive_count", batch.maxReceive))
		w.settle(ctx, batch.envelopes, (*Envelope).Nack, "nack")
		return
	case inserted != len(batch.events):
		w.log.Warn("Partial insert, leaving batch for redelivery",
			zap.Int("inserted", inserted),
			zap.Int("expected", len(batch.events)))
		w.settle(ctx, batch.envelopes, (*Envelope).Nack, "nack")
		return
	}

	metrics.EventsIngested.Add(float64(inserted))
	w.log.Info("Inserted signal events",
		zap.String("reason", reason),
		zap.Int("count", inserted),
		zap.Int("messages", len(batch.envelopes)))
	w.settle(ctx, batch.envelopes, (*Envelope).Ack, "ack")
}

func (w *BatchWriter) settle(ctx context.Context, envelopes []*Envelope, op func(*Envelope, context.Context) error, name string) {
	for _, env := range envelopes {
		if err := op(env, ctx); err != nil {
			w.log.Error("Failed to settle envelope",
				zap.String("op", name),
				zap.String("event_id", env.Event.EventID),
				zap.Error(err))
		}
	}
}
