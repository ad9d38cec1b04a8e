package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/repository"
)

const eventColumns = `event_id, signal_id, event_type, target_type, target_id,
		source_component, distribution_id, occurred_at, received_at, version`

// Repository implements EventRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// signalEventsDDL creates the event log. ReplacingMergeTree only collapses
// rows that share a partition, so the table is not partitioned by
// received_at: a redelivery received in a later month must still replace
// the first copy. occurred_at is stored as the client sent it.
const signalEventsDDL = `
	CREATE TABLE IF NOT EXISTS signal_events (
		event_id String,
		signal_id Nullable(String),
		event_type LowCardinality(String),
		target_type LowCardinality(String),
		target_id String,
		source_component LowCardinality(String),
		distribution_id Nullable(String),
		occurred_at String,
		received_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id)
	SETTINGS index_granularity = 8192
	`

// InitSchema creates the signal_events table
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.client.Conn().Exec(ctx, signalEventsDDL); err != nil {
		return fmt.Errorf("failed to create signal_events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of events into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO signal_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}
		if event.ReceivedAt.IsZero() {
			event.ReceivedAt = time.Now().UTC()
		}

		err := batch.Append(
			event.EventID,
			event.SignalID,
			event.EventType,
			event.TargetType,
			event.TargetID,
			event.SourceComponent,
			event.DistributionID,
			event.OccurredAt,
			event.ReceivedAt,
			event.Version,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// FetchEvents reads all events received in [From, To]
func (r *Repository) FetchEvents(ctx context.Context, query repository.EventQuery) ([]domain.RawEvent, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM signal_events FINAL
		WHERE received_at >= ? AND received_at <= ?
	`, eventColumns)

	return r.queryEvents(ctx, q, query.From, query.To)
}

// FetchSignalEvents reads every event of one signal
func (r *Repository) FetchSignalEvents(ctx context.Context, signalID string) ([]domain.RawEvent, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM signal_events FINAL
		WHERE signal_id = ?
	`, eventColumns)

	return r.queryEvents(ctx, q, signalID)
}

func (r *Repository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]domain.RawEvent, error) {
	rows, err := r.client.Conn().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close signal event rows", zap.Error(err))
		}
	}(rows)

	var events []domain.RawEvent
	for rows.Next() {
		var e domain.RawEvent
		if err := rows.Scan(
			&e.EventID,
			&e.SignalID,
			&e.EventType,
			&e.TargetType,
			&e.TargetID,
			&e.SourceComponent,
			&e.DistributionID,
			&e.OccurredAt,
			&e.ReceivedAt,
			&e.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan signal event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal event rows: %w", err)
	}

	return events, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}
