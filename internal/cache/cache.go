// Package cache holds short-lived query results and ingestion idempotency keys.
package cache

import (
	"context"
	"time"
)

// ResultCache stores serialized query results
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Deduplicator remembers event ids that were already ingested. MarkSeen
// reports true only for the first sighting; Forget releases an id whose
// write failed so a redelivery is not mistaken for a duplicate.
type Deduplicator interface {
	MarkSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Noop is a ResultCache that never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
