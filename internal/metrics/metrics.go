package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UnattributedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_unattributed_events_total",
		Help: "Events excluded from journey reconstruction, labelled by reason.",
	}, []string{"reason"})

	UnattributedBookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_unattributed_bookings_total",
		Help: "Bookings with no eligible touchpoint, labelled by model.",
	}, []string{"model"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signal_query_duration_ms",
		Help:    "Analytics query latency in milliseconds, labelled by endpoint.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"endpoint"})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_store_errors_total",
		Help: "Failed reads from a backing store, labelled by store.",
	}, []string{"store"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_cache_lookups_total",
		Help: "Result cache lookups, labelled by outcome (hit, miss, error).",
	}, []string{"outcome"})

	EventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_events_ingested_total",
		Help: "Events written to the event store by the consumer.",
	})

	DuplicateEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_events_duplicate_total",
		Help: "Events skipped by the consumer because their id was already seen.",
	})

	EventRedeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_events_redelivered_total",
		Help: "Queue messages received more than once.",
	})

	QueueMessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_queue_messages_received_total",
		Help: "Messages received from the signal queue.",
	})

	QueueReceiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_queue_receive_errors_total",
		Help: "Failed receive calls against the signal queue.",
	})

	BatchFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_batch_flushes_total",
		Help: "Event store batch writes, labelled by trigger (size, timeout, shutdown).",
	}, []string{"reason"})
)
