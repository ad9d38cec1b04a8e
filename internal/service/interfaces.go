package service

import (
	"context"

	"github.com/tutorwise/signal-analytics/internal/dto"
)

// EventServicer defines the interface for event ingestion operations
type EventServicer interface {
	ProcessEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error)
	ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error)
}

// AnalyticsServicer defines the interface for the dashboard queries
type AnalyticsServicer interface {
	GetStats(ctx context.Context, req *dto.AnalyticsRequest) (*dto.StatsResponse, error)
	GetTopArticles(ctx context.Context, req *dto.AnalyticsRequest) (*dto.TopArticlesResponse, error)
	GetListingVisibility(ctx context.Context, req *dto.AnalyticsRequest) (*dto.ListingsResponse, error)
	GetAttributionComparison(ctx context.Context, req *dto.AnalyticsRequest) (*dto.AttributionResponse, error)
	GetJourney(ctx context.Context, signalID string) (*dto.JourneyResponse, error)
}
