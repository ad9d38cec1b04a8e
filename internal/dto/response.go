package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error" example:"validation_error"`
	Message   string `json:"message,omitempty" example:"days must be one of 30, 60, 90"`
	Retryable bool   `json:"retryable,omitempty" example:"false"`
}

// PublishEventResponse represents a successful event ingestion response
type PublishEventResponse struct {
	EventID string `json:"event_id" example:"3f9a1c..."`
	Status  string `json:"status" example:"accepted"`
}

// PublishBulkEventsResponse represents a successful bulk event ingestion response
type PublishBulkEventsResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"0"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty" example:"occurred_at cannot be in the future"`
}

// ArticlePerformanceData is one article row. Revenue is a fixed two-decimal string.
type ArticlePerformanceData struct {
	ArticleID      string   `json:"article_id" example:"gcse-maths-revision-guide"`
	Views          int      `json:"views" example:"120"`
	Interactions   int      `json:"interactions" example:"40"`
	Saves          int      `json:"saves" example:"12"`
	Bookings       int      `json:"bookings" example:"3"`
	Revenue        string   `json:"revenue" example:"150.00"`
	RevenueMinor   int64    `json:"revenue_minor" example:"15000"`
	ConversionRate *float64 `json:"conversion_rate" example:"0.025"`
}

// FunnelStageData is one funnel stage. ConversionRate is null for the first
// stage and when the previous stage count is zero.
type FunnelStageData struct {
	StageNumber    int      `json:"stage_number" example:"2"`
	StageName      string   `json:"stage_name" example:"interaction"`
	Count          int      `json:"count" example:"40"`
	ConversionRate *float64 `json:"conversion_rate" example:"0.4"`
}

// AttributionTotals reports attributed and unattributed booking revenue
type AttributionTotals struct {
	TotalBookings        int    `json:"total_bookings" example:"10"`
	AttributedBookings   int    `json:"attributed_bookings" example:"8"`
	UnattributedBookings int    `json:"unattributed_bookings" example:"2"`
	TotalRevenue         string `json:"total_revenue" example:"500.00"`
	AttributedRevenue    string `json:"attributed_revenue" example:"400.00"`
	UnattributedRevenue  string `json:"unattributed_revenue" example:"100.00"`
}

// UnattributedEvents counts events left out of every journey
type UnattributedEvents struct {
	MissingSignal      int `json:"missing_signal" example:"3"`
	MalformedTimestamp int `json:"malformed_timestamp" example:"1"`
	UnknownType        int `json:"unknown_type" example:"0"`
	Total              int `json:"total" example:"4"`
}

// StatsResponse is the per-article performance list plus the funnel
type StatsResponse struct {
	Days               int                      `json:"days" example:"30"`
	AttributionWindow  int                      `json:"attribution_window" example:"14"`
	Model              string                   `json:"model" example:"last_touch"`
	From               time.Time                `json:"from"`
	To                 time.Time                `json:"to"`
	Articles           []ArticlePerformanceData `json:"articles"`
	Funnel             []FunnelStageData        `json:"funnel"`
	Totals             AttributionTotals        `json:"totals"`
	UnattributedEvents UnattributedEvents       `json:"unattributed_events"`
}

// TopArticlesResponse is the revenue-ranked article list
type TopArticlesResponse struct {
	Days              int                      `json:"days" example:"30"`
	AttributionWindow int                      `json:"attribution_window" example:"14"`
	Model             string                   `json:"model" example:"last_touch"`
	Articles          []ArticlePerformanceData `json:"articles"`
}

// ListingVisibilityData compares a listing's blog views with its category baseline
type ListingVisibilityData struct {
	ListingID            string   `json:"listing_id" example:"listing_123"`
	Category             string   `json:"category" example:"maths"`
	Mature               bool     `json:"mature" example:"true"`
	TotalViews           int      `json:"total_views" example:"80"`
	BlogViews            int      `json:"blog_views" example:"30"`
	BlogAssistedBookings int      `json:"blog_assisted_bookings" example:"2"`
	CategoryAvgViews     float64  `json:"category_avg_views" example:"20"`
	BaselineListings     int      `json:"baseline_listings" example:"14"`
	VisibilityMultiplier *float64 `json:"visibility_multiplier" example:"1.5"`
}

// ListingsResponse is the blog-assisted listing visibility comparison
type ListingsResponse struct {
	Days              int                     `json:"days" example:"30"`
	AttributionWindow int                     `json:"attribution_window" example:"14"`
	MinAgeDays        int                     `json:"baseline_min_age_days" example:"14"`
	Listings          []ListingVisibilityData `json:"listings"`
}

// JourneyEventData is one event of a journey timeline
type JourneyEventData struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type" example:"view"`
	TargetType      string    `json:"target_type" example:"article"`
	TargetID        string    `json:"target_id"`
	SourceComponent string    `json:"source_component" example:"blog"`
	DistributionID  string    `json:"distribution_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// JourneyMetadata summarises a journey
type JourneyMetadata struct {
	TotalEvents     int       `json:"total_events" example:"5"`
	FirstEventAt    time.Time `json:"first_event_at"`
	LastEventAt     time.Time `json:"last_event_at"`
	DurationSeconds int64     `json:"duration_seconds" example:"3600"`
	TouchpointCount int       `json:"touchpoint_count" example:"3"`
	IsDistribution  bool      `json:"is_distribution" example:"false"`
	DistributionID  string    `json:"distribution_id,omitempty"`
}

// JourneyResponse is the ordered timeline of one signal. Found is false and
// Events is empty when the signal has no valid events.
type JourneyResponse struct {
	SignalID           string             `json:"signal_id" example:"session_9f2c1a"`
	Found              bool               `json:"found" example:"true"`
	Events             []JourneyEventData `json:"events"`
	Metadata           *JourneyMetadata   `json:"metadata"`
	UnattributedEvents UnattributedEvents `json:"unattributed_events"`
}

// ModelComparisonData is one attribution model's totals
type ModelComparisonData struct {
	ModelType                string `json:"model_type" example:"linear"`
	AttributedArticles       int    `json:"attributed_articles" example:"12"`
	AttributedBookings       int    `json:"attributed_bookings" example:"8"`
	AttributedRevenue        string `json:"attributed_revenue" example:"400.00"`
	AttributedRevenueMinor   int64  `json:"attributed_revenue_minor" example:"40000"`
	UnattributedBookings     int    `json:"unattributed_bookings" example:"2"`
	UnattributedRevenue      string `json:"unattributed_revenue" example:"100.00"`
	UnattributedRevenueMinor int64  `json:"unattributed_revenue_minor" example:"10000"`
}

// AttributionResponse compares all attribution models over the same bookings
type AttributionResponse struct {
	Days              int                   `json:"days" example:"30"`
	AttributionWindow int                   `json:"attribution_window" example:"14"`
	Models            []ModelComparisonData `json:"models"`
}

// FormatMinor renders minor units as a fixed two-decimal amount
func FormatMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
