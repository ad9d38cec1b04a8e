package dto

// PublishEventRequest represents a signal event sent by the web tracker
type PublishEventRequest struct {
	SignalID        string `json:"signal_id" example:"session_9f2c1a"`
	EventType       string `json:"event_type" binding:"required,oneof=view interaction save booking" example:"view"`
	TargetType      string `json:"target_type" binding:"required" example:"article"`
	TargetID        string `json:"target_id" binding:"required" example:"gcse-maths-revision-guide"`
	SourceComponent string `json:"source_component" example:"blog"`
	DistributionID  string `json:"distribution_id" example:"dist_campaign_42"`
	OccurredAt      string `json:"occurred_at" binding:"required" example:"2026-03-01T10:15:00Z"`
}

// PublishEventsBulkRequest represents a publish bulk event request
type PublishEventsBulkRequest struct {
	Events []PublishEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// AnalyticsRequest holds the dashboard query parameters. A zero
// AttributionWindow, Model or Limit selects the configured default.
type AnalyticsRequest struct {
	Days              int    `form:"days,default=30" binding:"oneof=30 60 90" example:"30"`
	AttributionWindow int    `form:"attribution_window" binding:"omitempty,oneof=7 14 30" example:"14"`
	Model             string `form:"model" binding:"omitempty,oneof=first_touch last_touch linear" example:"last_touch"`
	Limit             int    `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
}
