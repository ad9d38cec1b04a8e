package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/aggregate"
	"github.com/tutorwise/signal-analytics/internal/attribution"
	"github.com/tutorwise/signal-analytics/internal/cache"
	"github.com/tutorwise/signal-analytics/internal/config"
	"github.com/tutorwise/signal-analytics/internal/domain"
	"github.com/tutorwise/signal-analytics/internal/dto"
	"github.com/tutorwise/signal-analytics/internal/funnel"
	"github.com/tutorwise/signal-analytics/internal/journey"
	"github.com/tutorwise/signal-analytics/internal/metrics"
	"github.com/tutorwise/signal-analytics/internal/repository"
)

var (
	// ErrStoreUnavailable wraps every failed read from the event or marketplace store
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidModel     = errors.New("invalid attribution model")
)

var allowedDays = map[int]bool{30: true, 60: true, 90: true}

const day = 24 * time.Hour

// AnalyticsOptions holds the query defaults of the analytics service
type AnalyticsOptions struct {
	DefaultWindow    int
	TopArticlesLimit int
	CacheTTL         time.Duration
}

// AnalyticsService answers the dashboard queries. Every query fetches its
// inputs once per store and derives all views from the same snapshot.
type AnalyticsService struct {
	events        repository.EventReader
	marketplace   repository.MarketplaceReader
	cache         cache.ResultCache
	cacheTTL      time.Duration
	profile       config.Profile
	engine        *attribution.Engine
	stages        []funnel.StageDef
	defaultWindow attribution.Window
	defaultModel  attribution.ModelType
	topLimit      int
	now           func() time.Time
	log           *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	events repository.EventReader,
	marketplace repository.MarketplaceReader,
	resultCache cache.ResultCache,
	profile config.Profile,
	opts AnalyticsOptions,
	log *zap.Logger,
) (*AnalyticsService, error) {
	window, err := attribution.NewWindow(opts.DefaultWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to set default attribution window: %w", err)
	}

	model, err := attribution.ParseModelType(profile.DefaultModel)
	if err != nil {
		return nil, fmt.Errorf("failed to set default attribution model: %w", err)
	}

	stages := make([]funnel.StageDef, 0, len(profile.FunnelStages))
	for _, def := range profile.FunnelStages {
		types := make([]domain.EventType, 0, len(def.EventTypes))
		for _, name := range def.EventTypes {
			t, ok := domain.ParseEventType(name)
			if !ok {
				return nil, fmt.Errorf("failed to build funnel stage %q: %w: %q", def.Name, domain.ErrUnknownEventType, name)
			}
			types = append(types, t)
		}
		stages = append(stages, funnel.AnyOf(def.Name, types...))
	}

	if resultCache == nil {
		resultCache = cache.Noop{}
	}

	return &AnalyticsService{
		events:        events,
		marketplace:   marketplace,
		cache:         resultCache,
		cacheTTL:      opts.CacheTTL,
		profile:       profile,
		engine:        attribution.NewEngine(profile.AttributableTargetTypes),
		stages:        stages,
		defaultWindow: window,
		defaultModel:  model,
		topLimit:      opts.TopArticlesLimit,
		now:           time.Now,
		log:           log,
	}, nil
}

// query is a validated analytics request with defaults applied
type query struct {
	days   int
	window attribution.Window
	model  attribution.ModelType
	limit  int
}

func (q query) cacheKey(endpoint string) string {
	return fmt.Sprintf("%s:%d:%d:%s:%d", endpoint, q.days, q.window.Days(), q.model, q.limit)
}

func (s *AnalyticsService) resolve(req *dto.AnalyticsRequest) (query, error) {
	q := query{
		days:   req.Days,
		window: s.defaultWindow,
		model:  s.defaultModel,
		limit:  s.topLimit,
	}
	if q.days == 0 {
		q.days = 30
	}
	if !allowedDays[q.days] {
		return query{}, fmt.Errorf("%w: days must be one of 30, 60, 90 (got %d)", ErrInvalidRequest, req.Days)
	}

	if req.AttributionWindow != 0 {
		w, err := attribution.NewWindow(req.AttributionWindow)
		if err != nil {
			return query{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		q.window = w
	}

	if req.Model != "" {
		m, err := attribution.ParseModelType(req.Model)
		if err != nil {
			return query{}, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		q.model = m
	}

	if req.Limit < 0 {
		return query{}, fmt.Errorf("%w: limit cannot be negative", ErrInvalidRequest)
	}
	if req.Limit > 0 {
		q.limit = req.Limit
	}

	return q, nil
}

// snapshot is everything one query reads from the stores
type snapshot struct {
	from     time.Time
	to       time.Time
	journeys journey.Result
	bookings []domain.Booking
	listings []domain.Listing
}

// load reads events for [from - window, to] so touchpoints that precede the
// first booking in range are still visible, and bookings for [from, to].
func (s *AnalyticsService) load(ctx context.Context, q query, withListings bool) (*snapshot, error) {
	to := s.now().UTC()
	from := to.Add(-time.Duration(q.days) * day)

	raw, err := s.events.FetchEvents(ctx, repository.EventQuery{
		From: from.Add(-q.window.Duration()),
		To:   to,
	})
	if err != nil {
		metrics.StoreErrors.WithLabelValues("clickhouse").Inc()
		return nil, fmt.Errorf("failed to fetch events: %w: %w", ErrStoreUnavailable, err)
	}

	bookings, err := s.marketplace.FetchBookings(ctx, repository.BookingQuery{From: from, To: to})
	if err != nil {
		metrics.StoreErrors.WithLabelValues("postgres").Inc()
		return nil, fmt.Errorf("failed to fetch bookings: %w: %w", ErrStoreUnavailable, err)
	}

	snap := &snapshot{
		from:     from,
		to:       to,
		journeys: journey.Reconstruct(raw),
		bookings: bookings,
	}

	if withListings {
		listings, err := s.marketplace.FetchListings(ctx)
		if err != nil {
			metrics.StoreErrors.WithLabelValues("postgres").Inc()
			return nil, fmt.Errorf("failed to fetch listings: %w: %w", ErrStoreUnavailable, err)
		}
		snap.listings = listings
	}

	s.recordStats(snap.journeys.Stats)

	s.log.Debug("Loaded analytics snapshot",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("raw_events", len(raw)),
		zap.Int("journeys", len(snap.journeys.Journeys)),
		zap.Int("bookings", len(bookings)),
		zap.Int("listings", len(snap.listings)))

	return snap, nil
}

func (s *AnalyticsService) recordStats(stats journey.Stats) {
	if stats.Unattributed() == 0 {
		return
	}
	metrics.UnattributedEvents.WithLabelValues("missing_signal").Add(float64(stats.MissingSignal))
	metrics.UnattributedEvents.WithLabelValues("malformed_timestamp").Add(float64(stats.MalformedTimestamp))
	metrics.UnattributedEvents.WithLabelValues("unknown_type").Add(float64(stats.UnknownType))

	s.log.Warn("Excluded events from journey reconstruction",
		zap.Int("missing_signal", stats.MissingSignal),
		zap.Int("malformed_timestamp", stats.MalformedTimestamp),
		zap.Int("unknown_type", stats.UnknownType))
}

func (s *AnalyticsService) attribute(snap *snapshot, q query, model attribution.ModelType) (attribution.Summary, error) {
	summary, err := s.engine.Run(snap.bookings, snap.journeys.Journeys, q.window, model)
	if err != nil {
		return attribution.Summary{}, fmt.Errorf("failed to run %s attribution: %w", model, err)
	}
	metrics.UnattributedBookings.WithLabelValues(string(model)).Add(float64(summary.UnattributedBookings))
	return summary, nil
}

// GetStats returns per-article performance, the funnel and attribution totals
func (s *AnalyticsService) GetStats(ctx context.Context, req *dto.AnalyticsRequest) (*dto.StatsResponse, error) {
	defer observe("stats", time.Now())

	q, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	q.limit = 0

	return cached(ctx, s, q.cacheKey("stats"), func(ctx context.Context) (*dto.StatsResponse, error) {
		snap, err := s.load(ctx, q, false)
		if err != nil {
			return nil, err
		}

		summary, err := s.attribute(snap, q, q.model)
		if err != nil {
			return nil, err
		}

		articles := aggregate.TopArticles(snap.journeys.Journeys, summary, aggregate.ArticleOptions{
			From:      snap.from,
			To:        snap.to,
			IsContent: s.engine.Eligibility().IsContent,
		})
		stages := funnel.Calculate(snap.journeys.Journeys, s.stages, funnel.Options{From: snap.from, To: snap.to})

		return &dto.StatsResponse{
			Days:               q.days,
			AttributionWindow:  q.window.Days(),
			Model:              string(q.model),
			From:               snap.from,
			To:                 snap.to,
			Articles:           toArticleData(articles),
			Funnel:             toFunnelData(stages),
			Totals:             toTotals(summary),
			UnattributedEvents: toUnattributedEvents(snap.journeys.Stats),
		}, nil
	})
}

// GetTopArticles returns the articles ranked by attributed revenue
func (s *AnalyticsService) GetTopArticles(ctx context.Context, req *dto.AnalyticsRequest) (*dto.TopArticlesResponse, error) {
	defer observe("top_articles", time.Now())

	q, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	return cached(ctx, s, q.cacheKey("top_articles"), func(ctx context.Context) (*dto.TopArticlesResponse, error) {
		snap, err := s.load(ctx, q, false)
		if err != nil {
			return nil, err
		}

		summary, err := s.attribute(snap, q, q.model)
		if err != nil {
			return nil, err
		}

		articles := aggregate.TopArticles(snap.journeys.Journeys, summary, aggregate.ArticleOptions{
			From:      snap.from,
			To:        snap.to,
			IsContent: s.engine.Eligibility().IsContent,
			Limit:     q.limit,
		})

		return &dto.TopArticlesResponse{
			Days:              q.days,
			AttributionWindow: q.window.Days(),
			Model:             string(q.model),
			Articles:          toArticleData(articles),
		}, nil
	})
}

// GetListingVisibility compares blog-driven listing views with mature
// listings of the same category
func (s *AnalyticsService) GetListingVisibility(ctx context.Context, req *dto.AnalyticsRequest) (*dto.ListingsResponse, error) {
	defer observe("listings", time.Now())

	q, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	q.model, q.limit = "", 0

	return cached(ctx, s, q.cacheKey("listings"), func(ctx context.Context) (*dto.ListingsResponse, error) {
		snap, err := s.load(ctx, q, true)
		if err != nil {
			return nil, err
		}

		maturity := s.profile.ListingMaturity
		rows := aggregate.ListingVisibilityReport(snap.journeys.Journeys, snap.listings, snap.bookings, aggregate.ListingOptions{
			From:              snap.from,
			To:                snap.to,
			Window:            q.window.Duration(),
			ListingTargetType: s.profile.ListingTargetType,
			BlogSources:       s.profile.BlogSourceComponents,
			MatureStatuses:    maturity.MatureStatuses,
			MinAge:            time.Duration(maturity.MinAgeDays) * day,
		})

		resp := &dto.ListingsResponse{
			Days:              q.days,
			AttributionWindow: q.window.Days(),
			MinAgeDays:        maturity.MinAgeDays,
			Listings:          make([]dto.ListingVisibilityData, 0, len(rows)),
		}
		for _, r := range rows {
			resp.Listings = append(resp.Listings, dto.ListingVisibilityData{
				ListingID:            r.ListingID,
				Category:             r.Category,
				Mature:               r.Mature,
				TotalViews:           r.TotalViews,
				BlogViews:            r.BlogViews,
				BlogAssistedBookings: r.BlogAssistedBookings,
				CategoryAvgViews:     r.CategoryAvgViews,
				BaselineListings:     r.BaselineListings,
				VisibilityMultiplier: r.VisibilityMultiplier,
			})
		}
		return resp, nil
	})
}

// GetAttributionComparison runs every attribution model over the same bookings
func (s *AnalyticsService) GetAttributionComparison(ctx context.Context, req *dto.AnalyticsRequest) (*dto.AttributionResponse, error) {
	defer observe("attribution", time.Now())

	q, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	q.model, q.limit = "", 0

	return cached(ctx, s, q.cacheKey("attribution"), func(ctx context.Context) (*dto.AttributionResponse, error) {
		snap, err := s.load(ctx, q, false)
		if err != nil {
			return nil, err
		}

		summaries := make([]attribution.Summary, 0, len(attribution.ModelTypes))
		for _, t := range attribution.ModelTypes {
			summary, err := s.attribute(snap, q, t)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, summary)
		}

		resp := &dto.AttributionResponse{
			Days:              q.days,
			AttributionWindow: q.window.Days(),
			Models:            make([]dto.ModelComparisonData, 0, len(summaries)),
		}
		for _, c := range aggregate.CompareModels(summaries) {
			resp.Models = append(resp.Models, dto.ModelComparisonData{
				ModelType:                string(c.ModelType),
				AttributedArticles:       c.AttributedArticles,
				AttributedBookings:       c.AttributedBookings,
				AttributedRevenue:        dto.FormatMinor(c.AttributedRevenue),
				AttributedRevenueMinor:   c.AttributedRevenue,
				UnattributedBookings:     c.UnattributedBookings,
				UnattributedRevenue:      dto.FormatMinor(c.UnattributedRevenue),
				UnattributedRevenueMinor: c.UnattributedRevenue,
			})
		}
		return resp, nil
	})
}

// GetJourney returns the ordered timeline of one signal. An unknown signal
// is not an error: the response carries Found false and no events.
func (s *AnalyticsService) GetJourney(ctx context.Context, signalID string) (*dto.JourneyResponse, error) {
	defer observe("journey", time.Now())

	if signalID == "" {
		return nil, fmt.Errorf("%w: signal_id is required", ErrInvalidRequest)
	}

	raw, err := s.events.FetchSignalEvents(ctx, signalID)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("clickhouse").Inc()
		return nil, fmt.Errorf("failed to fetch signal events: %w: %w", ErrStoreUnavailable, err)
	}

	result := journey.Reconstruct(raw)
	resp := &dto.JourneyResponse{
		SignalID:           signalID,
		Events:             []dto.JourneyEventData{},
		UnattributedEvents: toUnattributedEvents(result.Stats),
	}

	j, ok := result.Journeys[signalID]
	if !ok {
		s.log.Info("Journey not found", zap.String("signal_id", signalID))
		return resp, nil
	}

	resp.Found = true
	resp.Events = make([]dto.JourneyEventData, 0, len(j.Events))
	for _, e := range j.Events {
		resp.Events = append(resp.Events, dto.JourneyEventData{
			EventID:         e.EventID,
			EventType:       string(e.Type),
			TargetType:      e.TargetType,
			TargetID:        e.TargetID,
			SourceComponent: e.SourceComponent,
			DistributionID:  e.DistributionID,
			OccurredAt:      e.OccurredAt,
		})
	}
	resp.Metadata = &dto.JourneyMetadata{
		TotalEvents:     j.TotalEvents(),
		FirstEventAt:    j.FirstEventAt(),
		LastEventAt:     j.LastEventAt(),
		DurationSeconds: int64(j.Duration() / time.Second),
		TouchpointCount: j.TouchpointCount(s.engine.Eligibility().IsContent),
		IsDistribution:  j.IsDistribution,
		DistributionID:  j.DistributionID,
	}

	return resp, nil
}

// cached serves a result from the result cache or computes and stores it.
// Cache failures are logged and never fail the query.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, compute func(context.Context) (*T, error)) (*T, error) {
	if s.cacheTTL > 0 {
		b, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			s.log.Warn("Failed to read result cache", zap.String("key", key), zap.Error(err))
		case ok:
			var out T
			if err := json.Unmarshal(b, &out); err == nil {
				metrics.CacheLookups.WithLabelValues("hit").Inc()
				return &out, nil
			}
			metrics.CacheLookups.WithLabelValues("error").Inc()
			s.log.Warn("Discarding undecodable cached result", zap.String("key", key))
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	out, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheTTL > 0 {
		b, err := json.Marshal(out)
		if err == nil {
			err = s.cache.Set(ctx, key, b, s.cacheTTL)
		}
		if err != nil {
			s.log.Warn("Failed to write result cache", zap.String("key", key), zap.Error(err))
		}
	}

	return out, nil
}

func observe(endpoint string, start time.Time) {
	metrics.QueryDuration.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
}

func toArticleData(rows []aggregate.ArticlePerformance) []dto.ArticlePerformanceData {
	out := make([]dto.ArticlePerformanceData, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ArticlePerformanceData{
			ArticleID:      r.ArticleID,
			Views:          r.Views,
			Interactions:   r.Interactions,
			Saves:          r.Saves,
			Bookings:       r.Bookings,
			Revenue:        dto.FormatMinor(r.Revenue),
			RevenueMinor:   r.Revenue,
			ConversionRate: r.ConversionRate,
		})
	}
	return out
}

func toFunnelData(stages []funnel.Stage) []dto.FunnelStageData {
	out := make([]dto.FunnelStageData, 0, len(stages))
	for _, st := range stages {
		out = append(out, dto.FunnelStageData{
			StageNumber:    st.StageNumber,
			StageName:      st.StageName,
			Count:          st.Count,
			ConversionRate: st.ConversionRate,
		})
	}
	return out
}

func toTotals(s attribution.Summary) dto.AttributionTotals {
	return dto.AttributionTotals{
		TotalBookings:        s.TotalBookings,
		AttributedBookings:   s.AttributedBookings,
		UnattributedBookings: s.UnattributedBookings,
		TotalRevenue:         dto.FormatMinor(s.TotalRevenue),
		AttributedRevenue:    dto.FormatMinor(s.AttributedRevenue),
		UnattributedRevenue:  dto.FormatMinor(s.UnattributedRevenue),
	}
}

func toUnattributedEvents(stats journey.Stats) dto.UnattributedEvents {
	return dto.UnattributedEvents{
		MissingSignal:      stats.MissingSignal,
		MalformedTimestamp: stats.MalformedTimestamp,
		UnknownType:        stats.UnknownType,
		Total:              stats.Unattributed(),
	}
}
