package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tutorwise/signal-analytics/docs"
	"github.com/tutorwise/signal-analytics/internal/dto"
	"github.com/tutorwise/signal-analytics/internal/middleware"
	"github.com/tutorwise/signal-analytics/internal/service"
)

// Pinger is a dependency checked by /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP surface. Auth is disabled when JWTSecret is empty.
type Options struct {
	QueryTimeout time.Duration
	JWTSecret    string
	RequiredRole string
}

type Handler struct {
	eventService     service.EventServicer
	analyticsService service.AnalyticsServicer
	checks           map[string]Pinger
	opts             Options
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(eventService service.EventServicer, analyticsService service.AnalyticsServicer, checks map[string]Pinger, opts Options, log *zap.Logger) *Handler {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 15 * time.Second
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))

	h := &Handler{
		eventService:     eventService,
		analyticsService: analyticsService,
		checks:           checks,
		opts:             opts,
		router:           router,
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.publishEvent)
	h.router.POST("/events/bulk", h.publishEventsBulk)
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	signal := h.router.Group("/api/signal")
	if h.opts.JWTSecret != "" {
		signal.Use(middleware.AuthRequired([]byte(h.opts.JWTSecret), h.opts.RequiredRole, h.log))
	}
	signal.GET("/stats", h.getStats)
	signal.GET("/top-articles", h.getTopArticles)
	signal.GET("/listings", h.getListings)
	signal.GET("/attribution", h.getAttribution)
	signal.GET("/journey/:signal_id", h.getJourney)
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check that the service and its stores are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

// publishEvent handles POST /events
// @Summary Publish a single signal event
// @Description Validate a tracker event and publish it to the queue
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.PublishEventRequest true "Event data"
// @Success 202 {object} dto.PublishEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) publishEvent(c *gin.Context) {
	var req dto.PublishEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request",
			zap.Error(err),
			zap.String("event_type", req.EventType))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.eventService.ProcessEvent(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to process event",
			zap.Error(err),
			zap.String("event_type", req.EventType),
			zap.String("signal_id", req.SignalID))
		h.writeError(c, err)
		return
	}

	h.log.Debug("Event accepted",
		zap.String("event_id", eventID),
		zap.String("event_type", req.EventType))

	c.JSON(http.StatusAccepted, dto.PublishEventResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// publishEventsBulk handles POST /events/bulk
// @Summary Publish multiple signal events
// @Description Validate tracker events and publish them to the queue; invalid events are reported individually
// @Tags events
// @Accept json
// @Produce json
// @Param events body dto.PublishEventsBulkRequest true "Bulk events data"
// @Success 202 {object} dto.PublishBulkEventsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/bulk [post]
func (h *Handler) publishEventsBulk(c *gin.Context) {
	var bulkRequest dto.PublishEventsBulkRequest

	if err := c.ShouldBindJSON(&bulkRequest); err != nil {
		h.log.Warn("Invalid bulk event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventIDs, errs, err := h.eventService.ProcessBulkEvents(c.Request.Context(), bulkRequest.Events)
	if err != nil {
		h.log.Error("Failed to process bulk events",
			zap.Error(err),
			zap.Int("event_count", len(bulkRequest.Events)))
		h.writeError(c, err)
		return
	}

	h.log.Info("Bulk events processed",
		zap.Int("accepted", len(eventIDs)),
		zap.Int("rejected", len(errs)),
		zap.Int("total", len(bulkRequest.Events)))

	c.JSON(http.StatusAccepted, dto.PublishBulkEventsResponse{
		Accepted: len(eventIDs),
		Rejected: len(errs),
		EventIDs: eventIDs,
		Errors:   errs,
	})
}

// getStats handles GET /api/signal/stats
// @Summary Article performance and funnel
// @Description Per-article engagement and attributed revenue, the conversion funnel and attribution totals
// @Tags signal
// @Produce json
// @Security BearerAuth
// @Param days query int false "Lookback in days" Enums(30, 60, 90) default(30)
// @Param attribution_window query int false "Attribution window in days" Enums(7, 14, 30)
// @Param model query string false "Attribution model" Enums(first_touch, last_touch, linear)
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/signal/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	var req dto.AnalyticsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	resp, err := h.analyticsService.GetStats(ctx, &req)
	if err != nil {
		h.log.Error("Failed to get stats", zap.Error(err), zap.Int("days", req.Days))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getTopArticles handles GET /api/signal/top-articles
// @Summary Top articles by attributed revenue
// @Tags signal
// @Produce json
// @Security BearerAuth
// @Param days query int false "Lookback in days" Enums(30, 60, 90) default(30)
// @Param attribution_window query int false "Attribution window in days" Enums(7, 14, 30)
// @Param model query string false "Attribution model" Enums(first_touch, last_touch, linear)
// @Param limit query int false "Maximum number of articles" minimum(1) maximum(100)
// @Success 200 {object} dto.TopArticlesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/signal/top-articles [get]
func (h *Handler) getTopArticles(c *gin.Context) {
	var req dto.AnalyticsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	resp, err := h.analyticsService.GetTopArticles(ctx, &req)
	if err != nil {
		h.log.Error("Failed to get top articles", zap.Error(err), zap.Int("days", req.Days))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getListings handles GET /api/signal/listings
// @Summary Blog-assisted listing visibility
// @Description Listings with blog-driven views compared against the average views of mature listings in the same category
// @Tags signal
// @Produce json
// @Security BearerAuth
// @Param days query int false "Lookback in days" Enums(30, 60, 90) default(30)
// @Param attribution_window query int false "Attribution window in days" Enums(7, 14, 30)
// @Success 200 {object} dto.ListingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/signal/listings [get]
func (h *Handler) getListings(c *gin.Context) {
	var req dto.AnalyticsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	resp, err := h.analyticsService.GetListingVisibility(ctx, &req)
	if err != nil {
		h.log.Error("Failed to get listing visibility", zap.Error(err), zap.Int("days", req.Days))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getAttribution handles GET /api/signal/attribution
// @Summary Attribution model comparison
// @Description Runs first_touch, last_touch and linear over the same bookings
// @Tags signal
// @Produce json
// @Security BearerAuth
// @Param days query int false "Lookback in days" Enums(30, 60, 90) default(30)
// @Param attribution_window query int false "Attribution window in days" Enums(7, 14, 30)
// @Success 200 {object} dto.AttributionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/signal/attribution [get]
func (h *Handler) getAttribution(c *gin.Context) {
	var req dto.AnalyticsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	resp, err := h.analyticsService.GetAttributionComparison(ctx, &req)
	if err != nil {
		h.log.Error("Failed to compare attribution models", zap.Error(err), zap.Int("days", req.Days))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getJourney handles GET /api/signal/journey/:signal_id
// @Summary Journey timeline of one signal
// @Description An unknown signal returns found=false with no events
// @Tags signal
// @Produce json
// @Security BearerAuth
// @Param signal_id path string true "Signal id"
// @Success 200 {object} dto.JourneyResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/signal/journey/{signal_id} [get]
func (h *Handler) getJourney(c *gin.Context) {
	signalID := c.Param("signal_id")

	ctx, cancel := h.queryContext(c)
	defer cancel()

	resp, err := h.analyticsService.GetJourney(ctx, signalID)
	if err != nil {
		h.log.Error("Failed to get journey", zap.Error(err), zap.String("signal_id", signalID))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bindQuery(c *gin.Context, req *dto.AnalyticsRequest) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.log.Warn("Invalid analytics request",
			zap.Error(err),
			zap.String("path", c.FullPath()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.opts.QueryTimeout)
}

// writeError maps service errors onto the stable error codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidModel),
		errors.Is(err, service.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:     "store_unavailable",
			Message:   "a backing store is unavailable, retry later",
			Retryable: true,
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
