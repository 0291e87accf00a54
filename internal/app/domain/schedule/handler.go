package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/app/observability/metrics"
)

const dateLayout = "2006-01-02"

// Handler exposes the itinerary planner over HTTP.
type Handler struct {
	planner *Planner
	logger  *zap.Logger
}

func NewHandler(planner *Planner, logger *zap.Logger) *Handler {
	return &Handler{planner: planner, logger: logger}
}

type itineraryQueryRequest struct {
	City      string `json:"city" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Seed      *int64 `json:"seed,omitempty"`
}

// BuildItinerary handles POST /api/events/query. The response is
// either the full (possibly sparse) itinerary or an error payload
// naming the failed stage.
func (h *Handler) BuildItinerary(c *gin.Context) {
	start := time.Now()

	var body itineraryQueryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	startDate, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse(dateLayout, body.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	itinerary, err := h.planner.BuildItinerary(c.Request.Context(), ItineraryRequest{
		City:      body.City,
		StartDate: startDate,
		EndDate:   endDate,
		Seed:      body.Seed,
	})

	if m := metrics.Get(); m != nil {
		m.ItinerariesBuiltTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(attribute.Bool("success", err == nil)))
		m.ItineraryBuildDuration.Record(c.Request.Context(), time.Since(start).Seconds())
	}

	if err != nil {
		h.logger.Error("Itinerary build failed",
			zap.String("city", body.City),
			zap.Error(err))
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrUpstream):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, itinerary)
}
