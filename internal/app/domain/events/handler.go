package events

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

// Handler exposes the event ingestion endpoint.
type Handler struct {
	ingester *Ingester
	logger   *zap.Logger
}

func NewHandler(ingester *Ingester, logger *zap.Logger) *Handler {
	return &Handler{ingester: ingester, logger: logger}
}

// Sync handles POST /api/events/sync: it pulls the open-data calendar
// feed and refreshes the events table.
func (h *Handler) Sync(c *gin.Context) {
	count, err := h.ingester.Ingest(c.Request.Context())
	if err != nil {
		h.logger.Error("Event sync failed", zap.Error(err))
		if errors.Is(err, models.ErrUpstream) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events_synced": count})
}
