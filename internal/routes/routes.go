package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/domain/events"
	"github.com/Amelia-H-hub/travel-planner/internal/app/domain/places"
	"github.com/Amelia-H-hub/travel-planner/internal/app/domain/schedule"
	"github.com/Amelia-H-hub/travel-planner/internal/pkg/config"
)

// AppHandlers aggregates the HTTP handlers for all domains
type AppHandlers struct {
	Schedule *schedule.Handler
	Events   *events.Handler
}

// Setup wires repositories, clients and handlers, then registers all routes
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) {
	eventsRepo := events.NewRepositoryImpl(dbPool, logger)
	typeRepo := places.NewTypeRepository(dbPool, logger)

	placesClient := places.NewClient(cfg.GoogleMaps.APIKey, typeRepo, places.Options{
		NearbyURL: cfg.GoogleMaps.NearbyURL,
		TextURL:   cfg.GoogleMaps.TextURL,
		Timeout:   cfg.GoogleMaps.Timeout,
	}, logger)

	planner := schedule.NewPlanner(eventsRepo, placesClient, schedule.Config{
		RestaurantDenylist: cfg.Scheduler.RestaurantDenylist,
	}, logger)

	ingester := events.NewIngester(eventsRepo,
		cfg.EventsFeed.URL, cfg.EventsFeed.Country, cfg.EventsFeed.City,
		cfg.EventsFeed.Timeout, logger)

	handlers := &AppHandlers{
		Schedule: schedule.NewHandler(planner, logger),
		Events:   events.NewHandler(ingester, logger),
	}

	registerRoutes(r, handlers)
}

func registerRoutes(r *gin.Engine, h *AppHandlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/events/query", h.Schedule.BuildItinerary)
		api.POST("/events/sync", h.Events.Sync)
	}
}
