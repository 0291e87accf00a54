// Package schedule builds day-by-day travel itineraries for a city and
// date range. The pipeline fills a skeleton of trip days in four
// stages: ticketed events, tourist attractions, restaurants and
// lodging. Candidate pools come from collaborator contracts; the
// pipeline itself is synchronous and all working state is request
// scoped.
package schedule

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	aho_corasick "github.com/petar-dambovaliev/aho-corasick"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

// PlaceCategory selects the collaborator's category filter for nearby
// searches.
type PlaceCategory string

const (
	CategoryAttraction PlaceCategory = "attraction"
	CategoryRestaurant PlaceCategory = "restaurant"
	CategoryLodging    PlaceCategory = "lodging"
)

// EventsRepository supplies the dated events pool for a city, already
// filtered to overlap the requested date range.
type EventsRepository interface {
	FetchEventsForCity(ctx context.Context, city string, start, end time.Time) ([]models.Event, error)
}

// PlacesClient is the place-search collaborator used for attractions,
// restaurants and lodging.
type PlacesClient interface {
	SearchNearby(ctx context.Context, center models.Coordinates, radiusMeters float64, category PlaceCategory, excludeIDs []string) ([]models.Place, error)
	SearchAttractionsByCity(ctx context.Context, city string, minCount int) ([]models.Place, error)
}

// Config carries the scheduling knobs. Zero values fall back to the
// planner defaults.
type Config struct {
	MaxPairDistanceKm        float64
	NearbyAttractionRadiusM  float64
	RestaurantInitialRadiusM float64
	RestaurantRadiusStepM    float64
	RestaurantMaxRadiusM     float64
	LodgingRadiusM           float64

	// RestaurantDenylist lists name substrings that disqualify a
	// restaurant regardless of its opening hours.
	RestaurantDenylist []string
}

func (c Config) withDefaults() Config {
	if c.MaxPairDistanceKm == 0 {
		c.MaxPairDistanceKm = 5
	}
	if c.NearbyAttractionRadiusM == 0 {
		c.NearbyAttractionRadiusM = 1000
	}
	if c.RestaurantInitialRadiusM == 0 {
		c.RestaurantInitialRadiusM = 800
	}
	if c.RestaurantRadiusStepM == 0 {
		c.RestaurantRadiusStepM = 200
	}
	if c.RestaurantMaxRadiusM == 0 {
		c.RestaurantMaxRadiusM = 2000
	}
	if c.LodgingRadiusM == 0 {
		c.LodgingRadiusM = 2000
	}
	return c
}

// ItineraryRequest describes one planning run. Seed, when set, fixes
// the request-scoped random source for reproducible runs.
type ItineraryRequest struct {
	City      string
	StartDate time.Time
	EndDate   time.Time
	Seed      *int64
}

// Planner composes the scheduling stages over the collaborator
// contracts.
type Planner struct {
	events   EventsRepository
	places   PlacesClient
	cfg      Config
	denylist *aho_corasick.AhoCorasick
	logger   *zap.Logger
}

// NewPlanner wires a planner with its collaborators.
func NewPlanner(events EventsRepository, places PlacesClient, cfg Config, logger *zap.Logger) *Planner {
	cfg = cfg.withDefaults()

	var denylist *aho_corasick.AhoCorasick
	if len(cfg.RestaurantDenylist) > 0 {
		builder := aho_corasick.NewAhoCorasickBuilder(aho_corasick.Opts{
			MatchKind: aho_corasick.LeftMostLongestMatch,
			DFA:       true,
		})
		ac := builder.Build(cfg.RestaurantDenylist)
		denylist = &ac
	}

	return &Planner{
		events:   events,
		places:   places,
		cfg:      cfg,
		denylist: denylist,
		logger:   logger,
	}
}

// tripContext is the mutable working state of one planning run. Each
// request owns its own context; nothing here outlives the run.
type tripContext struct {
	city string
	days []models.TripDay
	rng  *rand.Rand

	usedAttractionIDs map[string]struct{}
	usedRestaurantIDs map[string]struct{}
	usedLodgingIDs    map[string]struct{}
}

func newTripContext(city string, start time.Time, duration int, rng *rand.Rand) *tripContext {
	days := make([]models.TripDay, duration)
	for i := range days {
		date := start.AddDate(0, 0, i)
		days[i] = models.TripDay{Date: date, Weekday: date.Weekday()}
	}
	return &tripContext{
		city:              city,
		days:              days,
		rng:               rng,
		usedAttractionIDs: make(map[string]struct{}),
		usedRestaurantIDs: make(map[string]struct{}),
		usedLodgingIDs:    make(map[string]struct{}),
	}
}

func (t *tripContext) eventFreeDayCount() int {
	n := 0
	for i := range t.days {
		if t.days[i].EventCount() == 0 {
			n++
		}
	}
	return n
}

// BuildItinerary runs the full pipeline for one request and returns
// the (possibly sparse) itinerary. Collaborator failures abort the run
// with ErrUpstream; empty candidate pools never do.
func (p *Planner) BuildItinerary(ctx context.Context, req ItineraryRequest) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("schedule").Start(ctx, "BuildItinerary", trace.WithAttributes(
		attribute.String("trip.city", req.City),
		attribute.String("trip.start_date", req.StartDate.Format("2006-01-02")),
		attribute.String("trip.end_date", req.EndDate.Format("2006-01-02")),
	))
	defer span.End()

	if err := validateRequest(req); err != nil {
		span.SetStatus(codes.Error, "invalid itinerary request")
		return nil, err
	}

	tripDuration := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
	l := p.logger.With(
		zap.String("method", "BuildItinerary"),
		zap.String("city", req.City),
		zap.Int("tripDuration", tripDuration),
	)

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	trip := newTripContext(req.City, req.StartDate, tripDuration, rand.New(rand.NewSource(seed)))

	events, err := p.events.FetchEventsForCity(ctx, req.City, req.StartDate, req.EndDate)
	if err != nil {
		l.Error("Failed to fetch events for city", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "event fetch failed")
		return nil, fmt.Errorf("fetching events for %s: %w", req.City, err)
	}
	p.assignEvents(trip, events, tripDuration)

	if err := p.assignAttractions(ctx, trip); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attraction stage failed")
		return nil, err
	}

	if err := p.assignRestaurants(ctx, trip); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restaurant stage failed")
		return nil, err
	}

	stays, err := p.assignLodging(ctx, trip, tripDuration)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lodging stage failed")
		return nil, err
	}

	l.Info("Itinerary built",
		zap.Int("days", len(trip.days)),
		zap.Int("stays", len(stays)),
	)
	span.SetStatus(codes.Ok, "itinerary built")

	return &models.Itinerary{
		ID:        uuid.NewString(),
		City:      req.City,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Days:      trip.days,
		Stays:     stays,
	}, nil
}

func validateRequest(req ItineraryRequest) error {
	if req.City == "" {
		return fmt.Errorf("city is required: %w", models.ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required: %w", models.ErrInvalidInput)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("end date %s precedes start date %s: %w",
			req.EndDate.Format("2006-01-02"), req.StartDate.Format("2006-01-02"), models.ErrInvalidInput)
	}
	return nil
}
