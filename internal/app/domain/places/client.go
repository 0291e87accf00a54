// Package places implements the place-search collaborator on top of
// the Places API v1: nearby searches for attractions, restaurants and
// lodging, and the paginated city-wide attraction search.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/domain/schedule"
	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/app/observability/metrics"
	"github.com/Amelia-H-hub/travel-planner/internal/pkg/cache"
)

const (
	defaultNearbyURL = "https://places.googleapis.com/v1/places:searchNearby"
	defaultTextURL   = "https://places.googleapis.com/v1/places:searchText"

	maxResultCount = 20

	// attractionExclusionMarker filters out guided-tour meeting points
	// that the text search returns but nobody can actually visit.
	attractionExclusionMarker = "Meeting Point"
)

// Main-category sets per schedule category, matching the place-type
// catalogue.
var categoryFilters = map[schedule.PlaceCategory]struct {
	mainCategories []string
	subCategory    string
}{
	schedule.CategoryAttraction: {
		mainCategories: []string{"Culture", "Entertainment and Recreation", "Natural Features", "Shopping", "Sports"},
	},
	schedule.CategoryRestaurant: {
		mainCategories: []string{"Food and Drink"},
		subCategory:    "restaurant",
	},
	schedule.CategoryLodging: {
		mainCategories: []string{"Lodging"},
	},
}

var nearbyFieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.location",
	"places.regularOpeningHours",
}, ",")

var textFieldMask = nearbyFieldMask + ",nextPageToken"

// Options tunes the client; zero values use production defaults.
type Options struct {
	NearbyURL string
	TextURL   string
	Timeout   time.Duration
	PageDelay time.Duration
	CacheTTL  time.Duration
}

func (o Options) withDefaults() Options {
	if o.NearbyURL == "" {
		o.NearbyURL = defaultNearbyURL
	}
	if o.TextURL == "" {
		o.TextURL = defaultTextURL
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.PageDelay == 0 {
		o.PageDelay = 2 * time.Second
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = 15 * time.Minute
	}
	return o
}

var _ schedule.PlacesClient = (*Client)(nil)

// Client talks to the Places API and resolves category filters through
// the place-type catalogue. City attraction pools are cached since the
// paginated text search is the most expensive call of a planning run.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	opts        Options
	types       TypeCatalogue
	attractions *cache.UnifiedCache[[]models.Place]
	logger      *zap.Logger
}

func NewClient(apiKey string, types TypeCatalogue, opts Options, logger *zap.Logger) *Client {
	opts = opts.withDefaults()
	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		apiKey:      apiKey,
		opts:        opts,
		types:       types,
		attractions: cache.New[[]models.Place](opts.CacheTTL, "city_attractions", logger),
		logger:      logger,
	}
}

// SearchNearby returns places of the given category around the center,
// already stripped of excluded ids.
func (c *Client) SearchNearby(ctx context.Context, center models.Coordinates, radiusMeters float64, category schedule.PlaceCategory, excludeIDs []string) ([]models.Place, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "SearchNearby", trace.WithAttributes(
		attribute.String("places.category", string(category)),
		attribute.Float64("places.radius_meters", radiusMeters),
	))
	defer span.End()

	filter, ok := categoryFilters[category]
	if !ok {
		return nil, fmt.Errorf("unknown place category %q: %w", category, models.ErrInvalidInput)
	}
	includedTypes, err := c.types.IncludedTypes(ctx, filter.mainCategories, filter.subCategory)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "type catalogue lookup failed")
		return nil, err
	}

	body := nearbySearchRequest{
		IncludedTypes:  includedTypes,
		MaxResultCount: maxResultCount,
		LocationRestriction: locationRestriction{Circle: circle{
			Center: latLng{Latitude: center.Latitude, Longitude: center.Longitude},
			Radius: radiusMeters,
		}},
	}

	resp, err := c.post(ctx, c.opts.NearbyURL, nearbyFieldMask, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "nearby search failed")
		return nil, err
	}

	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	places := make([]models.Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		if p.ID == "" {
			continue
		}
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		places = append(places, p.toModel())
	}

	span.SetAttributes(attribute.Int("places.result_count", len(places)))
	span.SetStatus(codes.Ok, "nearby search done")
	return places, nil
}

// SearchAttractionsByCity runs the city-wide attraction text search,
// following pagination until minCount visitable attractions are found
// or no pages remain.
func (c *Client) SearchAttractionsByCity(ctx context.Context, city string, minCount int) ([]models.Place, error) {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "SearchAttractionsByCity", trace.WithAttributes(
		attribute.String("places.city", city),
		attribute.Int("places.min_count", minCount),
	))
	defer span.End()

	cacheKey := fmt.Sprintf("%s|%d", city, minCount)
	if cached, found := c.attractions.Get(cacheKey); found {
		return cached, nil
	}

	l := c.logger.With(zap.String("method", "SearchAttractionsByCity"), zap.String("city", city))

	var filtered []models.Place
	pageToken := ""
	for {
		resp, err := c.post(ctx, c.opts.TextURL, textFieldMask, textSearchRequest{
			TextQuery: city + " tourist attraction",
			PageToken: pageToken,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "attraction search failed")
			return nil, err
		}

		for _, p := range resp.Places {
			if p.ID == "" || strings.Contains(p.DisplayName.Text, attractionExclusionMarker) {
				continue
			}
			filtered = append(filtered, p.toModel())
		}

		if len(filtered) >= minCount || resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken

		// The collaborator needs a moment before a page token becomes
		// valid.
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("attraction search cancelled: %w", ctx.Err())
		case <-time.After(c.opts.PageDelay):
		}
	}

	l.Debug("City attractions fetched", zap.Int("count", len(filtered)))
	c.attractions.Set(cacheKey, filtered)
	span.SetStatus(codes.Ok, "attraction search done")
	return filtered, nil
}

// post sends one search request and decodes the response. Transport
// failures and non-2xx statuses surface as ErrUpstream.
func (c *Client) post(ctx context.Context, url, fieldMask string, body interface{}) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding places request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	if m := metrics.Get(); m != nil {
		m.PlacesSearchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("url", url)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %v: %w", err, models.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("places API status %d: %s: %w", resp.StatusCode, string(snippet), models.ErrUpstream)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding places response: %v: %w", err, models.ErrUpstream)
	}
	return &decoded, nil
}
