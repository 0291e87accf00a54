package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/app/observability/metrics"
)

const (
	ingestDateLayout  = "2006-01-02"
	ingestBatchSize   = 50
	ingestConcurrency = 4
)

// calendarEvent is one entry of the city's open-data event calendar.
// lat/lng arrive as JSON numbers or numeric strings depending on the
// dataset revision, hence json.Number.
type calendarEvent struct {
	ID        string      `json:"id"`
	Cover     string      `json:"cover"`
	Title     string      `json:"title"`
	County    string      `json:"county"`
	Town      string      `json:"town"`
	Address   string      `json:"address"`
	Lat       json.Number `json:"lat"`
	Lng       json.Number `json:"lng"`
	DateBegin string      `json:"date_begin"`
	DateEnd   string      `json:"date_end"`
}

type calendarResponse struct {
	Data []calendarEvent `json:"data"`
}

// Ingester pulls the event calendar feed and upserts it into the
// events table in concurrent batches.
type Ingester struct {
	repo       Repository
	httpClient *http.Client
	feedURL    string
	country    string
	city       string
	logger     *zap.Logger
}

func NewIngester(repo Repository, feedURL, country, city string, timeout time.Duration, logger *zap.Logger) *Ingester {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Ingester{
		repo:       repo,
		httpClient: &http.Client{Timeout: timeout},
		feedURL:    feedURL,
		country:    country,
		city:       city,
		logger:     logger,
	}
}

// Ingest fetches the feed and stores its events, returning how many
// rows were written.
func (ing *Ingester) Ingest(ctx context.Context) (int, error) {
	l := ing.logger.With(zap.String("method", "Ingest"), zap.String("city", ing.city))

	feed, err := ing.fetchFeed(ctx)
	if err != nil {
		return 0, err
	}

	events := make([]models.Event, 0, len(feed))
	for _, raw := range feed {
		event, err := ing.convert(raw)
		if err != nil {
			l.Warn("Skipping malformed calendar entry", zap.String("id", raw.ID), zap.Error(err))
			continue
		}
		events = append(events, event)
	}

	// Batched upserts; the feed carries a few thousand entries.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	counts := make([]int, (len(events)+ingestBatchSize-1)/ingestBatchSize)
	for i := 0; i < len(events); i += ingestBatchSize {
		batchIdx := i / ingestBatchSize
		batch := events[i:min(i+ingestBatchSize, len(events))]
		g.Go(func() error {
			n, err := ing.repo.UpsertEvents(gctx, batch)
			if err != nil {
				return err
			}
			counts[batchIdx] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if m := metrics.Get(); m != nil {
		m.EventsIngestedTotal.Add(ctx, int64(total))
	}

	l.Info("Event calendar ingested", zap.Int("fetched", len(feed)), zap.Int("stored", total))
	return total, nil
}

func (ing *Ingester) fetchFeed(ctx context.Context) ([]calendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ing.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := ing.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching event calendar: %v: %w", err, models.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("event calendar status %d: %s: %w", resp.StatusCode, string(snippet), models.ErrUpstream)
	}

	var decoded calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding event calendar: %v: %w", err, models.ErrUpstream)
	}
	return decoded.Data, nil
}

func (ing *Ingester) convert(raw calendarEvent) (models.Event, error) {
	lat, err := raw.Lat.Float64()
	if err != nil {
		return models.Event{}, fmt.Errorf("latitude %q: %w", raw.Lat, err)
	}
	lng, err := raw.Lng.Float64()
	if err != nil {
		return models.Event{}, fmt.Errorf("longitude %q: %w", raw.Lng, err)
	}
	start, err := time.Parse(ingestDateLayout, raw.DateBegin)
	if err != nil {
		return models.Event{}, fmt.Errorf("start date %q: %w", raw.DateBegin, err)
	}
	end, err := time.Parse(ingestDateLayout, raw.DateEnd)
	if err != nil {
		return models.Event{}, fmt.Errorf("end date %q: %w", raw.DateEnd, err)
	}

	return models.Event{
		ID:        raw.ID,
		Country:   ing.country,
		City:      ing.city,
		Title:     raw.Title,
		ImageURL:  raw.Cover,
		Address:   raw.County + raw.Town + raw.Address,
		Location:  models.Coordinates{Latitude: lat, Longitude: lng},
		StartDate: start,
		EndDate:   end,
	}, nil
}
