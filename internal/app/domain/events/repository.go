// Package events persists and serves the dated city events pool: the
// repository backs the scheduler's event queries, the ingester keeps
// the table fed from the city's open-data calendar.
package events

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/app/observability/metrics"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the events persistence contract.
type Repository interface {
	// FetchEventsForCity returns the city's events overlapping
	// [start, end].
	FetchEventsForCity(ctx context.Context, city string, start, end time.Time) ([]models.Event, error)
	// UpsertEvents inserts or refreshes events, keyed by (city, id).
	UpsertEvents(ctx context.Context, events []models.Event) (int, error)
}

// pgxDB is the pgxpool.Pool subset the repository uses; pgxmock pools
// satisfy it in tests.
type pgxDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	pgpool pgxDB
	logger *zap.Logger
}

func NewRepositoryImpl(pgpool pgxDB, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{pgpool: pgpool, logger: logger}
}

// FetchEventsForCity implements Repository. An event overlaps the trip
// when it starts before the trip ends and ends on or after the trip
// start.
func (r *RepositoryImpl) FetchEventsForCity(ctx context.Context, city string, start, end time.Time) ([]models.Event, error) {
	ctx, span := otel.Tracer("EventsRepo").Start(ctx, "FetchEventsForCity", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "events"),
		attribute.String("event.city", city),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "FetchEventsForCity"), zap.String("city", city))

	query, args, err := sq.Select("id", "country", "city", "title", "img", "address", "lat", "lng", "start_date", "end_date").
		From("events").
		Where(sq.Eq{"city": city}).
		Where(sq.Lt{"start_date": end}).
		Where(sq.GtOrEq{"end_date": start}).
		OrderBy("start_date", "id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building events query: %w", err)
	}

	started := time.Now()
	rows, err := r.pgpool.Query(ctx, query, args...)
	if m := metrics.Get(); m != nil {
		m.DBQueryDurationSeconds.Record(ctx, time.Since(started).Seconds())
	}
	if err != nil {
		l.Error("Failed to query events", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "events query failed")
		if m := metrics.Get(); m != nil {
			m.DBQueryErrorsTotal.Add(ctx, 1)
		}
		return nil, fmt.Errorf("querying events for %s: %w", city, models.ErrUpstream)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Country, &e.City, &e.Title, &e.ImageURL, &e.Address,
			&e.Location.Latitude, &e.Location.Longitude, &e.StartDate, &e.EndDate); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reading events: %w", models.ErrUpstream)
	}

	l.Debug("Events fetched", zap.Int("count", len(events)))
	span.SetStatus(codes.Ok, "events fetched")
	return events, nil
}

// UpsertEvents implements Repository.
func (r *RepositoryImpl) UpsertEvents(ctx context.Context, events []models.Event) (int, error) {
	ctx, span := otel.Tracer("EventsRepo").Start(ctx, "UpsertEvents", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "events"),
		attribute.Int("event.count", len(events)),
	))
	defer span.End()

	if len(events) == 0 {
		return 0, nil
	}

	builder := sq.Insert("events").
		Columns("id", "country", "city", "title", "img", "address", "lat", "lng", "start_date", "end_date").
		PlaceholderFormat(sq.Dollar).
		Suffix(`ON CONFLICT (city, id) DO UPDATE SET
			title = EXCLUDED.title,
			img = EXCLUDED.img,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date`)
	for _, e := range events {
		builder = builder.Values(e.ID, e.Country, e.City, e.Title, e.ImageURL, e.Address,
			e.Location.Latitude, e.Location.Longitude, e.StartDate, e.EndDate)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building events upsert: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to upsert events", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "events upsert failed")
		if m := metrics.Get(); m != nil {
			m.DBQueryErrorsTotal.Add(ctx, 1)
		}
		return 0, fmt.Errorf("upserting events: %w", models.ErrUpstream)
	}

	span.SetStatus(codes.Ok, "events upserted")
	return int(tag.RowsAffected()), nil
}
