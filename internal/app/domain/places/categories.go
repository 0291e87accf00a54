package places

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/app/observability/metrics"
)

// TypeCatalogue resolves main categories to the collaborator's concrete
// place types (the "includedTypes" of a nearby search).
type TypeCatalogue interface {
	IncludedTypes(ctx context.Context, mainCategories []string, subCategory string) ([]string, error)
}

// queryRower is the subset of pgxpool.Pool the catalogue needs; it is
// also satisfied by pgxmock pools in tests.
type queryRower interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ TypeCatalogue = (*TypeRepository)(nil)

// TypeRepository reads the place-type catalogue from the place_types
// table, memoizing lookups since the catalogue changes rarely.
type TypeRepository struct {
	pgpool queryRower
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewTypeRepository(pgpool queryRower, logger *zap.Logger) *TypeRepository {
	return &TypeRepository{
		pgpool: pgpool,
		cache:  gocache.New(30*time.Minute, 10*time.Minute),
		logger: logger,
	}
}

// IncludedTypes returns the active sub_type values for the given main
// categories, optionally narrowed to one sub category.
func (r *TypeRepository) IncludedTypes(ctx context.Context, mainCategories []string, subCategory string) ([]string, error) {
	ctx, span := otel.Tracer("PlacesRepo").Start(ctx, "IncludedTypes", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "place_types"),
		attribute.StringSlice("place.main_categories", mainCategories),
	))
	defer span.End()

	cacheKey := strings.Join(mainCategories, ",") + "|" + subCategory
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.([]string), nil
	}

	l := r.logger.With(zap.String("method", "IncludedTypes"), zap.Strings("mainCategories", mainCategories))

	builder := sq.Select("sub_type").
		From("place_types").
		Where(sq.Eq{"main_category": mainCategories, "used": true}).
		OrderBy("sub_type").
		PlaceholderFormat(sq.Dollar)
	if subCategory != "" {
		builder = builder.Where(sq.Eq{"sub_type": subCategory})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building place_types query: %w", err)
	}

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, args...)
	if m := metrics.Get(); m != nil {
		m.DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		l.Error("Failed to query place types", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "place_types query failed")
		if m := metrics.Get(); m != nil {
			m.DBQueryErrorsTotal.Add(ctx, 1)
		}
		return nil, fmt.Errorf("querying place types: %w", models.ErrUpstream)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var subType string
		if err := rows.Scan(&subType); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scanning place type: %w", err)
		}
		types = append(types, subType)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reading place types: %w", models.ErrUpstream)
	}

	r.cache.Set(cacheKey, types, gocache.DefaultExpiration)
	span.SetStatus(codes.Ok, "place types resolved")
	return types, nil
}
