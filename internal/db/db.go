package db

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/pkg/config"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations applies any pending goose migrations against the pool's
// underlying database.
func RunMigrations(pool *pgxpool.Pool, logger *zap.Logger) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close migration db handle", zap.Error(err))
		}
	}()

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations applied")
	return nil
}

// WaitForDB blocks until the database answers a ping or the retry budget
// runs out.
func WaitForDB(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	const (
		maxAttempts = 10
		retryDelay  = 2 * time.Second
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := pool.Ping(pingCtx)
		cancel()
		if err == nil {
			logger.Info("Database is reachable", zap.Int("attempt", attempt))
			return nil
		}

		logger.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("database did not become ready after %d attempts", maxAttempts)
}

// NewDatabaseConfig assembles a postgres connection URL from configuration.
func NewDatabaseConfig(cfg *config.Config) (string, error) {
	pg := cfg.Repositories.Postgres
	if pg.Host == "" || pg.DB == "" || pg.Username == "" {
		return "", fmt.Errorf("incomplete postgres configuration")
	}

	query := url.Values{}
	query.Set("sslmode", pg.SSLMode)
	query.Set("timezone", "utc")

	connURL := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(pg.Username, pg.Password),
		Host:     fmt.Sprintf("%s:%s", pg.Host, pg.Port),
		Path:     pg.DB,
		RawQuery: query.Encode(),
	}

	return connURL.String(), nil
}

// Init parses the connection URL and opens a pgx pool.
func Init(connectionURL string, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pg := cfg.Repositories.Postgres
	poolConfig.MaxConns = pg.MaxConns
	poolConfig.MinConns = pg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return pool, nil
}
