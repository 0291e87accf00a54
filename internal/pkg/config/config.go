package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type GoogleMapsConfig struct {
	APIKey    string
	NearbyURL string
	TextURL   string
	Timeout   time.Duration
}

type EventsFeedConfig struct {
	URL     string
	Country string
	City    string
	Timeout time.Duration
}

type SchedulerConfig struct {
	// RestaurantDenylist holds name substrings that disqualify a
	// restaurant from recommendation, comma separated in the
	// RESTAURANT_DENYLIST env var.
	RestaurantDenylist []string
}

type Config struct {
	Repositories RepositoriesConfig
	GoogleMaps   GoogleMapsConfig
	EventsFeed   EventsFeedConfig
	Scheduler    SchedulerConfig
	ServerPort   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "travel_planner"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		GoogleMaps: GoogleMapsConfig{
			APIKey:    getEnvOrDefault("GOOGLE_MAPS_API_KEY", ""),
			NearbyURL: getEnvOrDefault("GOOGLE_MAPS_NEARBY_URL", ""),
			TextURL:   getEnvOrDefault("GOOGLE_MAPS_TEXT_URL", ""),
			Timeout:   10 * time.Second,
		},
		EventsFeed: EventsFeedConfig{
			URL:     getEnvOrDefault("EVENTS_FEED_URL", "https://www.travel.taipei/api/json/data/2025-eventCalendar_zh-tw.json"),
			Country: getEnvOrDefault("EVENTS_FEED_COUNTRY", "Taiwan"),
			City:    getEnvOrDefault("EVENTS_FEED_CITY", "Taipei"),
			Timeout: 30 * time.Second,
		},
		Scheduler: SchedulerConfig{
			RestaurantDenylist: splitNonEmpty(getEnvOrDefault("RESTAURANT_DENYLIST", "月子餐")),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.GoogleMaps.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
