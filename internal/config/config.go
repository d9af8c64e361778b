// Package config collects the environment configuration in one place.
package config

import (
	"os"
	"strconv"
)

const defaultMonthlyBudget = 250

// Config holds everything read from the environment. Empty API keys
// disable the corresponding provider rather than failing startup.
type Config struct {
	ProjectID           string
	FirestoreDatabaseID string

	SeatGeekClientID string
	SerpAPIKey       string
	GoogleMapsAPIKey string

	SerpAPIMonthlyBudget int

	CORSAllowedOrigin string
	AppEnv            string
	Port              string
}

// Load reads the process environment. It never fails; missing optional
// values fall back to sensible defaults.
func Load() Config {
	return Config{
		ProjectID:            os.Getenv("GOOGLE_CLOUD_PROJECT"),
		FirestoreDatabaseID:  getenvDefault("FIRESTORE_DATABASE_ID", "(default)"),
		SeatGeekClientID:     os.Getenv("SEATGEEK_CLIENT_ID"),
		SerpAPIKey:           os.Getenv("SERPAPI_API_KEY"),
		GoogleMapsAPIKey:     os.Getenv("GOOGLE_MAPS_API_KEY"),
		SerpAPIMonthlyBudget: getenvInt("SERPAPI_MONTHLY_BUDGET", defaultMonthlyBudget),
		CORSAllowedOrigin:    getenvDefault("CORS_ALLOWED_ORIGIN", "*"),
		AppEnv:               getenvDefault("APP_ENV", "development"),
		Port:                 getenvDefault("PORT", "8080"),
	}
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
