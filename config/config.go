// Package config loads service configuration from the environment, with an
// optional .env file for local development. Every field has a usable
// default so `go run ./cmd/server` works with an empty environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the rota service.
type AppConfig struct {
	Addr        string        // HTTP listen address
	DBPath      string        // SQLite path; ":memory:" allowed
	LogLevel    string        // logrus level name
	Environment string        // "development" | "staging" | "production"
	WeekStart   time.Weekday  // first day of the calendar week
	CORSOrigins []string      // allowed origins for the rota UI
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load reads configuration from environment variables and a .env file if
// present. godotenv never overrides variables already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Addr:        ":8080",
		DBPath:      "rota.db",
		LogLevel:    "info",
		Environment: "development",
		WeekStart:   time.Monday,
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := strings.ToLower(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(os.Getenv("ENVIRONMENT")); v != "" {
		cfg.Environment = v
	}
	if v := strings.ToLower(os.Getenv("WEEK_START")); v != "" {
		wd, ok := weekdayNames[v]
		if !ok {
			return nil, fmt.Errorf("invalid WEEK_START %q (want a weekday name)", v)
		}
		cfg.WeekStart = wd
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg, nil
}
