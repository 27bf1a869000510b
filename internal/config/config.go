// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultBusBaseURL   = "http://www.ctabustracker.com/bustime/api/v2"
	DefaultTrainBaseURL = "http://lapi.transitchicago.com/api/1.0"
	DefaultMetraBaseURL = "https://gtfspublic.metrarr.com/gtfs/public"
)

// Config holds all application configuration.
type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string `validate:"oneof=development staging production test"`
	LogLevel string `validate:"oneof=debug info warn error"`

	// Credentials are optional at startup; a missing key fails only the
	// routes that need it.
	BusAPIKey     string
	TrainAPIKey   string
	MetraAPIToken string

	BusBaseURL   string `validate:"required,url"`
	TrainBaseURL string `validate:"required,url"`
	MetraBaseURL string `validate:"required,url"`

	HTTPTimeout   time.Duration `validate:"gt=0"`
	MetraCacheTTL time.Duration `validate:"gt=0"`
}

// LoadDotEnv loads variables from a .env file if one exists. Variables
// already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		BusAPIKey:     getEnv("CTA_BUS_API_KEY", ""),
		TrainAPIKey:   getEnv("CTA_TRAIN_API_KEY", ""),
		MetraAPIToken: getEnv("METRA_API_TOKEN", ""),
		BusBaseURL:    getEnv("BUS_API_BASE_URL", DefaultBusBaseURL),
		TrainBaseURL:  getEnv("TRAIN_API_BASE_URL", DefaultTrainBaseURL),
		MetraBaseURL:  getEnv("METRA_FEED_BASE_URL", DefaultMetraBaseURL),
		HTTPTimeout:   getSecondsEnv("HTTP_TIMEOUT_SECONDS", 10),
		MetraCacheTTL: getSecondsEnv("METRA_CACHE_TTL_SECONDS", 30),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that configuration values are well formed.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MissingCredentials lists the credential variables that are not set.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.BusAPIKey == "" {
		missing = append(missing, "CTA_BUS_API_KEY")
	}
	if c.TrainAPIKey == "" {
		missing = append(missing, "CTA_TRAIN_API_KEY")
	}
	if c.MetraAPIToken == "" {
		missing = append(missing, "METRA_API_TOKEN")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
