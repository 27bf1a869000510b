package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "CTA_BUS_API_KEY", "CTA_TRAIN_API_KEY",
		"METRA_API_TOKEN", "BUS_API_BASE_URL", "TRAIN_API_BASE_URL", "METRA_FEED_BASE_URL",
		"HTTP_TIMEOUT_SECONDS", "METRA_CACHE_TTL_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DefaultBusBaseURL, cfg.BusBaseURL)
	assert.Equal(t, DefaultTrainBaseURL, cfg.TrainBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.MetraCacheTTL)
	assert.ElementsMatch(t, []string{"CTA_BUS_API_KEY", "CTA_TRAIN_API_KEY", "METRA_API_TOKEN"}, cfg.MissingCredentials())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CTA_BUS_API_KEY", "bus-key")
	t.Setenv("CTA_TRAIN_API_KEY", "train-key")
	t.Setenv("METRA_API_TOKEN", "metra-token")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("METRA_CACHE_TTL_SECONDS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.MetraCacheTTL, "invalid value falls back to default")
	assert.Empty(t, cfg.MissingCredentials())
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }},
		{"unknown env", func(c *Config) { c.Env = "qa" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad bus url", func(c *Config) { c.BusBaseURL = "not a url" }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:          "3000",
				Env:           "test",
				LogLevel:      "info",
				BusBaseURL:    DefaultBusBaseURL,
				TrainBaseURL:  DefaultTrainBaseURL,
				MetraBaseURL:  DefaultMetraBaseURL,
				HTTPTimeout:   time.Second,
				MetraCacheTTL: time.Second,
			}
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("reads variables from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("TRANSITDASH_DOTENV_PROBE=from-file\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("TRANSITDASH_DOTENV_PROBE") })

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv("TRANSITDASH_DOTENV_PROBE"))
	})
}
