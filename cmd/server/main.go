// Package main is the entry point for the transitdash proxy server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randytsao24/transitdash/internal/api"
	"github.com/randytsao24/transitdash/internal/config"
	"github.com/randytsao24/transitdash/internal/logging"
	"github.com/randytsao24/transitdash/internal/metrics"
	"github.com/randytsao24/transitdash/internal/transit"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg := config.Load()
	logger := logging.NewStructuredLogger(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, name := range cfg.MissingCredentials() {
		logger.Warn("credential not set; dependent routes will answer 500", slog.String("variable", name))
	}

	m := metrics.New()
	metra := transit.NewMetraService(cfg.MetraAPIToken, cfg.MetraBaseURL, cfg.HTTPTimeout, cfg.MetraCacheTTL, m)
	defer metra.Close()

	router := api.NewRouter(cfg, logger, api.Services{
		Bus:     transit.NewBusService(cfg.BusAPIKey, cfg.BusBaseURL, cfg.HTTPTimeout, m),
		Train:   transit.NewTrainService(cfg.TrainAPIKey, cfg.TrainBaseURL, cfg.HTTPTimeout, m),
		Metra:   metra,
		Metrics: m,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Env),
			slog.String("version", api.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
