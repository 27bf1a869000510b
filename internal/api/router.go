package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/randytsao24/transitdash/internal/api/handlers"
	"github.com/randytsao24/transitdash/internal/config"
	"github.com/randytsao24/transitdash/internal/metrics"
)

// Version is reported by /health and /api
const Version = "1.0.0"

// Services bundles the upstream providers the router serves
type Services struct {
	Bus     handlers.BusProvider
	Train   handlers.TrainProvider
	Metra   handlers.MetraProvider
	Metrics *metrics.Metrics
}

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(cfg *config.Config, logger *slog.Logger, svc Services) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(Logging(logger))
	router.Use(Recovery)
	router.Use(CORS)
	router.Use(Compression(1024))

	timeout := 15 * time.Second
	if cfg.HTTPTimeout > 0 {
		timeout = cfg.HTTPTimeout + 5*time.Second
	}

	healthHandler := handlers.NewHealthHandler(Version, cfg.MissingCredentials)
	rootHandler := handlers.NewRootHandler(Version)
	busHandler := handlers.NewBusHandler(svc.Bus)
	trainHandler := handlers.NewTrainHandler(svc.Train)
	metraHandler := handlers.NewMetraHandler(svc.Metra)

	router.Get("/", rootHandler.Index)
	router.Get("/api", rootHandler.Index)
	router.Get("/health", healthHandler.Health)
	if svc.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", svc.Metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(Timeout(timeout))
		r.Get("/bus", busHandler.Proxy)
		r.Get("/train", trainHandler.Arrivals)
		r.Get("/metra", metraHandler.Arrivals)
		r.Get("/alerts", metraHandler.Alerts)
	})

	router.NotFound(rootHandler.NotFound)

	return router
}
