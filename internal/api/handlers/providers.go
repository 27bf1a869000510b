package handlers

import (
	"context"
	"encoding/json"

	"github.com/randytsao24/transitdash/internal/models"
	"github.com/randytsao24/transitdash/internal/transit"
)

// BusProvider abstracts the CTA Bus Tracker proxy for testability.
// Each method returns the bustime-response body unchanged.
type BusProvider interface {
	Routes(ctx context.Context) (json.RawMessage, error)
	Directions(ctx context.Context, route string) (json.RawMessage, error)
	Stops(ctx context.Context, route, direction string) (json.RawMessage, error)
	Predictions(ctx context.Context, stopID, route string) (json.RawMessage, error)
	Vehicles(ctx context.Context, route string) (json.RawMessage, error)
}

// TrainProvider abstracts the CTA Train Tracker proxy.
type TrainProvider interface {
	Arrivals(ctx context.Context, stationID, route string) (*transit.TrainArrivals, error)
}

// MetraProvider abstracts the Metra GTFS-realtime feeds.
type MetraProvider interface {
	Arrivals(ctx context.Context, stopID, routeID string) ([]models.MetraArrival, error)
	Alerts(ctx context.Context, routes []string) ([]models.ServiceAlert, error)
}
