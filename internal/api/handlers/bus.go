package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// busParam is a query parameter an action cannot run without
type busParam struct {
	name        string
	description string
}

var (
	paramRoute     = busParam{"rt", "route ID"}
	paramDirection = busParam{"dir", "direction"}
	paramStop      = busParam{"stpid", "stop ID"}
)

type busAction struct {
	required []busParam
	fetch    func(ctx context.Context, bus BusProvider, q func(string) string) (json.RawMessage, error)
}

var busActions = map[string]busAction{
	"routes": {
		fetch: func(ctx context.Context, bus BusProvider, q func(string) string) (json.RawMessage, error) {
			return bus.Routes(ctx)
		},
	},
	"directions": {
		required: []busParam{paramRoute},
		fetch: func(ctx context.Context, bus BusProvider, q func(string) string) (json.RawMessage, error) {
			return bus.Directions(ctx, q("rt"))
		},
	},
	"stops": {
		required: []busParam{paramRoute, paramDirection},
		fetch: func(ctx context.Context, bus BusProvider, q func(string) string) (json.RawMessage, error) {
			return bus.Stops(ctx, q("rt"), q("dir"))
		},
	},
	"predictions": {
		required: []busParam{paramStop},
		fetch: func(ctx context.Context, bus BusProvider, q func(string) string) (json.RawMessage, error) {
			return bus.Predictions(ctx, q("stpid"), q("rt"))
		},
	},
	"vehicles": {
		required: []busParam{paramRoute},
		fetch: func(ctx context.Context, bus BusProvider, q func(string) string) (json.RawMessage, error) {
			return bus.Vehicles(ctx, q("rt"))
		},
	},
}

type BusHandler struct {
	bus BusProvider
}

func NewBusHandler(bus BusProvider) *BusHandler {
	return &BusHandler{bus: bus}
}

// Proxy dispatches GET /bus?action=... to the matching Bus Tracker call
func (h *BusHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	action, ok := busActions[query.Get("action")]
	if !ok {
		writeMissingParam(w, "Invalid or missing 'action' parameter. Expected one of routes, directions, stops, predictions, vehicles.")
		return
	}

	for _, p := range action.required {
		if query.Get(p.name) == "" {
			writeMissingParam(w, "Missing '"+p.name+"' ("+p.description+") query parameter.")
			return
		}
	}

	body, err := action.fetch(r.Context(), h.bus, query.Get)
	if err != nil {
		writeUpstreamError(w, r, "CTA API", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, body)
}
