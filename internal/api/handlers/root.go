package handlers

import (
	"net/http"
)

type RootHandler struct {
	version string
}

func NewRootHandler(version string) *RootHandler {
	return &RootHandler{version: version}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "transitdash",
		"description": "Live CTA bus, CTA train and Metra arrivals for Chicago",
		"version":     h.version,
		"endpoints": map[string]string{
			"GET /api":                                 "API information",
			"GET /health":                              "Health check",
			"GET /metrics":                             "Prometheus metrics",
			"GET /bus?action=routes":                   "Bus routes",
			"GET /bus?action=directions&rt=":           "Directions for a route",
			"GET /bus?action=stops&rt=&dir=":           "Stops for a route and direction",
			"GET /bus?action=predictions&stpid=[&rt=]": "Predictions for a stop",
			"GET /bus?action=vehicles&rt=":             "Live vehicles on a route",
			"GET /train?mapid=[&rt=]":                  "Train arrivals for a station",
			"GET /metra?stop=[&route=]":                "Metra arrivals for a stop",
			"GET /alerts[?routes=]":                    "Active Metra service alerts",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"message": "Route not found. Check /api for available routes.",
	})
}
