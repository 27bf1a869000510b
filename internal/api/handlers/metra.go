package handlers

import (
	"net/http"
	"strings"
)

type MetraHandler struct {
	metra MetraProvider
}

func NewMetraHandler(metra MetraProvider) *MetraHandler {
	return &MetraHandler{metra: metra}
}

// Arrivals handles GET /metra?stop=<stop_id>[&route=<route_id>]
func (h *MetraHandler) Arrivals(w http.ResponseWriter, r *http.Request) {
	stopID := r.URL.Query().Get("stop")
	if stopID == "" {
		writeMissingParam(w, "Missing 'stop' (stop ID) query parameter.")
		return
	}

	arrivals, err := h.metra.Arrivals(r.Context(), stopID, r.URL.Query().Get("route"))
	if err != nil {
		writeUpstreamError(w, r, "Metra API", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"arrivals": arrivals,
		"count":    len(arrivals),
	})
}

// Alerts handles GET /alerts[?routes=UP-N,BNSF]
func (h *MetraHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	var routes []string
	if param := r.URL.Query().Get("routes"); param != "" {
		for _, route := range strings.Split(param, ",") {
			if route = strings.TrimSpace(route); route != "" {
				routes = append(routes, route)
			}
		}
	}

	alerts, err := h.metra.Alerts(r.Context(), routes)
	if err != nil {
		writeUpstreamError(w, r, "Metra API", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
