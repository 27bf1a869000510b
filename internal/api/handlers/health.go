// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	startTime   time.Time
	version     string
	credentials func() []string
}

// NewHealthHandler reports missing upstream credentials so operators can
// see which routes will fail with a configuration error.
func NewHealthHandler(version string, missingCredentials func() []string) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), version: version, credentials: missingCredentials}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	missing := []string{}
	if h.credentials != nil {
		missing = append(missing, h.credentials()...)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "OK",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"version":             h.version,
		"uptime":              time.Since(h.startTime).String(),
		"missing_credentials": missing,
	})
}
