package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/randytsao24/transitdash/internal/logging"
	"github.com/randytsao24/transitdash/internal/transit"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

// writeMissingParam answers a client input error
func writeMissingParam(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"message": message})
}

// writeUpstreamError maps an error from a transit service onto the proxy's
// error taxonomy. source names the upstream API in messages.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, source string, err error) {
	logger := logging.FromContext(r.Context())

	var (
		apiErr       *transit.UpstreamAPIError
		statusErr    *transit.UpstreamStatusError
		transportErr *transit.TransportError
	)

	switch {
	case errors.Is(err, transit.ErrMissingAPIKey):
		logger.Error("upstream credential not configured", slog.String("source", source))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "API key configuration error.",
		})

	case errors.As(err, &apiErr):
		logger.Warn("upstream returned an error", slog.String("source", source), slog.Any("errors", apiErr.Messages()))
		errs := apiErr.Errors
		if errs == nil {
			errs = []json.RawMessage{}
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": apiErr.Message,
			"errors":  errs,
		})

	case errors.As(err, &statusErr):
		writeJSON(w, statusErr.StatusCode, map[string]any{
			"message": "Error fetching data from " + source + ": " + statusErr.StatusText(),
		})

	case errors.As(err, &transportErr):
		logging.LogError(logger, "upstream unreachable", err, slog.String("source", source))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"message": "Error fetching data from " + source + ".",
			"error":   logging.Redact(transportErr.Err.Error()),
		})

	default:
		logging.LogError(logger, "error processing request", err, slog.String("source", source))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "An unexpected error occurred.",
			"error":   logging.Redact(err.Error()),
		})
	}
}
