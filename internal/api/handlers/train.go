package handlers

import "net/http"

type TrainHandler struct {
	train TrainProvider
}

func NewTrainHandler(train TrainProvider) *TrainHandler {
	return &TrainHandler{train: train}
}

// Arrivals handles GET /train?mapid=<id>[&rt=<code>]
func (h *TrainHandler) Arrivals(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("mapid")
	if stationID == "" {
		writeMissingParam(w, "Missing 'mapid' (station ID) query parameter.")
		return
	}

	result, err := h.train.Arrivals(r.Context(), stationID, r.URL.Query().Get("rt"))
	if err != nil {
		writeUpstreamError(w, r, "CTA Train Tracker API", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, result)
}
