package handlers

import (
	"net/http"
	"pedestrian-nav-service/internal/services"
)

type HealthHandler struct {
	Store *services.SessionStore
}

// Health is a liveness check that also reports the number of live sessions.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.Store.Len(),
	})
}
