package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/services"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeBody decodes exactly one JSON object with no unknown fields. On
// failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// lookupSession resolves the {id} path value or writes a 404.
func lookupSession(w http.ResponseWriter, r *http.Request, store *services.SessionStore) (*services.NavigationSession, bool) {
	s, err := store.Get(r.PathValue("id"))
	if errors.Is(err, services.ErrSessionNotFound) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return s, true
}

func validCoord(lat, lon float64) bool {
	return domain.GeoPoint{Lat: lat, Lon: lon}.Valid()
}
