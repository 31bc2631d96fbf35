package handlers

import (
	"net/http"
	"pedestrian-nav-service/internal/api/dto"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/services"
	"time"
)

type FixHandler struct {
	Store *services.SessionStore
}

// Update feeds one position fix to the session and returns the resulting
// guidance. 204 means the session has no active route.
func (h *FixHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.Store)
	if !ok {
		return
	}

	var req dto.FixRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	if !validCoord(*req.Lat, *req.Lon) {
		writeError(w, r, http.StatusBadRequest, "coordinates out of range")
		return
	}

	fix := domain.Fix{Lat: *req.Lat, Lon: *req.Lon, Accuracy: req.Accuracy, Timestamp: time.Now()}
	if req.Timestamp != nil {
		fix.Timestamp = *req.Timestamp
	}

	info, ok := s.Update(r.Context(), fix)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GuidanceResponse{
		DistanceToNextMeters:    info.DistanceToNext,
		DistanceToNext:          services.FormatDistance(info.DistanceToNext),
		BearingToNext:           info.BearingToNext,
		Direction:               string(info.Direction),
		Instruction:             info.Instruction,
		RemainingDistanceMeters: info.RemainingDistance,
		RemainingDistance:       services.FormatDistance(info.RemainingDistance),
		CurrentIndex:            info.CurrentIndex,
		Arrived:                 info.Arrived,
	})
}
