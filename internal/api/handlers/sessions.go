package handlers

import (
	"log"
	"net/http"
	"pedestrian-nav-service/internal/api/dto"
	"pedestrian-nav-service/internal/services"
)

// Disconnector drops live clients of a session when it is deleted.
type Disconnector interface {
	Disconnect(sessionID string)
}

type SessionHandler struct {
	Store   *services.SessionStore
	Clients Disconnector
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Store.Create()
	log.Printf("session created id=%s active=%d", s.ID(), h.Store.Len())
	writeJSON(w, r, http.StatusCreated, dto.SessionResponse{ID: s.ID()})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Store.Delete(id); err != nil {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	if h.Clients != nil {
		h.Clients.Disconnect(id)
	}
	w.WriteHeader(http.StatusNoContent)
}
