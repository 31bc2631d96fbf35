package handlers

import (
	"net/http"
	"pedestrian-nav-service/internal/services"
)

// Subscriber attaches a live client connection to a session's events.
type Subscriber interface {
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string)
}

type StreamHandler struct {
	Store *services.SessionStore
	Hub   Subscriber
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.Store)
	if !ok {
		return
	}
	h.Hub.ServeWS(w, r, s.ID())
}
