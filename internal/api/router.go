package api

import (
	"net/http"
	"pedestrian-nav-service/internal/adapters/guidance"
	"pedestrian-nav-service/internal/api/handlers"
	"pedestrian-nav-service/internal/ports"
	"pedestrian-nav-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// geocoder may be nil, in which case address waypoints are rejected.
func NewRouter(store *services.SessionStore, geocoder ports.Geocoder, hub *guidance.Hub) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{Store: store}
	sessions := &handlers.SessionHandler{Store: store, Clients: hub}
	routes := &handlers.RouteHandler{Store: store, Geocoder: geocoder}
	fixes := &handlers.FixHandler{Store: store}
	stream := &handlers.StreamHandler{Store: store, Hub: hub}

	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("POST /sessions", sessions.Create)
	mux.HandleFunc("DELETE /sessions/{id}", sessions.Delete)
	mux.HandleFunc("POST /sessions/{id}/route", routes.Request)
	mux.HandleFunc("GET /sessions/{id}/route", routes.Get)
	mux.HandleFunc("DELETE /sessions/{id}/route", routes.Clear)
	mux.HandleFunc("POST /sessions/{id}/fixes", fixes.Update)
	mux.HandleFunc("GET /sessions/{id}/ws", stream.Stream)

	return requestIDMiddleware(loggingMiddleware(mux))
}
