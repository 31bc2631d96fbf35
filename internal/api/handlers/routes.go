package handlers

import (
	"fmt"
	"log"
	"net/http"
	"pedestrian-nav-service/internal/api/dto"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/ports"
	"pedestrian-nav-service/internal/services"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type RouteHandler struct {
	Store *services.SessionStore
	// Geocoder resolves address waypoints. Optional; without it only
	// coordinate waypoints are accepted.
	Geocoder ports.Geocoder
}

// Request starts an asynchronous route request for the session. The
// response carries the request generation; the outcome arrives on the
// session's websocket stream.
func (h *RouteHandler) Request(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.Store)
	if !ok {
		return
	}

	var req dto.RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.Waypoints) < 2 {
		writeError(w, r, http.StatusBadRequest, services.ErrInsufficientWaypoints.Error())
		return
	}

	waypoints, status, err := h.resolve(r, req.Waypoints)
	if err != nil {
		writeError(w, r, status, err.Error())
		return
	}

	gen, _ := s.RequestRoute(waypoints)
	log.Printf("route requested session=%s gen=%d waypoints=%d", s.ID(), gen, len(waypoints))

	writeJSON(w, r, http.StatusAccepted, dto.RouteAcceptedResponse{SessionID: s.ID(), Generation: gen})
}

// resolve turns request waypoints into coordinates, geocoding addresses in
// one batch. The returned status applies when err is non-nil.
func (h *RouteHandler) resolve(r *http.Request, in []dto.Waypoint) ([]domain.GeoPoint, int, error) {
	var addresses []string
	for i, wp := range in {
		switch {
		case wp.Lat != nil && wp.Lon != nil:
			if !validCoord(*wp.Lat, *wp.Lon) {
				return nil, http.StatusBadRequest, fmt.Errorf("waypoint %d: coordinates out of range", i)
			}
		case strings.TrimSpace(wp.Address) != "":
			addresses = append(addresses, wp.Address)
		default:
			return nil, http.StatusBadRequest, fmt.Errorf("waypoint %d: lat/lon or address is required", i)
		}
	}

	var coords map[string]domain.GeoPoint
	if len(addresses) > 0 {
		if h.Geocoder == nil {
			return nil, http.StatusBadRequest, fmt.Errorf("address waypoints are not supported")
		}
		var err error
		coords, err = h.Geocoder.Geocode(r.Context(), addresses)
		if err != nil {
			log.Printf("geocode failed: %v", err)
			return nil, http.StatusBadGateway, fmt.Errorf("geocoding failed")
		}
	}

	out := make([]domain.GeoPoint, 0, len(in))
	for i, wp := range in {
		if wp.Lat != nil && wp.Lon != nil {
			out = append(out, domain.GeoPoint{Lat: *wp.Lat, Lon: *wp.Lon})
			continue
		}
		p, ok := coords[domain.NormalizeAddress(wp.Address)]
		if !ok {
			return nil, http.StatusUnprocessableEntity, fmt.Errorf("waypoint %d: address not found", i)
		}
		out = append(out, p)
	}
	return out, 0, nil
}

// Get returns the active route as a GeoJSON LineString feature, or 204.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.Store)
	if !ok {
		return
	}

	route := s.Route()
	if route.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, r, http.StatusOK, routeFeature(route))
}

func (h *RouteHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.Store)
	if !ok {
		return
	}
	s.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func routeFeature(route *domain.Route) *geojson.Feature {
	line := make(orb.LineString, 0, len(route.Points))
	for _, p := range route.Points {
		line = append(line, orb.Point{p.Lon, p.Lat})
	}

	f := geojson.NewFeature(line)
	f.Properties["length_m"] = route.LengthMeters
	f.Properties["duration_s"] = route.DurationSeconds
	f.Properties["points"] = len(route.Points)
	return f
}
