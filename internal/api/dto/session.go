package dto

import "time"

type SessionResponse struct {
	ID string `json:"id"`
}

// Waypoint is either a coordinate pair or a free-form address.
type Waypoint struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Address string   `json:"address"`
}

type RouteRequest struct {
	Waypoints []Waypoint `json:"waypoints"`
}

type RouteAcceptedResponse struct {
	SessionID  string `json:"session_id"`
	Generation uint64 `json:"generation"`
}

type FixRequest struct {
	Lat       *float64   `json:"lat"`
	Lon       *float64   `json:"lon"`
	Accuracy  float64    `json:"accuracy"`
	Timestamp *time.Time `json:"timestamp"`
}

type GuidanceResponse struct {
	DistanceToNextMeters    float64 `json:"distance_to_next_m"`
	DistanceToNext          string  `json:"distance_to_next"`
	BearingToNext           float64 `json:"bearing_to_next_deg"`
	Direction               string  `json:"direction"`
	Instruction             string  `json:"instruction"`
	RemainingDistanceMeters float64 `json:"remaining_distance_m"`
	RemainingDistance       string  `json:"remaining_distance"`
	CurrentIndex            int     `json:"current_index"`
	Arrived                 bool    `json:"arrived"`
}
