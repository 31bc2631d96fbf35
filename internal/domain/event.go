package domain

import "time"

type EventType string

const (
	EventRouteInstalled EventType = "route_installed"
	EventRouteFailed    EventType = "route_failed"
	EventRouteCleared   EventType = "route_cleared"
	EventGuidance       EventType = "guidance"
	EventSpeak          EventType = "speak"
)

// Notification emitted by a navigation session for live clients.
type SessionEvent struct {
	Type       EventType
	SessionID  string
	Generation uint64
	Info       *NavigationInfo
	Text       string
	Error      string
	At         time.Time
}
