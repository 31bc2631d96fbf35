package services

import (
	"errors"
	"fmt"
)

// RouteErrorKind classifies why a route request failed.
type RouteErrorKind int

const (
	InsufficientWaypoints RouteErrorKind = iota + 1
	RouteUnavailable
	RouteMalformed
)

func (k RouteErrorKind) String() string {
	switch k {
	case InsufficientWaypoints:
		return "insufficient waypoints"
	case RouteUnavailable:
		return "route unavailable"
	case RouteMalformed:
		return "route malformed"
	default:
		return fmt.Sprintf("route error kind %d", int(k))
	}
}

// Sentinels for errors.Is against a *RouteError of the matching kind.
var (
	ErrInsufficientWaypoints = &RouteError{Kind: InsufficientWaypoints}
	ErrRouteUnavailable      = &RouteError{Kind: RouteUnavailable}
	ErrRouteMalformed        = &RouteError{Kind: RouteMalformed}
)

// RouteError is the only error type returned by the route gateway.
type RouteError struct {
	Kind RouteErrorKind
	Err  error
}

func (e *RouteError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// Is matches any *RouteError with the same kind.
func (e *RouteError) Is(target error) bool {
	var re *RouteError
	if !errors.As(target, &re) {
		return false
	}
	return re.Kind == e.Kind
}
