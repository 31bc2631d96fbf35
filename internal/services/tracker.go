package services

import (
	"pedestrian-nav-service/internal/domain"
)

// Distance within which a route point counts as reached; the cursor then
// targets the point after it.
const AdvanceThresholdMeters = 10.0

// ProgressTracker follows a traveler along a route polyline.
//
// It keeps a forward-only cursor into the active route: Update only ever
// searches from the cursor onward, so GPS noise near an already-passed point
// cannot rewind progress. SetRoute is the only way the cursor goes back to 0.
//
// The tracker holds no lock. Callers must serialise SetRoute, Update and Clear
// on one instance (see NavigationSession).
type ProgressTracker struct {
	route        *domain.Route
	currentIndex int
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// Install a route and reset the progress cursor.
func (t *ProgressTracker) SetRoute(route *domain.Route) {
	t.route = route
	t.currentIndex = 0
}

// Drop the active route; Update reports no guidance until the next SetRoute.
func (t *ProgressTracker) Clear() {
	t.route = nil
	t.currentIndex = 0
}

// Route returns the active route, or nil.
func (t *ProgressTracker) Route() *domain.Route { return t.route }

func (t *ProgressTracker) CurrentIndex() int { return t.currentIndex }

// Active reports whether a non-empty route is installed.
func (t *ProgressTracker) Active() bool { return t.route.Len() > 0 }

// Update consumes one position fix and returns fresh guidance toward the next
// route point. ok is false when no route (or an empty one) is installed, or
// when the fix is not a finite WGS84 coordinate; such a fix leaves the
// cursor where it was.
//
// Remaining distance is summed over the rest of the polyline on every call.
// That is linear in route length per fix, which pedestrian routes keep small;
// a prefix-sum table rebuilt in SetRoute would make it constant.
func (t *ProgressTracker) Update(fix domain.GeoPoint) (info domain.NavigationInfo, ok bool) {
	n := t.route.Len()
	if n == 0 || !fix.Valid() {
		return domain.NavigationInfo{}, false
	}

	points := t.route.Points
	last := n - 1

	nearestIndex := t.currentIndex
	minDistance := domain.Haversine(fix, points[nearestIndex])
	for i := t.currentIndex + 1; i <= last; i++ {
		if d := domain.Haversine(fix, points[i]); d < minDistance {
			minDistance = d
			nearestIndex = i
		}
	}

	if minDistance < AdvanceThresholdMeters && nearestIndex != last {
		t.currentIndex = nearestIndex + 1
	} else {
		t.currentIndex = nearestIndex
	}

	target := points[t.currentIndex]
	distance := domain.Haversine(fix, target)
	bearing := domain.InitialBearing(fix, target)
	instr := Synthesize(bearing, distance)

	return domain.NavigationInfo{
		DistanceToNext:    distance,
		BearingToNext:     bearing,
		Direction:         instr.Direction,
		Instruction:       instr.Text,
		RemainingDistance: t.route.LengthFrom(t.currentIndex),
		CurrentIndex:      t.currentIndex,
		Arrived:           t.currentIndex == last && distance < AdvanceThresholdMeters,
	}, true
}
