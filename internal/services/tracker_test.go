package services

import (
	"math"
	"math/rand"
	"pedestrian-nav-service/internal/domain"
	"testing"
)

// northRoute returns n points spaced 0.001 degrees (about 111 m) apart,
// heading due north from (37, 127).
func northRoute(n int) *domain.Route {
	pts := make([]domain.GeoPoint, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, domain.GeoPoint{Lat: 37.0 + float64(i)*0.001, Lon: 127.0})
	}
	return &domain.Route{Points: pts}
}

func TestTrackerNoActiveRoute(t *testing.T) {
	tr := NewProgressTracker()
	if _, ok := tr.Update(domain.GeoPoint{Lat: 37, Lon: 127}); ok {
		t.Fatalf("update without route should report no guidance")
	}

	tr.SetRoute(&domain.Route{})
	if _, ok := tr.Update(domain.GeoPoint{Lat: 37, Lon: 127}); ok {
		t.Fatalf("update with empty route should report no guidance")
	}
}

func TestTrackerDueNorthFromFirstPoint(t *testing.T) {
	tr := NewProgressTracker()
	tr.SetRoute(&domain.Route{Points: []domain.GeoPoint{
		{Lat: 37.0000, Lon: 127.0000},
		{Lat: 37.0010, Lon: 127.0000},
	}})

	info, ok := tr.Update(domain.GeoPoint{Lat: 37.0000, Lon: 127.0000})
	if !ok {
		t.Fatalf("expected guidance")
	}

	// The fix sits on point 0, so the cursor advances to point 1.
	if info.CurrentIndex != 1 {
		t.Fatalf("current index = %d, want 1", info.CurrentIndex)
	}
	if info.BearingToNext > 0.01 && info.BearingToNext < 359.99 {
		t.Fatalf("bearing = %v, want about 0", info.BearingToNext)
	}
	if info.Direction != domain.Straight {
		t.Fatalf("direction = %q, want %q", info.Direction, domain.Straight)
	}
	if math.Abs(info.DistanceToNext-111.19) > 0.5 {
		t.Fatalf("distance = %v, want about 111.19", info.DistanceToNext)
	}
	if info.RemainingDistance != 0 {
		t.Fatalf("remaining = %v, want 0 when targeting the last point", info.RemainingDistance)
	}
}

func TestTrackerApproachingDoesNotAdvance(t *testing.T) {
	tr := NewProgressTracker()
	tr.SetRoute(northRoute(3))

	// 50 m south of point 0: nearest is 0 but outside the advance threshold.
	info, ok := tr.Update(domain.GeoPoint{Lat: 36.99955, Lon: 127.0})
	if !ok {
		t.Fatalf("expected guidance")
	}
	if info.CurrentIndex != 0 {
		t.Fatalf("current index = %d, want 0", info.CurrentIndex)
	}
	if info.Direction != domain.Straight {
		t.Fatalf("direction = %q, want straight", info.Direction)
	}
}

func TestTrackerNeverRewinds(t *testing.T) {
	tr := NewProgressTracker()
	tr.SetRoute(northRoute(5))

	tr.Update(domain.GeoPoint{Lat: 37.002, Lon: 127.0})
	if tr.CurrentIndex() != 3 {
		t.Fatalf("current index = %d, want 3", tr.CurrentIndex())
	}

	// Back at the start: the backward points are not even considered.
	info, _ := tr.Update(domain.GeoPoint{Lat: 37.0, Lon: 127.0})
	if info.CurrentIndex != 3 {
		t.Fatalf("current index rewound to %d", info.CurrentIndex)
	}
	if info.Direction != domain.Straight {
		t.Fatalf("direction = %q, want straight toward point 3", info.Direction)
	}
}

func TestTrackerLastPointStaysTargeted(t *testing.T) {
	tr := NewProgressTracker()
	r := northRoute(3)
	tr.SetRoute(r)

	info, _ := tr.Update(r.Points[2])
	if info.CurrentIndex != 2 {
		t.Fatalf("current index = %d, want 2 (last)", info.CurrentIndex)
	}
	if !info.Arrived {
		t.Fatalf("expected arrival at the last point")
	}
	if info.DistanceToNext != 0 || info.BearingToNext != 0 {
		t.Fatalf("distance=%v bearing=%v, want 0 and 0", info.DistanceToNext, info.BearingToNext)
	}
}

func TestTrackerDegenerateSegments(t *testing.T) {
	p := domain.GeoPoint{Lat: 37.0, Lon: 127.0}
	tr := NewProgressTracker()
	tr.SetRoute(&domain.Route{Points: []domain.GeoPoint{p, p, p}})

	for i := 0; i < 4; i++ {
		info, ok := tr.Update(p)
		if !ok {
			t.Fatalf("expected guidance")
		}
		if math.IsNaN(info.BearingToNext) || math.IsNaN(info.DistanceToNext) || math.IsNaN(info.RemainingDistance) {
			t.Fatalf("NaN in %+v", info)
		}
	}
	if tr.CurrentIndex() != 2 {
		t.Fatalf("current index = %d, want 2", tr.CurrentIndex())
	}
}

func TestTrackerMonotonicProgressUnderNoise(t *testing.T) {
	r := northRoute(30)
	tr := NewProgressTracker()
	tr.SetRoute(r)

	rng := rand.New(rand.NewSource(7))
	prevIndex := 0
	prevRemaining := math.Inf(1)

	for step := 0; step < 400; step++ {
		// Random walk up and down the route with ~20 m of lateral noise.
		lat := 37.0 + rng.Float64()*0.03 - 0.001
		lon := 127.0 + (rng.Float64()-0.5)*0.0004
		info, ok := tr.Update(domain.GeoPoint{Lat: lat, Lon: lon})
		if !ok {
			t.Fatalf("expected guidance")
		}

		if info.CurrentIndex < prevIndex {
			t.Fatalf("step %d: index %d < previous %d", step, info.CurrentIndex, prevIndex)
		}
		if info.CurrentIndex > prevIndex && info.RemainingDistance > prevRemaining {
			t.Fatalf("step %d: remaining %v grew from %v while advancing", step, info.RemainingDistance, prevRemaining)
		}
		if info.BearingToNext < 0 || info.BearingToNext >= 360 {
			t.Fatalf("step %d: bearing %v outside [0,360)", step, info.BearingToNext)
		}
		if info.DistanceToNext < 0 || info.RemainingDistance < 0 {
			t.Fatalf("step %d: negative distance in %+v", step, info)
		}

		prevIndex = info.CurrentIndex
		prevRemaining = info.RemainingDistance
	}
}

func TestTrackerSetRouteResetsMidRoute(t *testing.T) {
	r := northRoute(6)
	tr := NewProgressTracker()
	tr.SetRoute(r)

	tr.Update(r.Points[3])
	if tr.CurrentIndex() == 0 {
		t.Fatalf("expected progress before reset")
	}

	tr.SetRoute(r)
	if tr.CurrentIndex() != 0 {
		t.Fatalf("current index = %d after SetRoute, want 0", tr.CurrentIndex())
	}

	// 50 m short of the start: the cursor stays at 0 and the full route remains.
	info, _ := tr.Update(domain.GeoPoint{Lat: 36.99955, Lon: 127.0})
	full := r.LengthFrom(0)
	if math.Abs(info.RemainingDistance-full) > 1e-6 {
		t.Fatalf("remaining = %v, want full length %v", info.RemainingDistance, full)
	}
}

func TestTrackerClear(t *testing.T) {
	tr := NewProgressTracker()
	tr.SetRoute(northRoute(3))
	tr.Clear()

	if tr.Active() {
		t.Fatalf("tracker should be inactive after Clear")
	}
	if _, ok := tr.Update(domain.GeoPoint{Lat: 37, Lon: 127}); ok {
		t.Fatalf("update after Clear should report no guidance")
	}
}

func TestTrackerRejectsNonFiniteFix(t *testing.T) {
	tr := NewProgressTracker()
	tr.SetRoute(northRoute(3))

	if _, ok := tr.Update(domain.GeoPoint{Lat: 37.0, Lon: 127.0}); !ok {
		t.Fatalf("expected guidance for a valid fix")
	}
	before := tr.CurrentIndex()

	bad := []domain.GeoPoint{
		{Lat: math.NaN(), Lon: 127},
		{Lat: 37, Lon: math.NaN()},
		{Lat: math.Inf(1), Lon: 127},
		{Lat: 37, Lon: math.Inf(-1)},
		{Lat: 91, Lon: 127},
		{Lat: 37, Lon: -181},
	}
	for _, fix := range bad {
		info, ok := tr.Update(fix)
		if ok {
			t.Fatalf("Update(%+v) = %+v, want no guidance", fix, info)
		}
		if info != (domain.NavigationInfo{}) {
			t.Fatalf("Update(%+v) info = %+v, want zero value", fix, info)
		}
		if tr.CurrentIndex() != before {
			t.Fatalf("cursor moved to %d on invalid fix, want %d", tr.CurrentIndex(), before)
		}
	}
}
