package fixsource

import (
	"context"
	"math"
	"math/rand"
	"pedestrian-nav-service/internal/domain"
	"time"
)

// Replay walks a polyline and emits one fix per step. It stands in for a
// GPS receiver in the walk simulator and in tests.
type Replay struct {
	Points []domain.GeoPoint

	// Interval between fixes. Zero emits as fast as the consumer reads.
	Interval time.Duration

	// StepMeters densifies the polyline so consecutive fixes are at most
	// this far apart. Zero replays the vertices only.
	StepMeters float64

	// JitterMeters adds uniform noise of up to this radius to every fix.
	JitterMeters float64

	// Accuracy reported on each fix, in meters.
	Accuracy float64

	Rand *rand.Rand
}

// Fixes implements ports.FixSource.
func (r *Replay) Fixes(ctx context.Context) <-chan domain.Fix {
	out := make(chan domain.Fix)
	track := r.track()

	rng := r.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	go func() {
		defer close(out)

		var tick <-chan time.Time
		if r.Interval > 0 {
			t := time.NewTicker(r.Interval)
			defer t.Stop()
			tick = t.C
		}

		for i, p := range track {
			if i > 0 && tick != nil {
				select {
				case <-ctx.Done():
					return
				case <-tick:
				}
			}

			if r.JitterMeters > 0 {
				p = jitter(p, r.JitterMeters, rng)
			}
			fix := domain.Fix{Lat: p.Lat, Lon: p.Lon, Accuracy: r.Accuracy, Timestamp: time.Now()}

			select {
			case <-ctx.Done():
				return
			case out <- fix:
			}
		}
	}()

	return out
}

func (r *Replay) track() []domain.GeoPoint {
	if r.StepMeters <= 0 || len(r.Points) < 2 {
		return append([]domain.GeoPoint(nil), r.Points...)
	}

	track := []domain.GeoPoint{r.Points[0]}
	for i := 1; i < len(r.Points); i++ {
		a, b := r.Points[i-1], r.Points[i]
		n := int(math.Ceil(domain.Haversine(a, b) / r.StepMeters))
		for k := 1; k < n; k++ {
			f := float64(k) / float64(n)
			track = append(track, domain.GeoPoint{
				Lat: a.Lat + (b.Lat-a.Lat)*f,
				Lon: a.Lon + (b.Lon-a.Lon)*f,
			})
		}
		track = append(track, b)
	}
	return track
}

// jitter offsets p by up to radius meters in a uniformly random direction.
func jitter(p domain.GeoPoint, radius float64, rng *rand.Rand) domain.GeoPoint {
	d := radius * math.Sqrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi

	dLat := d * math.Cos(theta) / domain.EarthRadiusMeters
	dLon := d * math.Sin(theta) / (domain.EarthRadiusMeters * math.Cos(p.Lat*math.Pi/180))

	return domain.GeoPoint{
		Lat: p.Lat + dLat*180/math.Pi,
		Lon: p.Lon + dLon*180/math.Pi,
	}
}
