package services

import (
	"fmt"
	"math"
	"pedestrian-nav-service/internal/domain"
)

// Distance below which the next guidance point is announced as imminent.
const ImminentDistanceMeters = 30.0

// Instruction is the synthesized guidance for one (bearing, distance) pair.
type Instruction struct {
	Direction domain.Direction
	Text      string
}

// Classify maps a bearing in [0,360) onto its direction category.
//
// The four half-open intervals partition the circle exactly. A bearing
// outside [0,360) can only come from corrupted arithmetic upstream, so it
// panics instead of falling back to a default category.
func Classify(bearing float64) domain.Direction {
	if math.IsNaN(bearing) || bearing < 0 || bearing >= 360 {
		panic(fmt.Sprintf("instruction: bearing %v outside [0,360)", bearing))
	}

	switch {
	case bearing >= 315 || bearing < 45:
		return domain.Straight
	case bearing < 135:
		return domain.Right
	case bearing < 225:
		return domain.Reversed
	default:
		return domain.Left
	}
}

// Synthesize builds the instruction for the next guidance point.
func Synthesize(bearing, distance float64) Instruction {
	dir := Classify(bearing)

	phrase := "shortly"
	if distance >= ImminentDistanceMeters {
		phrase = fmt.Sprintf("in %d m", int(math.Round(distance)))
	}

	var text string
	switch dir {
	case domain.Straight:
		text = "Go straight " + phrase
	case domain.Right:
		text = "Turn right " + phrase
	case domain.Reversed:
		text = "Wrong direction, turn around " + phrase
	case domain.Left:
		text = "Turn left " + phrase
	}

	return Instruction{Direction: dir, Text: text}
}
