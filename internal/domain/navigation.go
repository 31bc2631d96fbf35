package domain

// Direction category of the next guidance point relative to true north.
type Direction string

const (
	Straight Direction = "straight"
	Right    Direction = "right"
	Reversed Direction = "reversed"
	Left     Direction = "left"
)

// Snapshot of guidance for one processed fix. Produced fresh on every
// update and never cached.
type NavigationInfo struct {
	DistanceToNext    float64
	BearingToNext     float64
	Direction         Direction
	Instruction       string
	RemainingDistance float64
	CurrentIndex      int
	Arrived           bool
}
