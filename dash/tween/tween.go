// Package tween classifies the short-term motion of a scalar series.
package tween

// Direction is the sign of the last change.
type Direction uint8

const (
	Unknown Direction = iota
	Idle
	Rising
	Falling
)

func (d Direction) String() string {
	switch d {
	case Unknown:
		return "unknown"
	case Idle:
		return "idle"
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "?"
	}
}

// State is the tracker output after one update.
type State struct {
	Last      float64
	Direction Direction
	// Rate is the change per frame.
	Rate float64
}

// Tracker consumes one value per snapshot for a single channel.
type Tracker struct {
	state  State
	primed bool
}

// Update records v. framesElapsed is the number of display frames since the
// previous update; a zero leaves Rate untouched.
func (t *Tracker) Update(v float64, framesElapsed int) State {
	if !t.primed {
		t.primed = true
		t.state = State{Last: v, Direction: Unknown}
		return t.state
	}

	prev := t.state.Last
	switch {
	case v > prev:
		t.state.Direction = Rising
	case v < prev:
		t.state.Direction = Falling
	default:
		t.state.Direction = Idle
	}
	if framesElapsed != 0 {
		t.state.Rate = (v - prev) / float64(framesElapsed)
	}
	t.state.Last = v
	return t.state
}

// State returns the last computed state.
func (t *Tracker) State() State { return t.state }

// Reset forgets the history.
func (t *Tracker) Reset() { *t = Tracker{} }
