package cubetac

import (
	"math"
	"time"

	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Easing maps linear progress in [0,1] to animation progress in [0,1].
type Easing func(p float64) float64

// EaseOutCubic decelerates toward the end of the turn.
func EaseOutCubic(p float64) float64 {
	return 1 - math.Pow(1-p, 3)
}

// Linear is the identity easing.
func Linear(p float64) float64 {
	return p
}

// State is the game's animation state.
type State int

const (
	StateIdle          State = iota // Ready for input
	StateRotatingLayer              // A layer turn is in flight
)

func (s State) String() string {
	if s == StateRotatingLayer {
		return "rotating"
	}
	return "idle"
}

// transition is the RotatingLayer state.
type transition struct {
	turn     *cube.LayerTurn
	mover    types.Mark
	elapsed  time.Duration
	duration time.Duration
}

// progress returns linear progress clamped to [0,1].
func (t *transition) progress() float64 {
	if t.duration <= 0 || t.elapsed >= t.duration {
		return 1
	}
	return float64(t.elapsed) / float64(t.duration)
}

func (t *transition) done() bool {
	return t.elapsed >= t.duration
}
