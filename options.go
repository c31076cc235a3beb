package cubetac

import (
	"time"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// DefaultRotationDuration is how long a layer turn animates.
const DefaultRotationDuration = 400 * time.Millisecond

// Option configures Game behavior.
type Option func(*config)

type config struct {
	rotationDuration time.Duration
	easing           Easing
	firstPlayer      types.Mark
	moveHistory      bool
	clock            func() time.Time
}

func defaultConfig() *config {
	return &config{
		rotationDuration: DefaultRotationDuration,
		easing:           EaseOutCubic,
		firstPlayer:      types.X,
		moveHistory:      true,
		clock:            time.Now,
	}
}

// WithRotationDuration sets how long a layer turn takes to complete.
// A zero duration commits the turn on the next Tick.
func WithRotationDuration(d time.Duration) Option {
	return func(c *config) {
		if d < 0 {
			d = 0
		}
		c.rotationDuration = d
	}
}

// WithEasing sets the curve used to interpolate animation poses.
// It only affects Snapshot poses, never committed state.
func WithEasing(e Easing) Option {
	return func(c *config) {
		if e != nil {
			c.easing = e
		}
	}
}

// WithFirstPlayer sets who moves first after every reset.
func WithFirstPlayer(m types.Mark) Option {
	return func(c *config) {
		if m.IsPlayer() {
			c.firstPlayer = m
		}
	}
}

// WithMoveHistory enables or disables move history tracking.
// When enabled (default), all moves are stored and accessible via History().
func WithMoveHistory(enabled bool) Option {
	return func(c *config) {
		c.moveHistory = enabled
	}
}

// WithClock sets the time source used for move timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.clock = now
		}
	}
}
