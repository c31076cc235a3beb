// Package session runs a game on a single owner goroutine so that
// concurrent callers (HTTP handlers, WebSocket clients) never touch it
// directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// ErrStopped is returned for commands submitted after Run has returned.
var ErrStopped = errors.New("session: controller stopped")

// DefaultFrameInterval is the tick period used when none is configured.
const DefaultFrameInterval = 16 * time.Millisecond

// Observer receives game events. *metrics.Metrics implements it.
type Observer interface {
	ObserveMove(types.Move)
	ObserveOutcome(cubetac.Outcome)
	ObserveWin(types.Mark)
	ObserveRotation(time.Duration)
}

// Recorder receives game callbacks. *recorder.Recorder implements it.
type Recorder interface {
	HandleMove(types.Move)
	HandleWin(types.Mark, cubetac.Line)
	HandleReset()
}

// Option configures a Controller.
type Option func(*Controller)

// WithFrameInterval sets how often an in-flight layer turn is advanced.
func WithFrameInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.frame = d
		}
	}
}

// WithObserver reports moves, rejections, wins and rotation times.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithRecorder forwards committed moves, wins and resets to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

type command struct {
	fn    func(*cubetac.Game) error
	reply chan error
}

// Controller owns one game. All access goes through Run's goroutine.
type Controller struct {
	game     *cubetac.Game
	frame    time.Duration
	observer Observer
	recorder Recorder

	cmds chan command
	done chan struct{}

	mu     sync.Mutex
	subs   map[int]chan cubetac.RenderState
	nextID int

	turnStarted time.Time
	lastTick    time.Time // owner goroutine only
}

// New creates a controller for g and installs g's callbacks. g must not be
// used by anything else afterwards.
func New(g *cubetac.Game, opts ...Option) *Controller {
	c := &Controller{
		game:  g,
		frame: DefaultFrameInterval,
		cmds:  make(chan command),
		done:  make(chan struct{}),
		subs:  make(map[int]chan cubetac.RenderState),
	}
	for _, opt := range opts {
		opt(c)
	}

	g.OnMove(c.handleMove)
	g.OnWin(c.handleWin)
	g.OnReset(func() {
		log.Info().Msg("game reset")
		if c.recorder != nil {
			c.recorder.HandleReset()
		}
	})
	return c
}

func (c *Controller) handleMove(m types.Move) {
	log.Debug().Str("move", m.Notation()).Int64("ts_ms", m.Timestamp).Msg("move committed")
	if c.observer != nil {
		c.observer.ObserveMove(m)
		if m.Kind == types.MoveRotate && !c.turnStarted.IsZero() {
			c.observer.ObserveRotation(time.Since(c.turnStarted))
		}
	}
	if c.recorder != nil {
		c.recorder.HandleMove(m)
	}
}

func (c *Controller) handleWin(winner types.Mark, line cubetac.Line) {
	log.Info().Stringer("winner", winner).Str("line", line.Name).Msg("game won")
	if c.observer != nil {
		c.observer.ObserveWin(winner)
	}
	if c.recorder != nil {
		c.recorder.HandleWin(winner, line)
	}
}

// Run owns the game until ctx is cancelled. Subscriber channels are closed
// when it returns.
func (c *Controller) Run(ctx context.Context) error {
	defer c.closeSubscribers()
	defer close(c.done)

	ticker := time.NewTicker(c.frame)
	defer ticker.Stop()
	c.lastTick = time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-c.cmds:
			cmd.reply <- cmd.fn(c.game)

		case now := <-ticker.C:
			dt := now.Sub(c.lastTick)
			c.lastTick = now
			if !c.game.Rotating() {
				continue
			}
			if _, err := c.game.Tick(dt); err != nil {
				log.Error().Err(err).Msg("layer turn failed")
			}
			c.broadcast()
		}
	}
}

// Do runs fn on the owner goroutine and returns its error.
func (c *Controller) Do(ctx context.Context, fn func(*cubetac.Game) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// The owner always replies once it has taken the command.
	return <-cmd.reply
}

// Mark places player's mark on the front face of the cubie at pos.
// types.None means the current player. When the mark is accepted the
// returned state is the one it produced.
func (c *Controller) Mark(ctx context.Context, pos types.Vec, player types.Mark) (cubetac.Outcome, cubetac.RenderState, error) {
	var (
		out cubetac.Outcome
		rs  cubetac.RenderState
	)
	err := c.Do(ctx, func(g *cubetac.Game) error {
		if player == types.None {
			player = g.CurrentPlayer()
		}
		var err error
		out, err = g.Mark(pos, types.Front, player)
		if err == nil && out.OK() {
			rs = g.Snapshot()
		}
		c.finish("mark", out, err)
		return err
	})
	return out, rs, err
}

// Rotate starts a layer turn; the controller's ticker commits it. When the
// turn is accepted the returned state shows it at zero progress.
func (c *Controller) Rotate(ctx context.Context, axis types.Axis, layer int, turn types.Turn) (cubetac.Outcome, cubetac.RenderState, error) {
	var (
		out cubetac.Outcome
		rs  cubetac.RenderState
	)
	err := c.Do(ctx, func(g *cubetac.Game) error {
		var err error
		out, err = g.RotateLayer(axis, layer, turn)
		if err == nil && out.OK() {
			now := time.Now()
			c.turnStarted = now
			// The first frame advances the turn from here, not from the
			// previous tick.
			c.lastTick = now
			rs = g.Snapshot()
		}
		c.finish("rotate", out, err)
		return err
	})
	return out, rs, err
}

// Reset starts a new game and returns its initial state.
func (c *Controller) Reset(ctx context.Context) (cubetac.RenderState, error) {
	var rs cubetac.RenderState
	err := c.Do(ctx, func(g *cubetac.Game) error {
		g.Reset()
		rs = g.Snapshot()
		c.broadcast()
		return nil
	})
	return rs, err
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot(ctx context.Context) (cubetac.RenderState, error) {
	var rs cubetac.RenderState
	err := c.Do(ctx, func(g *cubetac.Game) error {
		rs = g.Snapshot()
		return nil
	})
	return rs, err
}

// finish logs and reports the outcome of a request and pushes the new
// state to subscribers.
func (c *Controller) finish(op string, out cubetac.Outcome, err error) {
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("invariant violation")
	} else if !out.OK() {
		log.Debug().Str("op", op).Stringer("outcome", out).Msg("request rejected")
	}
	if c.observer != nil {
		c.observer.ObserveOutcome(out)
	}
	if out.OK() {
		c.broadcast()
	}
}

// Subscribe registers a receiver of render states. The current state is
// delivered first. Slow receivers miss frames rather than block the game.
// Call cancel to unsubscribe.
func (c *Controller) Subscribe(ctx context.Context, buffer int) (<-chan cubetac.RenderState, func(), error) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan cubetac.RenderState, buffer)
	var id int

	err := c.Do(ctx, func(g *cubetac.Game) error {
		c.mu.Lock()
		id = c.nextID
		c.nextID++
		c.subs[id] = ch
		c.mu.Unlock()
		ch <- g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel, nil
}

// Subscribers returns the number of registered receivers.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Controller) broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) == 0 {
		return
	}
	rs := c.game.Snapshot()
	for _, ch := range c.subs {
		select {
		case ch <- rs:
		default:
		}
	}
}

func (c *Controller) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
