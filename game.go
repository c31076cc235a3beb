package cubetac

import (
	"fmt"
	"time"

	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Game is one game session: the cube lattice plus turn state.
//
// A Game is not safe for concurrent use. All calls, including Tick, must
// come from the goroutine that owns it.
type Game struct {
	cfg *config

	lattice *cube.Lattice
	current types.Mark
	moves   int
	winner  types.Mark
	line    *Line
	turn    *transition
	history []types.Move
	started time.Time

	onMove  func(types.Move)
	onWin   func(types.Mark, Line)
	onReset func()
}

// NewGame creates a game with an untouched cube.
func NewGame(opts ...Option) *Game {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	g := &Game{cfg: cfg}
	g.reset()
	return g
}

// Reset discards the cube and all turn state and starts a new game.
func (g *Game) Reset() {
	g.reset()
	if g.onReset != nil {
		g.onReset()
	}
}

func (g *Game) reset() {
	g.lattice = cube.New()
	g.current = g.cfg.firstPlayer
	g.moves = 0
	g.winner = types.None
	g.line = nil
	g.turn = nil
	g.history = nil
	g.started = g.cfg.clock()
}

// OnMove sets a callback invoked after every committed move.
func (g *Game) OnMove(fn func(types.Move)) {
	g.onMove = fn
}

// OnWin sets a callback invoked once when a player wins.
func (g *Game) OnWin(fn func(winner types.Mark, line Line)) {
	g.onWin = fn
}

// OnReset sets a callback invoked after Reset.
func (g *Game) OnReset(fn func()) {
	g.onReset = fn
}

// Play marks the front face of the cubie at pos for the current player.
func (g *Game) Play(pos types.Vec) (Outcome, error) {
	return g.Mark(pos, types.Front, g.current)
}

// Mark writes player's mark on the face of the cubie at pos that points
// along dir. Only unmarked front faces of front cubies can be marked.
func (g *Game) Mark(pos types.Vec, dir types.Vec, player types.Mark) (Outcome, error) {
	switch {
	case g.winner != types.None:
		return RejectedFinished, nil
	case g.turn != nil:
		return RejectedBusy, nil
	case !player.IsPlayer() || !pos.InLattice():
		return RejectedInvalid, nil
	case dir != types.Front || pos.Z != 1:
		return RejectedNotFront, nil
	}

	c, ok := g.lattice.At(pos)
	if !ok {
		return RejectedInvalid, fmt.Errorf("%w: no cubie at %v", ErrOrientationInvariant, pos)
	}
	f, err := c.FrontFace()
	if err != nil {
		return RejectedInvalid, fmt.Errorf("failed to resolve front face: %w", err)
	}
	if c.Marks[f] != types.None {
		return RejectedOccupied, nil
	}
	// The whole front face must resolve before anything is written.
	if _, err := g.FrontGrid(); err != nil {
		return RejectedInvalid, err
	}

	c.Marks[f] = player
	return Accepted, g.commit(types.MarkMove(player, pos), player)
}

// RotateLayer starts a quarter turn of the layer whose coordinate along
// axis equals layer. The turn is committed by Tick once the rotation
// duration has elapsed.
func (g *Game) RotateLayer(axis types.Axis, layer int, turn types.Turn) (Outcome, error) {
	switch {
	case g.winner != types.None:
		return RejectedFinished, nil
	case g.turn != nil:
		return RejectedBusy, nil
	case cube.ValidateTurn(axis, layer, turn) != nil:
		return RejectedInvalid, nil
	}

	lt, err := g.lattice.BeginTurn(axis, layer, turn)
	if err != nil {
		return RejectedInvalid, fmt.Errorf("failed to begin layer turn: %w", err)
	}

	g.turn = &transition{
		turn:     lt,
		mover:    g.current,
		duration: g.cfg.rotationDuration,
	}
	return Accepted, nil
}

// Apply performs a parsed move. Rotations only start; drive them with
// Tick or Settle.
func (g *Game) Apply(m types.Move) (Outcome, error) {
	switch m.Kind {
	case types.MoveMark:
		return g.Mark(m.Pos, types.Front, m.Player)
	case types.MoveRotate:
		return g.RotateLayer(m.Axis, m.Layer, m.Turn)
	default:
		return RejectedInvalid, nil
	}
}

// Tick advances an in-flight layer turn by dt. It reports whether the turn
// was committed during this tick. If committing fails the lattice is left
// as it was before the turn and the game returns to idle.
func (g *Game) Tick(dt time.Duration) (bool, error) {
	if g.turn == nil {
		return false, nil
	}
	if dt > 0 {
		g.turn.elapsed += dt
	}
	if !g.turn.done() {
		return false, nil
	}

	t := g.turn
	g.turn = nil
	if err := g.lattice.CommitTurn(t.turn); err != nil {
		return false, fmt.Errorf("failed to commit layer turn: %w", err)
	}

	m := types.RotateMove(t.turn.Axis, t.turn.Layer, t.turn.Turn)
	m.Player = t.mover
	return true, g.commit(m, t.mover)
}

// Settle runs an in-flight layer turn to completion.
func (g *Game) Settle() error {
	if g.turn == nil {
		return nil
	}
	_, err := g.Tick(g.turn.duration - g.turn.elapsed)
	return err
}

// commit finishes a state-changing move: count it, pass the turn, record
// it and check for a win.
func (g *Game) commit(m types.Move, mover types.Mark) error {
	g.moves++
	g.current = mover.Opponent()
	m.Timestamp = g.cfg.clock().Sub(g.started).Milliseconds()
	if g.cfg.moveHistory {
		g.history = append(g.history, m)
	}
	if g.onMove != nil {
		g.onMove(m)
	}
	return g.checkWin()
}

// checkWin records the first winner. A winner is never replaced.
func (g *Game) checkWin() error {
	if g.winner != types.None {
		return nil
	}
	res, err := g.Evaluate()
	if err != nil {
		return err
	}
	if res.Winner == types.None {
		return nil
	}

	g.winner = res.Winner
	g.line = res.Line
	if g.onWin != nil {
		g.onWin(res.Winner, *res.Line)
	}
	return nil
}

// Evaluate checks the current front grid for a completed line without
// changing any state.
func (g *Game) Evaluate() (Result, error) {
	grid, err := g.FrontGrid()
	if err != nil {
		return Result{}, err
	}
	return EvaluateGrid(grid), nil
}

// FrontGrid returns the marks facing front, indexed [y+1][x+1].
func (g *Game) FrontGrid() (cube.Grid, error) {
	grid, err := g.lattice.FaceGrid(types.Front)
	if err != nil {
		return cube.Grid{}, fmt.Errorf("failed to read front grid: %w", err)
	}
	return grid, nil
}

// State returns whether the game is idle or animating a layer turn.
func (g *Game) State() State {
	if g.turn != nil {
		return StateRotatingLayer
	}
	return StateIdle
}

// Rotating reports whether a layer turn is in flight.
func (g *Game) Rotating() bool {
	return g.turn != nil
}

// CurrentPlayer returns who moves next.
func (g *Game) CurrentPlayer() types.Mark {
	return g.current
}

// MoveCount returns the number of committed moves.
func (g *Game) MoveCount() int {
	return g.moves
}

// Winner returns the winner, or types.None.
func (g *Game) Winner() types.Mark {
	return g.winner
}

// WinningLine returns the line that won the game, if any.
func (g *Game) WinningLine() (Line, bool) {
	if g.line == nil {
		return Line{}, false
	}
	return *g.line, true
}

// History returns a copy of the committed moves.
func (g *Game) History() []types.Move {
	out := make([]types.Move, len(g.history))
	copy(out, g.history)
	return out
}

// Lattice returns a copy of the committed cube state.
func (g *Game) Lattice() *cube.Lattice {
	return g.lattice.Clone()
}

// CubeString returns a text net of the cube.
func (g *Game) CubeString() string {
	return g.lattice.String()
}

// RotationDuration returns the configured layer turn duration.
func (g *Game) RotationDuration() time.Duration {
	return g.cfg.rotationDuration
}
