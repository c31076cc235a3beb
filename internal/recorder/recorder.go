// Package recorder appends finished and in-progress games to the match
// history.
package recorder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/internal/storage"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// ErrNotRecording is returned when a move or result arrives with no open
// game record.
var ErrNotRecording = errors.New("recorder: no game in progress")

// State represents the current state of a recorder.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateEnded
)

// String returns the string representation of the recorder state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Recorder writes one game at a time to storage.
type Recorder struct {
	source string

	mu      sync.RWMutex
	state   State
	gameID  string
	moveSeq int

	gameRepo *storage.GameRepository
	moveRepo *storage.MoveRepository

	onError func(error)
}

// New creates a recorder. source tags every game it opens ("play",
// "serve", "script").
func New(db *storage.DB, source string) *Recorder {
	return &Recorder{
		source:   source,
		state:    StateIdle,
		gameRepo: storage.NewGameRepository(db),
		moveRepo: storage.NewMoveRepository(db),
	}
}

// OnError sets a callback for failures in the game callbacks installed by
// Attach. Failures are always logged.
func (r *Recorder) OnError(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = fn
}

// State returns the current recorder state.
func (r *Recorder) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// GameID returns the ID of the open (or last) game record.
func (r *Recorder) GameID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameID
}

// MoveCount returns the number of moves recorded for the current game.
func (r *Recorder) MoveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moveSeq
}

// Start opens a new game record.
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording {
		return "", fmt.Errorf("game %s already in progress", r.gameID)
	}

	id, err := r.gameRepo.Create(r.source)
	if err != nil {
		return "", fmt.Errorf("failed to start game record: %w", err)
	}

	r.gameID = id
	r.moveSeq = 0
	r.state = StateRecording
	log.Debug().Str("game_id", id).Str("source", r.source).Msg("recording game")
	return id, nil
}

// RecordMove appends a committed move to the open game.
func (r *Recorder) RecordMove(m types.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return ErrNotRecording
	}
	if _, err := r.moveRepo.Create(r.gameID, r.moveSeq, m); err != nil {
		return fmt.Errorf("failed to record move: %w", err)
	}
	r.moveSeq++
	return nil
}

// End closes the open game. winner may be types.None for an abandoned
// game.
func (r *Recorder) End(winner types.Mark) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return ErrNotRecording
	}
	if err := r.gameRepo.End(r.gameID, winner); err != nil {
		return fmt.Errorf("failed to end game record: %w", err)
	}
	r.state = StateEnded
	log.Debug().Str("game_id", r.gameID).Stringer("winner", winner).Int("moves", r.moveSeq).Msg("game recorded")
	return nil
}

// Close ends the open game, if any, without a winner.
func (r *Recorder) Close() error {
	if r.State() != StateRecording {
		return nil
	}
	return r.End(types.None)
}

// HandleMove records a committed move. Failures are reported, not returned,
// so gameplay is never interrupted by storage.
func (r *Recorder) HandleMove(m types.Move) {
	r.report(r.RecordMove(m))
}

// HandleWin closes the game record with the winner.
func (r *Recorder) HandleWin(winner types.Mark, _ cubetac.Line) {
	r.report(r.End(winner))
}

// HandleReset closes any unfinished record and opens a new one.
func (r *Recorder) HandleReset() {
	r.report(r.Close())
	_, err := r.Start()
	r.report(err)
}

// Attach opens a record for g and installs the recorder as g's callbacks.
// Use the Handle methods instead when the callbacks are shared.
func (r *Recorder) Attach(g *cubetac.Game) error {
	if _, err := r.Start(); err != nil {
		return err
	}
	g.OnMove(r.HandleMove)
	g.OnWin(r.HandleWin)
	g.OnReset(r.HandleReset)
	return nil
}

func (r *Recorder) report(err error) {
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("game_id", r.GameID()).Msg("recorder failure")

	r.mu.RLock()
	fn := r.onError
	r.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}
