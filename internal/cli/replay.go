package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/internal/storage"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

var replayCmd = &cobra.Command{
	Use:   "replay <game-id>",
	Short: "Replay a recorded game",
	Long: `Replay a game from the match history on a fresh cube, with layer turns
animated. A unique prefix of the game ID is enough; see 'cubetac history'.

Usage:
  cubetac replay 3f2a9c1d               # Replay in real time
  cubetac replay 3f2a9c1d --speed 4     # Replay at 4x speed
  cubetac replay 3f2a9c1d --step        # Step through moves manually`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replaySpeed float64
	replayStep  bool
)

// maxReplayPause caps the wait between two recorded moves.
const maxReplayPause = 3 * time.Second

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Float64VarP(&replaySpeed, "speed", "s", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVarP(&replayStep, "step", "t", false, "Step through moves manually")
}

func runReplay(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	game, err := storage.NewGameRepository(db).Resolve(args[0])
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("no game found with id %s", args[0])
	}

	moves, err := storage.NewMoveRepository(db).Moves(game.GameID)
	if err != nil {
		return fmt.Errorf("failed to load moves: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded game %s: %d moves\n", game.GameID, len(moves))

	speed := replaySpeed
	if speed <= 0 {
		speed = 1
	}
	model := newReplayModel(game.GameID, moves, speed, replayStep, cfg.FrameInterval)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("replay error: %w", err)
	}
	return nil
}

// Replay model
type replayModel struct {
	gameID string
	moves  []types.Move
	game   *cubetac.Game
	frame  time.Duration

	index    int
	speed    float64
	stepMode bool
	paused   bool
	waiting  bool // a replayed layer turn is still animating
	lastTick time.Time
	err      error
	showNet  bool
	quitting bool
}

type replayMoveMsg struct{ index int }

func newReplayModel(gameID string, moves []types.Move, speed float64, stepMode bool, frame time.Duration) *replayModel {
	m := &replayModel{
		gameID:   gameID,
		moves:    moves,
		frame:    frame,
		speed:    speed,
		stepMode: stepMode,
		paused:   stepMode, // Start paused in step mode
	}
	m.restart()
	return m
}

func (m *replayModel) restart() {
	m.game = cubetac.NewGame(gameOptions()...)
	m.index = 0
	m.waiting = false
	m.err = nil
}

func (m *replayModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if !m.paused {
		cmds = append(cmds, m.scheduleNext())
	}
	return tea.Batch(cmds...)
}

func (m *replayModel) tickCmd() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// scheduleNext waits out the recorded gap before the next move.
func (m *replayModel) scheduleNext() tea.Cmd {
	if m.index >= len(m.moves) || m.err != nil {
		return nil
	}
	index := m.index
	return tea.Tick(m.pause(index), func(time.Time) tea.Msg {
		return replayMoveMsg{index: index}
	})
}

// pause returns the scaled wait before move i. Timestamps are commit
// times, so a layer turn was requested one rotation earlier.
func (m *replayModel) pause(i int) time.Duration {
	if i == 0 {
		return 0
	}
	gap := time.Duration(m.moves[i].Timestamp-m.moves[i-1].Timestamp) * time.Millisecond
	if m.moves[i].Kind == types.MoveRotate {
		gap -= m.game.RotationDuration()
	}
	gap = min(max(gap, 0), maxReplayPause)
	return time.Duration(float64(gap) / m.speed)
}

func (m *replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case " ", "right", "l":
			if m.stepMode || m.paused {
				m.step()
			}

		case "p":
			m.paused = !m.paused
			if !m.paused && !m.waiting {
				return m, m.scheduleNext()
			}

		case "r":
			m.restart()
			if !m.paused {
				return m, m.scheduleNext()
			}

		case "n":
			m.showNet = !m.showNet

		case "+", "=":
			m.speed = min(m.speed*2, 16)

		case "-":
			m.speed = max(m.speed/2, 0.25)
		}

	case replayMoveMsg:
		// Stale ticks from before a pause or restart are dropped.
		if m.paused || msg.index != m.index {
			return m, nil
		}
		m.step()
		if !m.waiting {
			return m, m.scheduleNext()
		}

	case tickMsg:
		now := time.Time(msg)
		if m.lastTick.IsZero() {
			m.lastTick = now
		}
		dt := time.Duration(float64(now.Sub(m.lastTick)) * m.speed)
		m.lastTick = now

		if _, err := m.game.Tick(dt); err != nil {
			m.err = err
		}
		cmds := []tea.Cmd{m.tickCmd()}
		if m.waiting && !m.game.Rotating() {
			m.waiting = false
			if !m.paused {
				cmds = append(cmds, m.scheduleNext())
			}
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// step applies the next recorded move.
func (m *replayModel) step() {
	if m.index >= len(m.moves) || m.game.Rotating() || m.err != nil {
		return
	}
	mv := m.moves[m.index]
	out, err := m.game.Apply(mv)
	switch {
	case err != nil:
		m.err = err
		return
	case !out.OK():
		m.err = fmt.Errorf("recorded move %d %s was rejected: %s", m.index+1, mv.Notation(), out)
		return
	}
	m.index++
	m.waiting = m.game.Rotating()
}

func (m *replayModel) View() string {
	if m.quitting {
		return "Replay ended.\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("cubetac replay"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render("game " + m.gameID[:min(8, len(m.gameID))]))
	b.WriteString("\n\n")

	progress := fmt.Sprintf("Move %d/%d", m.index, len(m.moves))
	if m.paused {
		progress += " [PAUSED]"
	}
	if m.stepMode {
		progress += " [STEP MODE]"
	}
	b.WriteString(statusStyle.Render(progress))
	b.WriteString(fmt.Sprintf(" (%.2gx speed)\n\n", m.speed))

	rs := m.game.Snapshot()
	b.WriteString(renderStatus(rs))
	b.WriteString("\n\n")

	if grid, err := m.game.FrontGrid(); err == nil {
		b.WriteString(renderBoard(grid, nil, rs.WinLine))
	}
	b.WriteString("\n")

	if mv := renderMoves(m.moves[:m.index], 12); mv != "" {
		b.WriteString(mv)
		b.WriteString("\n")
	}
	if m.index < len(m.moves) {
		b.WriteString(statusStyle.Render("Next: " + m.moves[m.index].Notation()))
		b.WriteString("\n")
	}

	if m.showNet {
		b.WriteString("\n")
		b.WriteString(m.game.CubeString())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := "SPACE=next  p=pause  r=restart  n=net  +/-=speed  q=quit"
	if m.stepMode {
		help = "SPACE=next move  r=restart  n=net  q=quit"
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")

	return b.String()
}
