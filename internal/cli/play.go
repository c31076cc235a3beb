package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/internal/logging"
	"github.com/SeamusWaldron/cubetac/internal/recorder"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in the terminal",
	Long: `Start an interactive two-player game in the terminal.

Keyboard shortcuts:
  arrows/hjkl  - Move the cursor on the front face
  enter/space  - Mark the square under the cursor
  1 2 3        - Turn the left, middle or right column (x)
  q w e        - Turn the top, middle or bottom row (y)
  a s d        - Turn the front, middle or back slice (z)
  r            - New game
  n            - Show the whole cube as a net
  esc/ctrl+c   - Quit`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// Messages
type tickMsg time.Time

// Model
type playModel struct {
	game  *cubetac.Game
	rec   *recorder.Recorder
	frame time.Duration

	lastTick time.Time
	started  time.Time
	elapsed  time.Duration

	cursor   cubetac.Cell
	message  string
	err      error
	showNet  bool
	quitting bool
}

func newPlayModel(game *cubetac.Game, rec *recorder.Recorder, frame time.Duration) *playModel {
	return &playModel{
		game:    game,
		rec:     rec,
		frame:   frame,
		cursor:  cubetac.Cell{Row: 1, Col: 1},
		started: time.Now(),
	}
}

func (m *playModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *playModel) tickCmd() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tickMsg:
		now := time.Time(msg)
		if m.lastTick.IsZero() {
			m.lastTick = now
		}
		dt := now.Sub(m.lastTick)
		m.lastTick = now
		if m.game.Winner() == types.None {
			m.elapsed = now.Sub(m.started)
		}
		if _, err := m.game.Tick(dt); err != nil {
			m.err = err
			log.Error().Err(err).Msg("layer turn failed")
		}
		return m, m.tickCmd()
	}

	return m, nil
}

func (m *playModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.cursor.Row = min(m.cursor.Row+1, 2)
	case "down", "j":
		m.cursor.Row = max(m.cursor.Row-1, 0)
	case "left", "h":
		m.cursor.Col = max(m.cursor.Col-1, 0)
	case "right", "l":
		m.cursor.Col = min(m.cursor.Col+1, 2)

	case "enter", " ":
		out, err := m.game.Play(m.cursor.Pos())
		m.report(out, err)

	case "r":
		m.game.Reset()
		m.started = time.Now()
		m.elapsed = 0
		m.message = "New game"
		m.err = nil

	case "n":
		m.showNet = !m.showNet

	default:
		if mv, ok := cubetac.Controls[key]; ok {
			out, err := m.game.RotateLayer(mv.Axis, mv.Layer, mv.Turn)
			m.report(out, err)
		}
	}
	return m, nil
}

func (m *playModel) report(out cubetac.Outcome, err error) {
	m.err = err
	if err != nil {
		log.Error().Err(err).Msg("invariant violation")
		return
	}
	m.message = describeOutcome(out)
	if !out.OK() {
		log.Debug().Stringer("outcome", out).Msg("request rejected")
	}
}

func describeOutcome(out cubetac.Outcome) string {
	switch out {
	case cubetac.Accepted:
		return ""
	case cubetac.RejectedBusy:
		return "Wait for the layer to finish turning"
	case cubetac.RejectedFinished:
		return "The game is over - press r for a new game"
	case cubetac.RejectedNotFront:
		return "Only the front face can be marked"
	case cubetac.RejectedOccupied:
		return "That square is already marked"
	default:
		return "Not a valid move"
	}
}

func (m *playModel) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("cubetac"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(fmt.Sprintf("move %d  %s", m.game.MoveCount(), formatElapsed(m.elapsed))))
	if m.rec != nil && m.rec.GameID() != "" {
		b.WriteString(statusStyle.Render("  game " + m.rec.GameID()[:8]))
	}
	b.WriteString("\n\n")

	rs := m.game.Snapshot()
	b.WriteString(renderStatus(rs))
	b.WriteString("\n\n")

	grid, err := m.game.FrontGrid()
	if err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		b.WriteString("\n")
	} else {
		var cursor *cubetac.Cell
		if rs.Winner == types.None {
			cursor = &m.cursor
		}
		b.WriteString(renderBoard(grid, cursor, rs.WinLine))
	}
	b.WriteString("\n")

	if mv := renderMoves(m.game.History(), 12); mv != "" {
		b.WriteString(mv)
		b.WriteString("\n")
	}

	if m.showNet {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("Cube net (U / L F R B / D):"))
		b.WriteString("\n")
		b.WriteString(m.game.CubeString())
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.message)
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("arrows=move  enter=mark  " + cubetac.ControlsHelp))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r=new game  n=net  esc=quit"))
	b.WriteString("\n")

	return b.String()
}

func runPlay(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go to a file.
	logDir := filepath.Join(filepath.Dir(mustDBPath()), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(filepath.Join(logDir, "play.log"), "cubetac")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	if err := logging.Setup(logFile, cfg.LogLevel, "json", verbose); err != nil {
		return err
	}

	game := cubetac.NewGame(gameOptions()...)

	var rec *recorder.Recorder
	if cfg.Record {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rec = recorder.New(db, "play")
		if err := rec.Attach(game); err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close game record")
			}
		}()
	}

	model := newPlayModel(game, rec, cfg.FrameInterval)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// mustDBPath returns the configured database path, or a path in the
// working directory if the home directory is unknown.
func mustDBPath() string {
	path, err := cfg.DatabasePath()
	if err != nil {
		return filepath.Join(".cubetac", "cubetac.db")
	}
	return path
}
