package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/internal/storage"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	turnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	xStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	oStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

	cursorStyle = lipgloss.NewStyle().Reverse(true)
	winStyle    = lipgloss.NewStyle().Background(lipgloss.Color("22"))
)

// openDB opens the match history database named by the config.
func openDB() (*storage.DB, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// gameOptions returns the game settings from the config.
func gameOptions() []cubetac.Option {
	return []cubetac.Option{
		cubetac.WithRotationDuration(cfg.RotationDuration),
	}
}

func markString(m types.Mark) string {
	switch m {
	case types.X:
		return xStyle.Render("X")
	case types.O:
		return oStyle.Render("O")
	default:
		return statusStyle.Render("·")
	}
}

// renderBoard draws the front grid, top row first. cursor may be nil.
func renderBoard(grid cube.Grid, cursor *cubetac.Cell, win *cubetac.Line) string {
	var b strings.Builder
	b.WriteString("  +---+---+---+\n")
	for row := 2; row >= 0; row-- {
		b.WriteString("  |")
		for col := 0; col < 3; col++ {
			c := cubetac.Cell{Row: row, Col: col}
			cell := " " + markString(grid[row][col]) + " "
			switch {
			case cursor != nil && *cursor == c:
				cell = cursorStyle.Render(cell)
			case win != nil && win.Contains(c):
				cell = winStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString("|")
		}
		b.WriteString("\n  +---+---+---+\n")
	}
	return b.String()
}

// renderStatus summarizes whose turn it is, or who won.
func renderStatus(rs cubetac.RenderState) string {
	if rs.Winner != types.None {
		line := ""
		if rs.WinLine != nil {
			line = " (" + rs.WinLine.Name + ")"
		}
		return turnStyle.Render(fmt.Sprintf("%s wins%s!", rs.Winner, line))
	}
	status := turnStyle.Render(fmt.Sprintf("%s to move", rs.CurrentPlayer))
	if r := rs.Rotation; r != nil {
		m := types.RotateMove(r.Axis, r.Layer, r.Turn)
		status += statusStyle.Render(fmt.Sprintf("  turning %s %3.0f%%", m.Notation(), r.Progress*100))
	}
	return status
}

// renderMoves shows the most recent moves.
func renderMoves(moves []types.Move, max int) string {
	if len(moves) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Moves: ")
	start := 0
	if len(moves) > max {
		start = len(moves) - max
		b.WriteString("... ")
	}
	b.WriteString(moveStyle.Render(types.FormatMoves(moves[start:])))
	return b.String()
}

func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%d:%05.2f", mins, secs)
}
