package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac/internal/storage"
)

var (
	historyLimit  int
	historyFormat string
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded games",
	Long: `List the most recent games from the match history, newest first.

Examples:
  cubetac history
  cubetac history --limit 50
  cubetac history moves <game-id> --format json -o game.json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyMovesCmd = &cobra.Command{
	Use:   "moves <game-id>",
	Short: "Export the moves of a recorded game",
	Long:  `Export the move sequence of a game in text or JSON format. A unique prefix of the game ID is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryMoves,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of games to show")

	historyCmd.AddCommand(historyMovesCmd)
	historyMovesCmd.Flags().StringVar(&historyFormat, "format", "txt", "Export format (txt, json)")
	historyMovesCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Output file (default: stdout)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	games, err := storage.NewGameRepository(db).List(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(games) == 0 {
		fmt.Fprintln(out, "No games recorded yet. Start one with: cubetac play")
		return nil
	}

	fmt.Fprintf(out, "%-10s %-20s %-8s %-7s %6s  %s\n", "ID", "STARTED", "SOURCE", "WINNER", "MOVES", "DURATION")
	for _, g := range games {
		fmt.Fprintf(out, "%-10s %-20s %-8s %-7s %6d  %s\n",
			g.GameID[:8],
			g.StartedAt.Local().Format("2006-01-02 15:04:05"),
			g.Source,
			winnerLabel(g),
			g.MoveCount,
			durationLabel(g),
		)
	}
	return nil
}

func winnerLabel(g storage.Game) string {
	switch {
	case !g.Finished():
		return "-"
	case g.Winner.IsPlayer():
		return g.Winner.String()
	default:
		return "none"
	}
}

func durationLabel(g storage.Game) string {
	if g.EndedAt == nil {
		return "in progress"
	}
	return formatElapsed(g.EndedAt.Sub(g.StartedAt).Round(100 * time.Millisecond))
}

func runHistoryMoves(cmd *cobra.Command, args []string) error {
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

	moves, err := storage.NewMoveRepository(db).GetByGame(game.GameID)
	if err != nil {
		return err
	}
	if len(moves) == 0 {
		return fmt.Errorf("no moves found for game %s", game.GameID)
	}

	var output string
	switch strings.ToLower(historyFormat) {
	case "txt":
		notations := make([]string, len(moves))
		for i, m := range moves {
			notations[i] = m.Notation
		}
		output = strings.Join(notations, " ")

	case "json":
		type moveJSON struct {
			Seq      int    `json:"seq"`
			TsMs     int64  `json:"ts_ms"`
			Kind     string `json:"kind"`
			Player   string `json:"player"`
			Notation string `json:"notation"`
		}
		type gameJSON struct {
			GameID string     `json:"game_id"`
			Winner string     `json:"winner,omitempty"`
			Moves  []moveJSON `json:"moves"`
		}

		doc := gameJSON{GameID: game.GameID, Winner: game.Winner.String()}
		for _, m := range moves {
			doc.Moves = append(doc.Moves, moveJSON{
				Seq:      m.Seq,
				TsMs:     m.TsMs,
				Kind:     string(m.Kind),
				Player:   m.Player.String(),
				Notation: m.Notation,
			})
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		output = string(data)

	default:
		return fmt.Errorf("unknown format: %s (use txt or json)", historyFormat)
	}

	if historyOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}

	if dir := filepath.Dir(historyOutput); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(historyOutput, []byte(output+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d moves to %s\n", len(moves), historyOutput)
	return nil
}
