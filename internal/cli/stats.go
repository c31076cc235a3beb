package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac/internal/analysis"
	"github.com/SeamusWaldron/cubetac/internal/storage"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

var (
	statsLimit  int
	statsDepth  int
	statsMaxN   int
	statsTopK   int
	statsAsJSON bool
)

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded games",
	Long: `Show win rates, game lengths, common openings and recurring move runs
over the most recent recorded games.

Examples:
  cubetac history stats
  cubetac history stats --limit 500 --depth 3
  cubetac history stats --json`,
	Args: cobra.NoArgs,
	RunE: runHistoryStats,
}

func init() {
	historyCmd.AddCommand(historyStatsCmd)
	historyStatsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 100, "Number of recent games to analyze")
	historyStatsCmd.Flags().IntVar(&statsDepth, "depth", 2, "Opening length in moves")
	historyStatsCmd.Flags().IntVar(&statsMaxN, "max-run", 3, "Longest move run to mine")
	historyStatsCmd.Flags().IntVar(&statsTopK, "top", 5, "Entries to show per list")
	historyStatsCmd.Flags().BoolVar(&statsAsJSON, "json", false, "Output as JSON")
}

// statsReport is the JSON form of history stats.
type statsReport struct {
	Summary   analysis.Summary         `json:"summary"`
	Openings  []analysis.Sequence      `json:"openings"`
	Sequences *analysis.SequenceReport `json:"sequences"`
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := loadRecords(db, statsLimit)
	if err != nil {
		return err
	}

	report := statsReport{
		Summary:   analysis.Summarize(records),
		Openings:  analysis.Openings(records, statsDepth, statsTopK),
		Sequences: analysis.MineSequences(records, 2, statsMaxN, statsTopK),
	}

	out := cmd.OutOrStdout()
	if statsAsJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	s := report.Summary
	if s.Games == 0 {
		fmt.Fprintln(out, "No games recorded yet. Start one with: cubetac play")
		return nil
	}

	fmt.Fprintf(out, "Games:          %d (%d finished)\n", s.Games, s.Finished)
	fmt.Fprintf(out, "Wins:           X %d, O %d, none %d\n", s.Wins[types.X], s.Wins[types.O], s.NoWinner)
	fmt.Fprintf(out, "First mover:    won %.0f%% of decided games\n", s.FirstMoverWins*100)
	fmt.Fprintf(out, "Moves:          %.1f per game, %.1f to a win\n", s.AvgMoves, s.AvgMovesToWin)
	fmt.Fprintf(out, "Layer turns:    %.0f%% of moves\n", s.RotationShare*100)
	fmt.Fprintf(out, "Avg duration:   %s\n", formatElapsed(time.Duration(s.AvgDurationMs)*time.Millisecond))
	fmt.Fprintf(out, "Longest pause:  %s\n", formatElapsed(time.Duration(s.LongestPauseMs)*time.Millisecond))

	if len(report.Openings) > 0 {
		fmt.Fprintf(out, "\nOpenings (%d moves):\n", statsDepth)
		for _, seq := range report.Openings {
			fmt.Fprintf(out, "  %4d  %s\n", seq.Count, strings.Join(seq.Moves, " "))
		}
	}
	for n := 2; n <= statsMaxN; n++ {
		seqs := report.Sequences.Top[n]
		if len(seqs) == 0 {
			continue
		}
		fmt.Fprintf(out, "\nRecurring %d-move runs:\n", n)
		for _, seq := range seqs {
			fmt.Fprintf(out, "  %4d  %s\n", seq.Count, strings.Join(seq.Moves, " "))
		}
	}
	return nil
}

// loadRecords reads the most recent games with their moves.
func loadRecords(db *storage.DB, limit int) ([]analysis.GameRecord, error) {
	games, err := storage.NewGameRepository(db).List(limit)
	if err != nil {
		return nil, err
	}
	moveRepo := storage.NewMoveRepository(db)

	records := make([]analysis.GameRecord, 0, len(games))
	for _, g := range games {
		moves, err := moveRepo.Moves(g.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to load moves for %s: %w", g.GameID, err)
		}
		r := analysis.GameRecord{
			GameID:   g.GameID,
			Winner:   g.Winner,
			Finished: g.Finished(),
			Moves:    moves,
		}
		if g.EndedAt != nil {
			r.Duration = g.EndedAt.Sub(g.StartedAt)
		}
		records = append(records, r)
	}
	return records, nil
}
