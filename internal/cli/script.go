package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/internal/recorder"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

var (
	scriptNet    bool
	scriptStrict bool
)

var scriptCmd = &cobra.Command{
	Use:   `script "<moves>"`,
	Short: "Play a sequence of moves without a terminal UI",
	Long: `Apply moves in notation and print the resulting front face.

Marks are written X(x,y,z) or O(x,y,z); layer turns are <axis><layer>
with a trailing ' for -90 degrees. Rotations complete immediately.

Examples:
  cubetac script "X(0,0,1) O(1,1,1) x1' X(-1,1,1)"
  cubetac script --net "y1 y1 z0'"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().BoolVar(&scriptNet, "net", false, "Also print the whole cube as a net")
	scriptCmd.Flags().BoolVar(&scriptStrict, "strict", false, "Stop at the first rejected move")
}

func runScript(cmd *cobra.Command, args []string) error {
	moves, err := types.ParseMoves(strings.Join(args, " "))
	if err != nil {
		return err
	}

	game := cubetac.NewGame(gameOptions()...)
	if cfg.Record {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rec := recorder.New(db, "script")
		if err := rec.Attach(game); err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close game record")
			}
		}()
	}

	out := cmd.OutOrStdout()
	if err := playScript(game, moves, func(i int, m types.Move, o cubetac.Outcome) error {
		fmt.Fprintf(out, "move %d %s: %s\n", i+1, m.Notation(), o)
		if scriptStrict {
			return fmt.Errorf("move %d %s rejected: %s", i+1, m.Notation(), o)
		}
		return nil
	}); err != nil {
		return err
	}

	grid, err := game.FrontGrid()
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderBoard(grid, nil, nil))
	if scriptNet {
		fmt.Fprintln(out)
		fmt.Fprint(out, game.CubeString())
	}

	if line, ok := game.WinningLine(); ok {
		fmt.Fprintf(out, "Winner: %s (%s) after %d moves\n", game.Winner(), line.Name, game.MoveCount())
	} else {
		fmt.Fprintf(out, "No winner after %d moves, %s to move\n", game.MoveCount(), game.CurrentPlayer())
	}
	return nil
}

// playScript applies moves in order, completing each rotation before the
// next move. Marks without a player use the current player. rejected is
// called for every move the game refuses; returning an error stops play.
func playScript(g *cubetac.Game, moves []types.Move, rejected func(int, types.Move, cubetac.Outcome) error) error {
	for i, m := range moves {
		if m.Kind == types.MoveMark && m.Player == types.None {
			m.Player = g.CurrentPlayer()
		}
		out, err := g.Apply(m)
		if err != nil {
			return err
		}
		if !out.OK() {
			if err := rejected(i, m, out); err != nil {
				return err
			}
			continue
		}
		if err := g.Settle(); err != nil {
			return err
		}
	}
	return nil
}
