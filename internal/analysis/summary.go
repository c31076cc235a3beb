// Package analysis computes statistics over recorded games.
package analysis

import (
	"time"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// GameRecord is one recorded game as the analysis sees it.
type GameRecord struct {
	GameID   string
	Winner   types.Mark
	Finished bool
	Duration time.Duration
	Moves    []types.Move
}

// Summary contains aggregate statistics for a set of games.
type Summary struct {
	Games      int                `json:"games"`
	Finished   int                `json:"finished"`
	Wins       map[types.Mark]int `json:"wins"`
	NoWinner   int                `json:"no_winner"`
	TotalMoves int                `json:"total_moves"`
	Marks      int                `json:"marks"`
	Rotations  int                `json:"rotations"`

	AvgMoves       float64 `json:"avg_moves"`
	AvgMovesToWin  float64 `json:"avg_moves_to_win"`
	AvgDurationMs  int64   `json:"avg_duration_ms"`
	RotationShare  float64 `json:"rotation_share"`
	FirstMoverWins float64 `json:"first_mover_wins"` // Share of won games won by whoever moved first
	LongestPauseMs int64   `json:"longest_pause_ms"`
}

// Summarize aggregates games. Durations only count finished games.
func Summarize(games []GameRecord) Summary {
	s := Summary{
		Games: len(games),
		Wins:  map[types.Mark]int{types.X: 0, types.O: 0},
	}
	if len(games) == 0 {
		return s
	}

	var (
		won, firstMoverWon, wonMoves int
		duration                     time.Duration
	)
	for _, g := range games {
		s.TotalMoves += len(g.Moves)
		for _, m := range g.Moves {
			if m.Kind == types.MoveRotate {
				s.Rotations++
			} else {
				s.Marks++
			}
		}
		s.LongestPauseMs = max(s.LongestPauseMs, FindLongestPause(g.Moves))

		if !g.Finished {
			continue
		}
		s.Finished++
		duration += g.Duration
		if !g.Winner.IsPlayer() {
			s.NoWinner++
			continue
		}
		s.Wins[g.Winner]++
		won++
		wonMoves += len(g.Moves)
		if len(g.Moves) > 0 && g.Moves[0].Player == g.Winner {
			firstMoverWon++
		}
	}

	s.AvgMoves = float64(s.TotalMoves) / float64(s.Games)
	if s.TotalMoves > 0 {
		s.RotationShare = float64(s.Rotations) / float64(s.TotalMoves)
	}
	if s.Finished > 0 {
		s.AvgDurationMs = (duration / time.Duration(s.Finished)).Milliseconds()
	}
	if won > 0 {
		s.AvgMovesToWin = float64(wonMoves) / float64(won)
		s.FirstMoverWins = float64(firstMoverWon) / float64(won)
	}
	return s
}

// FindLongestPause finds the longest gap between consecutive moves.
func FindLongestPause(moves []types.Move) int64 {
	var longest int64
	for i := 1; i < len(moves); i++ {
		if gap := moves[i].Timestamp - moves[i-1].Timestamp; gap > longest {
			longest = gap
		}
	}
	return longest
}
