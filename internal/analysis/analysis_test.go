package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

func record(t *testing.T, id string, winner types.Mark, finished bool, script string) GameRecord {
	t.Helper()
	moves, err := types.ParseMoves(script)
	if err != nil {
		t.Fatal(err)
	}
	for i := range moves {
		moves[i].Timestamp = int64(i) * 1000
	}
	return GameRecord{GameID: id, Winner: winner, Finished: finished, Duration: 10 * time.Second, Moves: moves}
}

func TestSummarize(t *testing.T) {
	games := []GameRecord{
		record(t, "a", types.X, true, "X(-1,1,1) O(0,0,1) X(0,1,1) O(0,-1,1) X(1,1,1)"),
		record(t, "b", types.O, true, "X(0,0,1) y1 X(1,1,1) O(-1,-1,1)"),
		record(t, "c", types.None, true, "X(0,0,1) x0"),
		record(t, "d", types.None, false, "X(0,0,1)"),
	}

	s := Summarize(games)
	if s.Games != 4 || s.Finished != 3 || s.NoWinner != 1 {
		t.Errorf("games = %d, finished = %d, no winner = %d", s.Games, s.Finished, s.NoWinner)
	}
	if s.Wins[types.X] != 1 || s.Wins[types.O] != 1 {
		t.Errorf("wins = %v", s.Wins)
	}
	if s.TotalMoves != 12 || s.Rotations != 2 || s.Marks != 10 {
		t.Errorf("moves = %d, rotations = %d, marks = %d", s.TotalMoves, s.Rotations, s.Marks)
	}
	if s.AvgMoves != 3 || s.AvgMovesToWin != 4.5 {
		t.Errorf("avg moves = %v, to win = %v", s.AvgMoves, s.AvgMovesToWin)
	}
	if s.FirstMoverWins != 0.5 {
		t.Errorf("first mover wins = %v", s.FirstMoverWins)
	}
	if s.AvgDurationMs != 10000 || s.LongestPauseMs != 1000 {
		t.Errorf("duration = %d, pause = %d", s.AvgDurationMs, s.LongestPauseMs)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Games != 0 || s.AvgMoves != 0 || s.Wins[types.X] != 0 {
		t.Errorf("summary = %+v", s)
	}
}

func TestMineSequences(t *testing.T) {
	games := []GameRecord{
		record(t, "a", types.X, true, "X(0,0,1) y1 O(1,1,1) y1"),
		record(t, "b", types.None, false, "X(0,0,1) y1 O(1,1,1)"),
		record(t, "c", types.None, false, "O(0,0,1) y1"),
	}

	report := MineSequences(games, 1, 3, 5)

	ones := report.Top[1]
	if len(ones) == 0 || strings.Join(ones[0].Moves, " ") != "y1" || ones[0].Count != 4 {
		t.Fatalf("top 1-runs = %+v", ones)
	}
	twos := report.Top[2]
	if len(twos) == 0 || strings.Join(twos[0].Moves, " ") != "X(0,0,1) y1" || twos[0].Count != 2 {
		t.Fatalf("top 2-runs = %+v", twos)
	}
	occ := twos[0].Occurrences
	if len(occ) != 2 || occ[0].GameID != "a" || occ[1].GameID != "b" || occ[0].StartIndex != 0 {
		t.Errorf("occurrences = %+v", occ)
	}
	threes := report.Top[3]
	if len(threes) != 1 || threes[0].Count != 2 {
		t.Errorf("3-runs = %+v", threes)
	}
	// "y1 O(1,1,1) y1" is seen once.
	if _, ok := report.Top[4]; ok {
		t.Error("mined past maxN")
	}
}

func TestOpenings(t *testing.T) {
	games := []GameRecord{
		record(t, "a", types.X, true, "X(0,0,1) O(1,1,1)"),
		record(t, "b", types.O, true, "X(0,0,1) O(1,1,1) x1"),
		record(t, "c", types.None, true, "X(1,1,1) O(0,0,1)"),
		record(t, "d", types.None, false, "X(1,1,1)"),
	}

	got := Openings(games, 2, 0)
	if len(got) != 2 {
		t.Fatalf("openings = %+v", got)
	}
	if strings.Join(got[0].Moves, " ") != "X(0,0,1) O(1,1,1)" || got[0].Count != 2 {
		t.Errorf("top opening = %+v", got[0])
	}
	if got[1].Count != 1 {
		t.Errorf("second opening = %+v", got[1])
	}
	if Openings(games, 0, 3) != nil {
		t.Error("depth 0 should yield nothing")
	}
}
