package cubetac

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

func front(x, y int) types.Vec {
	return types.Vec{X: x, Y: y, Z: 1}
}

// settle drives any in-flight turn to completion in frame-sized steps.
func settle(t *testing.T, g *Game) {
	t.Helper()
	for i := 0; g.Rotating(); i++ {
		if i > 1000 {
			t.Fatal("layer turn never committed")
		}
		if _, err := g.Tick(16 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
}

func mustPlay(t *testing.T, g *Game, pos types.Vec) {
	t.Helper()
	out, err := g.Play(pos)
	if err != nil {
		t.Fatal(err)
	}
	if out != Accepted {
		t.Fatalf("Play(%v) = %v", pos, out)
	}
}

func mustRotate(t *testing.T, g *Game, axis types.Axis, layer int, turn types.Turn) {
	t.Helper()
	out, err := g.RotateLayer(axis, layer, turn)
	if err != nil {
		t.Fatal(err)
	}
	if out != Accepted {
		t.Fatalf("RotateLayer(%v, %d, %d) = %v", axis, layer, turn, out)
	}
	settle(t, g)
}

func TestFirstMarkPassesTurn(t *testing.T) {
	g := NewGame()
	mustPlay(t, g, front(0, 0))

	if g.CurrentPlayer() != types.O {
		t.Errorf("current player = %v, want O", g.CurrentPlayer())
	}
	if g.MoveCount() != 1 {
		t.Errorf("move count = %d, want 1", g.MoveCount())
	}
	if g.Winner() != types.None {
		t.Errorf("winner = %v, want none", g.Winner())
	}
	grid, err := g.FrontGrid()
	if err != nil {
		t.Fatal(err)
	}
	if grid[1][1] != types.X {
		t.Errorf("centre = %v, want X", grid[1][1])
	}
}

func TestTopRowWins(t *testing.T) {
	g := NewGame()
	for x := -1; x <= 1; x++ {
		out, err := g.Mark(front(x, 1), types.Front, types.X)
		if err != nil || out != Accepted {
			t.Fatalf("Mark(%d,1) = %v, %v", x, out, err)
		}
	}

	if g.Winner() != types.X {
		t.Fatalf("winner = %v, want X", g.Winner())
	}
	line, ok := g.WinningLine()
	if !ok || line.Name != "row 2" {
		t.Errorf("winning line = %+v", line)
	}
}

func TestRotateThenUnrotateRestoresLattice(t *testing.T) {
	g := NewGame()
	mustPlay(t, g, front(1, 1))
	mustPlay(t, g, front(1, -1))
	before := *g.Lattice()

	mustRotate(t, g, types.AxisX, 1, types.TurnCW)
	if *g.Lattice() == before {
		t.Fatal("rotation changed nothing")
	}
	mustRotate(t, g, types.AxisX, 1, types.TurnCCW)

	if *g.Lattice() != before {
		t.Errorf("lattice not restored:\n%s", g.CubeString())
	}
	if g.MoveCount() != 4 {
		t.Errorf("move count = %d, want 4", g.MoveCount())
	}
}

func TestTickCommitsOnlyAtEnd(t *testing.T) {
	g := NewGame(WithRotationDuration(400 * time.Millisecond))
	before := *g.Lattice()

	if out, _ := g.RotateLayer(types.AxisY, 1, types.TurnCCW); out != Accepted {
		t.Fatalf("RotateLayer = %v", out)
	}
	for i := 0; i < 3; i++ {
		done, err := g.Tick(100 * time.Millisecond)
		if err != nil || done {
			t.Fatalf("tick %d: done=%v err=%v", i, done, err)
		}
		if *g.Lattice() != before || g.MoveCount() != 0 || g.CurrentPlayer() != types.X {
			t.Fatalf("tick %d: state changed before commit", i)
		}
	}

	done, err := g.Tick(100 * time.Millisecond)
	if err != nil || !done {
		t.Fatalf("final tick: done=%v err=%v", done, err)
	}
	if g.State() != StateIdle {
		t.Error("game should be idle after commit")
	}
	if g.MoveCount() != 1 || g.CurrentPlayer() != types.O {
		t.Errorf("after commit: moves=%d current=%v", g.MoveCount(), g.CurrentPlayer())
	}

	// Idle ticks are no-ops.
	if done, err := g.Tick(time.Second); done || err != nil {
		t.Errorf("idle tick: done=%v err=%v", done, err)
	}
}

func TestZeroDurationCommitsOnNextTick(t *testing.T) {
	g := NewGame(WithRotationDuration(0))
	if out, _ := g.RotateLayer(types.AxisZ, 0, types.TurnCW); out != Accepted {
		t.Fatalf("RotateLayer = %v", out)
	}
	if !g.Rotating() {
		t.Fatal("turn should wait for a tick")
	}
	done, err := g.Tick(0)
	if err != nil || !done {
		t.Errorf("Tick(0): done=%v err=%v", done, err)
	}
}

func TestRequestsRejectedWhileRotating(t *testing.T) {
	g := NewGame()
	mustPlay(t, g, front(0, 0))
	if out, _ := g.RotateLayer(types.AxisX, -1, types.TurnCW); out != Accepted {
		t.Fatalf("RotateLayer = %v", out)
	}
	before := *g.Lattice()
	moves, current := g.MoveCount(), g.CurrentPlayer()

	if out, err := g.Play(front(1, 1)); out != RejectedBusy || err != nil {
		t.Errorf("Play while rotating = %v, %v", out, err)
	}
	if out, err := g.RotateLayer(types.AxisY, 0, types.TurnCCW); out != RejectedBusy || err != nil {
		t.Errorf("RotateLayer while rotating = %v, %v", out, err)
	}
	if *g.Lattice() != before || g.MoveCount() != moves || g.CurrentPlayer() != current {
		t.Error("rejected requests changed state")
	}

	settle(t, g)
	if g.MoveCount() != moves+1 {
		t.Errorf("move count = %d, want %d", g.MoveCount(), moves+1)
	}
}

func TestRequestsRejectedAfterWin(t *testing.T) {
	g := NewGame()
	for y := -1; y <= 1; y++ {
		if out, _ := g.Mark(front(-1, y), types.Front, types.O); out != Accepted {
			t.Fatalf("Mark = %v", out)
		}
	}
	if g.Winner() != types.O {
		t.Fatalf("winner = %v, want O", g.Winner())
	}
	before := *g.Lattice()

	if out, _ := g.Play(front(1, 1)); out != RejectedFinished {
		t.Errorf("Play after win = %v", out)
	}
	if out, _ := g.RotateLayer(types.AxisX, -1, types.TurnCW); out != RejectedFinished {
		t.Errorf("RotateLayer after win = %v", out)
	}
	if *g.Lattice() != before || g.Winner() != types.O {
		t.Error("state changed after win")
	}
}

func TestMarkRejections(t *testing.T) {
	g := NewGame()
	mustPlay(t, g, front(0, 0))

	tests := []struct {
		name   string
		pos    types.Vec
		dir    types.Vec
		player types.Mark
		want   Outcome
	}{
		{"occupied", front(0, 0), types.Front, types.O, RejectedOccupied},
		{"middle slice", types.Vec{X: 0, Y: 0, Z: 0}, types.Front, types.O, RejectedNotFront},
		{"back slice", types.Vec{X: 1, Y: 1, Z: -1}, types.Front, types.O, RejectedNotFront},
		{"side face", front(1, 0), types.Vec{X: 1}, types.O, RejectedNotFront},
		{"no player", front(1, 0), types.Front, types.None, RejectedInvalid},
		{"off lattice", types.Vec{X: 2, Y: 0, Z: 1}, types.Front, types.O, RejectedInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := g.Mark(tt.pos, tt.dir, tt.player)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("got %v, want %v", out, tt.want)
			}
		})
	}
	if g.MoveCount() != 1 {
		t.Errorf("rejections changed move count to %d", g.MoveCount())
	}
}

func TestRotateRejectsInvalidArguments(t *testing.T) {
	g := NewGame()
	if out, err := g.RotateLayer(types.AxisX, 2, types.TurnCW); out != RejectedInvalid || err != nil {
		t.Errorf("layer 2 = %v, %v", out, err)
	}
	if out, err := g.RotateLayer(types.Axis(5), 0, types.TurnCW); out != RejectedInvalid || err != nil {
		t.Errorf("axis 5 = %v, %v", out, err)
	}
	if out, err := g.RotateLayer(types.AxisX, 0, types.Turn(2)); out != RejectedInvalid || err != nil {
		t.Errorf("half turn = %v, %v", out, err)
	}
	if g.Rotating() {
		t.Error("invalid request started a turn")
	}
}

func TestMarksTravelAndReturn(t *testing.T) {
	g := NewGame()
	mustPlay(t, g, front(0, 0))                     // X on the centre cubie
	mustRotate(t, g, types.AxisY, 0, types.TurnCCW) // O turns the middle row

	grid, _ := g.FrontGrid()
	if grid[1][1] != types.None {
		t.Fatalf("centre should show a fresh face, got %v", grid[1][1])
	}
	mustPlay(t, g, front(0, 0)) // X marks the face that rotated in

	mustRotate(t, g, types.AxisY, 0, types.TurnCW) // O turns it back
	grid, _ = g.FrontGrid()
	if grid[1][1] != types.X {
		t.Errorf("original mark should be back in the centre, got %v", grid[1][1])
	}

	l := g.Lattice()
	left, _ := l.At(types.Vec{X: -1, Y: 0, Z: 0})
	f, err := left.FaceToward(types.Vec{X: -1})
	if err != nil {
		t.Fatal(err)
	}
	if left.Marks[f] != types.X {
		t.Errorf("second mark should face left on cubie %v\n%s", left.ID, g.CubeString())
	}
}

func TestWinDoesNotDependOnHistory(t *testing.T) {
	direct := NewGame()
	for _, m := range []struct {
		pos    types.Vec
		player types.Mark
	}{
		{front(-1, 1), types.X},
		{front(0, 0), types.O},
		{front(0, 1), types.X},
		{front(1, 1), types.X},
	} {
		if out, _ := direct.Mark(m.pos, types.Front, m.player); out != Accepted {
			t.Fatalf("Mark = %v", out)
		}
	}

	spun := NewGame()
	spun.Mark(front(-1, 1), types.Front, types.X)
	spun.Mark(front(0, 0), types.Front, types.O)
	spun.Mark(front(0, 1), types.Front, types.X)
	for i := 0; i < 4; i++ {
		mustRotate(t, spun, types.AxisY, 1, types.TurnCCW)
		if spun.Winner() != types.None {
			t.Fatalf("unexpected winner after %d turns", i+1)
		}
	}
	spun.Mark(front(1, 1), types.Front, types.X)

	dg, _ := direct.FrontGrid()
	sg, _ := spun.FrontGrid()
	if dg != sg {
		t.Fatalf("grids differ:\n%v\n%v", dg, sg)
	}
	dl, _ := direct.WinningLine()
	sl, _ := spun.WinningLine()
	if direct.Winner() != spun.Winner() || dl.Name != sl.Name {
		t.Errorf("direct: %v %s, spun: %v %s", direct.Winner(), dl.Name, spun.Winner(), sl.Name)
	}
}

func TestEvaluateGridScanOrder(t *testing.T) {
	X, O, N := types.X, types.O, types.None
	tests := []struct {
		name   string
		grid   cube.Grid
		winner types.Mark
		line   string
	}{
		{"empty", cube.Grid{}, N, ""},
		{"bottom row", cube.Grid{{O, O, O}, {X, X, N}, {N, N, X}}, O, "row 0"},
		{"column", cube.Grid{{X, O, N}, {X, O, N}, {X, N, N}}, X, "column 0"},
		{"diagonal", cube.Grid{{X, O, O}, {N, X, N}, {O, N, X}}, X, "diagonal"},
		{"anti-diagonal", cube.Grid{{X, N, O}, {X, O, N}, {O, N, X}}, O, "anti-diagonal"},
		{"row before column", cube.Grid{{O, N, X}, {O, N, X}, {O, N, X}}, O, "column 0"},
		{"rows first", cube.Grid{{X, O, O}, {X, N, N}, {X, X, X}}, X, "row 2"},
		{"columns before diagonals", cube.Grid{{O, N, X}, {N, O, X}, {N, N, X}}, X, "column 2"},
		{"two players, row wins", cube.Grid{{O, N, X}, {O, O, O}, {O, N, X}}, O, "row 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluateGrid(tt.grid)
			if res.Winner != tt.winner {
				t.Errorf("winner = %v, want %v", res.Winner, tt.winner)
			}
			name := ""
			if res.Line != nil {
				name = res.Line.Name
			}
			if name != tt.line {
				t.Errorf("line = %q, want %q", name, tt.line)
			}
		})
	}
}

func TestCallbacks(t *testing.T) {
	g := NewGame()
	var moves []types.Move
	wins := 0
	resets := 0
	g.OnMove(func(m types.Move) { moves = append(moves, m) })
	g.OnWin(func(w types.Mark, l Line) {
		wins++
		if w != types.X || l.Name != "row 1" {
			t.Errorf("OnWin(%v, %s)", w, l.Name)
		}
	})
	g.OnReset(func() { resets++ })

	mustRotate(t, g, types.AxisZ, 1, types.TurnCCW) // X
	for x := -1; x <= 1; x++ {
		g.Mark(front(x, 0), types.Front, types.X)
	}
	if len(moves) != 4 {
		t.Fatalf("OnMove fired %d times, want 4", len(moves))
	}
	if moves[0].Kind != types.MoveRotate || moves[0].Player != types.X || moves[0].Notation() != "z1" {
		t.Errorf("first move = %+v", moves[0])
	}
	if wins != 1 {
		t.Errorf("OnWin fired %d times", wins)
	}

	g.Reset()
	if resets != 1 {
		t.Errorf("OnReset fired %d times", resets)
	}
	if g.MoveCount() != 0 || g.Winner() != types.None || g.CurrentPlayer() != types.X || len(g.History()) != 0 {
		t.Error("reset did not clear session state")
	}
	if *g.Lattice() != *cube.New() {
		t.Error("reset did not rebuild the lattice")
	}
}

func TestHistoryTimestamps(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewGame(WithClock(func() time.Time { return now }))

	now = now.Add(1500 * time.Millisecond)
	mustPlay(t, g, front(0, 0))
	now = now.Add(500 * time.Millisecond)
	mustRotate(t, g, types.AxisX, 0, types.TurnCW)

	h := g.History()
	if len(h) != 2 {
		t.Fatalf("history has %d moves", len(h))
	}
	if h[0].Timestamp != 1500 || h[1].Timestamp != 2000 {
		t.Errorf("timestamps = %d, %d", h[0].Timestamp, h[1].Timestamp)
	}
	if got := types.FormatMoves(h); got != "X(0,0,1) x0'" {
		t.Errorf("history = %q", got)
	}

	g2 := NewGame(WithMoveHistory(false))
	mustPlay(t, g2, front(0, 0))
	if len(g2.History()) != 0 {
		t.Error("history should be disabled")
	}
}

func TestFirstPlayerOption(t *testing.T) {
	g := NewGame(WithFirstPlayer(types.O))
	if g.CurrentPlayer() != types.O {
		t.Fatalf("current player = %v", g.CurrentPlayer())
	}
	mustPlay(t, g, front(0, 0))
	g.Reset()
	if g.CurrentPlayer() != types.O {
		t.Errorf("after reset current player = %v", g.CurrentPlayer())
	}
}

func TestApplyParsedMoves(t *testing.T) {
	moves, err := types.ParseMoves("X(-1,-1,1) O(0,0,1) X(0,-1,1) y1 X(1,-1,1)")
	if err != nil {
		t.Fatal(err)
	}
	g := NewGame()
	for _, m := range moves {
		out, err := g.Apply(m)
		if err != nil || out != Accepted {
			t.Fatalf("Apply(%v) = %v, %v", m, out, err)
		}
		if err := g.Settle(); err != nil {
			t.Fatal(err)
		}
	}
	if g.Winner() != types.X {
		t.Errorf("winner = %v\n%s", g.Winner(), g.CubeString())
	}
	if out, _ := g.Apply(types.Move{Kind: "jump"}); out != RejectedInvalid {
		t.Errorf("unknown kind = %v", out)
	}
}

func TestSnapshotInterpolatesMovingLayer(t *testing.T) {
	g := NewGame(WithRotationDuration(400*time.Millisecond), WithEasing(Linear))
	if out, _ := g.RotateLayer(types.AxisX, 1, types.TurnCW); out != Accepted {
		t.Fatalf("RotateLayer = %v", out)
	}
	g.Tick(200 * time.Millisecond)

	rs := g.Snapshot()
	if rs.State != "rotating" || rs.Rotation == nil {
		t.Fatalf("snapshot state = %q rotation = %v", rs.State, rs.Rotation)
	}
	if rs.Rotation.Progress != 0.5 {
		t.Errorf("progress = %f", rs.Rotation.Progress)
	}
	if math.Abs(rs.Rotation.Angle+math.Pi/4) > 1e-12 {
		t.Errorf("angle = %f, want -pi/4", rs.Rotation.Angle)
	}

	moving := 0
	for _, c := range rs.Cubies {
		if !c.Moving {
			if c.Pose != (cube.Pose{Pos: [3]float64{float64(c.Pos.X), float64(c.Pos.Y), float64(c.Pos.Z)}, Rot: cube.IdentityQuat}) {
				t.Errorf("still cubie %v has pose %+v", c.ID, c.Pose)
			}
			continue
		}
		moving++
		if c.Pos != c.ID {
			t.Errorf("cubie %v committed early", c.ID)
		}
		if c.ID == (types.Vec{X: 1, Y: 0, Z: 1}) {
			// Halfway from front to top: (1, sin45, cos45).
			want := [3]float64{1, math.Sqrt2 / 2, math.Sqrt2 / 2}
			for i := range want {
				if math.Abs(c.Pose.Pos[i]-want[i]) > 1e-9 {
					t.Errorf("pose = %v, want %v", c.Pose.Pos, want)
					break
				}
			}
		}
	}
	if moving != cube.LayerSize {
		t.Errorf("%d cubies moving, want %d", moving, cube.LayerSize)
	}

	settle(t, g)
	rs = g.Snapshot()
	if rs.Rotation != nil || rs.State != "idle" {
		t.Error("snapshot should be idle after commit")
	}
}

func TestCorruptOrientationIsReported(t *testing.T) {
	g := NewGame()
	c, _ := g.lattice.At(front(1, 1))
	c.Orient = cube.Rotation(99)

	out, err := g.Play(front(1, 1))
	if !errors.Is(err, ErrOrientationInvariant) {
		t.Fatalf("Play error = %v", err)
	}
	if out == Accepted || g.MoveCount() != 0 {
		t.Error("corrupt cubie should not accept a mark")
	}

	if out, err := g.RotateLayer(types.AxisY, 1, types.TurnCCW); out != Accepted || err != nil {
		t.Fatalf("RotateLayer = %v, %v", out, err)
	}
	before := *g.lattice
	err = g.Settle()
	if !errors.Is(err, ErrOrientationInvariant) {
		t.Fatalf("Settle error = %v", err)
	}
	if *g.lattice != before || g.MoveCount() != 0 || g.Rotating() {
		t.Error("failed commit should leave the game idle and unchanged")
	}
}

func TestCorruptNeighbourAbortsMark(t *testing.T) {
	g := NewGame()
	moved := 0
	g.OnMove(func(types.Move) { moved++ })
	c, _ := g.lattice.At(front(-1, -1))
	c.Orient = cube.Rotation(99)

	out, err := g.Play(front(0, 0))
	if !errors.Is(err, ErrOrientationInvariant) {
		t.Fatalf("Play error = %v", err)
	}
	if out != RejectedInvalid {
		t.Errorf("outcome = %v, want %v", out, RejectedInvalid)
	}
	if g.MoveCount() != 0 || g.CurrentPlayer() != types.X || moved != 0 {
		t.Errorf("moves=%d current=%v callbacks=%d", g.MoveCount(), g.CurrentPlayer(), moved)
	}
	center, _ := g.lattice.At(front(0, 0))
	if m, err := center.FrontMark(); err != nil || m != types.None {
		t.Errorf("centre mark = %v, %v; want unmarked", m, err)
	}
}

func TestControlsAreValidTurns(t *testing.T) {
	seen := make(map[string]bool)
	for key, m := range Controls {
		if m.Kind != types.MoveRotate {
			t.Errorf("%q is not a rotation", key)
		}
		if err := cube.ValidateTurn(m.Axis, m.Layer, m.Turn); err != nil {
			t.Errorf("%q: %v", key, err)
		}
		if seen[m.Notation()] {
			t.Errorf("%q duplicates %s", key, m.Notation())
		}
		seen[m.Notation()] = true
	}
	if Controls["1"].Notation() != "x-1'" || Controls["q"].Notation() != "y1" {
		t.Errorf("unexpected bindings: 1=%s q=%s", Controls["1"], Controls["q"])
	}
}
