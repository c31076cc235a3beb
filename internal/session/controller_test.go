package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

type fakeObserver struct {
	mu        sync.Mutex
	moves     []types.Move
	outcomes  []cubetac.Outcome
	wins      []types.Mark
	rotations int
}

func (f *fakeObserver) ObserveMove(m types.Move) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, m)
}

func (f *fakeObserver) ObserveOutcome(o cubetac.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
}

func (f *fakeObserver) ObserveWin(w types.Mark) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wins = append(f.wins, w)
}

func (f *fakeObserver) ObserveRotation(time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotations++
}

type fakeRecorder struct {
	moves, wins, resets int
}

func (f *fakeRecorder) HandleMove(types.Move)              { f.moves++ }
func (f *fakeRecorder) HandleWin(types.Mark, cubetac.Line) { f.wins++ }
func (f *fakeRecorder) HandleReset()                       { f.resets++ }

func startController(t *testing.T, g *cubetac.Game, opts ...Option) *Controller {
	t.Helper()
	c := New(g, append([]Option{WithFrameInterval(time.Millisecond)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	})
	return c
}

// waitIdle polls until the in-flight turn, if any, has committed.
func waitIdle(t *testing.T, c *Controller) cubetac.RenderState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rs, err := c.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if rs.Rotation == nil {
			return rs
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("layer turn never committed")
	return cubetac.RenderState{}
}

func TestMarkAndRotate(t *testing.T) {
	obs := &fakeObserver{}
	rec := &fakeRecorder{}
	g := cubetac.NewGame(cubetac.WithRotationDuration(5 * time.Millisecond))
	c := startController(t, g, WithObserver(obs), WithRecorder(rec))
	ctx := context.Background()

	out, rs, err := c.Mark(ctx, types.Vec{Z: 1}, types.None)
	if err != nil || out != cubetac.Accepted {
		t.Fatalf("Mark = %v, %v", out, err)
	}
	if rs.MoveCount != 1 || rs.CurrentPlayer != types.O {
		t.Errorf("Mark state: moves=%d current=%v", rs.MoveCount, rs.CurrentPlayer)
	}
	out, rs, err = c.Rotate(ctx, types.AxisY, 0, types.TurnCCW)
	if err != nil || out != cubetac.Accepted {
		t.Fatalf("Rotate = %v, %v", out, err)
	}
	if rs.Rotation == nil || rs.Rotation.Progress != 0 || rs.MoveCount != 1 {
		t.Errorf("Rotate state = %+v, want the turn at zero progress", rs.Rotation)
	}
	// A second turn is refused until the first commits.
	if out, _, _ := c.Rotate(ctx, types.AxisX, 0, types.TurnCW); out != cubetac.RejectedBusy {
		t.Errorf("overlapping Rotate = %v", out)
	}

	rs = waitIdle(t, c)
	if rs.MoveCount != 2 || rs.CurrentPlayer != types.X {
		t.Errorf("after turn: moves=%d current=%v", rs.MoveCount, rs.CurrentPlayer)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.moves) != 2 || obs.rotations != 1 {
		t.Errorf("observer saw %d moves, %d rotations", len(obs.moves), obs.rotations)
	}
	if len(obs.outcomes) != 3 || obs.outcomes[2] != cubetac.RejectedBusy {
		t.Errorf("outcomes = %v", obs.outcomes)
	}
	if rec.moves != 2 {
		t.Errorf("recorder saw %d moves", rec.moves)
	}
}

func TestExplicitPlayerAndWin(t *testing.T) {
	obs := &fakeObserver{}
	rec := &fakeRecorder{}
	c := startController(t, cubetac.NewGame(), WithObserver(obs), WithRecorder(rec))
	ctx := context.Background()

	for x := -1; x <= 1; x++ {
		if out, _, err := c.Mark(ctx, types.Vec{X: x, Y: 1, Z: 1}, types.O); out != cubetac.Accepted || err != nil {
			t.Fatalf("Mark = %v, %v", out, err)
		}
	}
	rs, _ := c.Snapshot(ctx)
	if rs.Winner != types.O || rs.WinLine == nil || rs.WinLine.Name != "row 2" {
		t.Fatalf("winner = %v line = %v", rs.Winner, rs.WinLine)
	}
	if out, _, _ := c.Mark(ctx, types.Vec{Z: 1}, types.None); out != cubetac.RejectedFinished {
		t.Errorf("Mark after win = %v", out)
	}

	rs, err := c.Reset(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rs.Winner != types.None || rs.MoveCount != 0 {
		t.Error("reset did not clear the game")
	}
	if rec.wins != 1 || rec.resets != 1 || len(obs.wins) != 1 {
		t.Errorf("wins=%d resets=%d observed=%d", rec.wins, rec.resets, len(obs.wins))
	}
}

func TestConcurrentRequestsAreSerialized(t *testing.T) {
	c := startController(t, cubetac.NewGame())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan cubetac.Outcome, 18)
	for i := 0; i < 18; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pos := types.Vec{X: i%3 - 1, Y: (i/3)%3 - 1, Z: 1}
			out, _, err := c.Mark(ctx, pos, types.None)
			if err != nil {
				t.Error(err)
			}
			results <- out
		}(i)
	}
	wg.Wait()
	close(results)

	accepted := 0
	for out := range results {
		if out == cubetac.Accepted {
			accepted++
		}
	}
	rs, _ := c.Snapshot(ctx)
	if rs.MoveCount != accepted {
		t.Errorf("move count %d != accepted %d", rs.MoveCount, accepted)
	}
	// Every cell was requested twice; only the first request can land.
	if accepted > 9 {
		t.Errorf("%d marks accepted on 9 cells", accepted)
	}
}

func TestSubscribeReceivesFrames(t *testing.T) {
	g := cubetac.NewGame(cubetac.WithRotationDuration(20 * time.Millisecond))
	c := startController(t, g)
	ctx := context.Background()

	ch, cancel, err := c.Subscribe(ctx, 64)
	if err != nil {
		t.Fatal(err)
	}
	first := <-ch
	if first.State != "idle" || first.MoveCount != 0 {
		t.Fatalf("initial frame = %+v", first)
	}

	if out, _, _ := c.Rotate(ctx, types.AxisZ, 1, types.TurnCW); out != cubetac.Accepted {
		t.Fatalf("Rotate = %v", out)
	}

	sawRotating := false
	timeout := time.After(2 * time.Second)
	for {
		select {
		case rs := <-ch:
			if rs.Rotation != nil {
				sawRotating = true
			}
			if rs.MoveCount == 1 && rs.Rotation == nil {
				if !sawRotating {
					t.Error("no animation frames before commit")
				}
				cancel()
				if c.Subscribers() != 0 {
					t.Error("cancel did not unsubscribe")
				}
				return
			}
		case <-timeout:
			t.Fatal("commit frame never arrived")
		}
	}
}

func TestStoppedController(t *testing.T) {
	c := New(cubetac.NewGame())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	ch, _, err := c.Subscribe(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	<-ch
	cancel()
	<-done

	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}
	if _, err := c.Snapshot(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Snapshot after stop = %v", err)
	}
}

func TestDoHonoursContext(t *testing.T) {
	c := New(cubetac.NewGame()) // never run
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Reset(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Reset = %v", err)
	}
}

func TestFirstFrameStartsAtRequest(t *testing.T) {
	const duration = 10 * time.Second
	g := cubetac.NewGame(cubetac.WithRotationDuration(duration))
	c := startController(t, g, WithFrameInterval(200*time.Millisecond))
	ctx := context.Background()

	// Request the turn partway through a frame.
	time.Sleep(150 * time.Millisecond)
	requested := time.Now()
	if out, _, err := c.Rotate(ctx, types.AxisX, 1, types.TurnCW); out != cubetac.Accepted || err != nil {
		t.Fatalf("Rotate = %v, %v", out, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rs, err := c.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if rs.Rotation != nil && rs.Rotation.Progress > 0 {
			advanced := time.Duration(rs.Rotation.Progress * float64(duration))
			if elapsed := time.Since(requested); advanced > elapsed+time.Millisecond {
				t.Errorf("turn advanced %v only %v after the request", advanced, elapsed)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("turn never advanced")
}
