package cubetac

import (
	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// CubieState is the drawable state of one cubie.
type CubieState struct {
	ID     types.Vec                 `json:"id"`
	Pos    types.Vec                 `json:"pos"`
	Orient int                       `json:"orient"`
	Marks  [cube.NumFaces]types.Mark `json:"marks"`
	Pose   cube.Pose                 `json:"pose"`
	Moving bool                      `json:"moving,omitempty"`
}

// RotationState describes an in-flight layer turn.
type RotationState struct {
	Axis     types.Axis `json:"axis"`
	Layer    int        `json:"layer"`
	Turn     types.Turn `json:"turn"`
	Progress float64    `json:"progress"` // Linear, 0..1
	Angle    float64    `json:"angle"`    // Eased pivot angle in radians
}

// RenderState is everything a renderer needs to draw one frame.
type RenderState struct {
	State         string         `json:"state"`
	Cubies        []CubieState   `json:"cubies"`
	CurrentPlayer types.Mark     `json:"current_player"`
	MoveCount     int            `json:"move_count"`
	Winner        types.Mark     `json:"winner"`
	WinLine       *Line          `json:"win_line,omitempty"`
	Rotation      *RotationState `json:"rotation,omitempty"`
}

// Snapshot returns the render state. While a layer turn is in flight the
// poses of its members are interpolated; Pos and Orient always hold the
// last committed values.
func (g *Game) Snapshot() RenderState {
	rs := RenderState{
		State:         g.State().String(),
		Cubies:        make([]CubieState, len(g.lattice.Cubies)),
		CurrentPlayer: g.current,
		MoveCount:     g.moves,
		Winner:        g.winner,
	}
	if g.line != nil {
		l := *g.line
		rs.WinLine = &l
	}

	for i := range g.lattice.Cubies {
		c := &g.lattice.Cubies[i]
		rs.Cubies[i] = CubieState{
			ID:     c.ID,
			Pos:    c.Pos,
			Orient: int(c.Orient),
			Marks:  c.Marks,
			Pose:   c.Pose(),
		}
	}

	if t := g.turn; t != nil {
		eased := g.cfg.easing(t.progress())
		poses := t.turn.Poses(eased)
		for i, idx := range t.turn.Members {
			rs.Cubies[idx].Pose = poses[i]
			rs.Cubies[idx].Moving = true
		}
		rs.Rotation = &RotationState{
			Axis:     t.turn.Axis,
			Layer:    t.turn.Layer,
			Turn:     t.turn.Turn,
			Progress: t.progress(),
			Angle:    t.turn.Angle() * eased,
		}
	}
	return rs
}
