package cube

import (
	"fmt"
	"math"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Pose is the floating-point placement of a cubie, used while a layer is
// animating. Committed state is always integer.
type Pose struct {
	Pos [3]float64 `json:"pos"`
	Rot Quat       `json:"rot"`
}

// Pose returns the resting pose of c.
func (c *Cubie) Pose() Pose {
	return Pose{
		Pos: [3]float64{float64(c.Pos.X), float64(c.Pos.Y), float64(c.Pos.Z)},
		Rot: c.Orient.Quat(),
	}
}

// LayerTurn is a layer rotation that has been started but not committed.
// The lattice is untouched until CommitTurn.
type LayerTurn struct {
	Axis    types.Axis
	Layer   int
	Turn    types.Turn
	Members []int // Indices into Lattice.Cubies

	start []Pose
}

// ValidateTurn checks the arguments of a layer rotation.
func ValidateTurn(axis types.Axis, layer int, turn types.Turn) error {
	if !axis.Valid() || layer < -1 || layer > 1 || !turn.Valid() {
		return fmt.Errorf("%w: axis=%v layer=%d turn=%d", ErrInvalidLayer, axis, layer, turn)
	}
	return nil
}

// BeginTurn selects the layer and records the start pose of each member.
func (l *Lattice) BeginTurn(axis types.Axis, layer int, turn types.Turn) (*LayerTurn, error) {
	if err := ValidateTurn(axis, layer, turn); err != nil {
		return nil, err
	}

	members := l.Layer(axis, layer)
	if len(members) != LayerSize {
		return nil, fmt.Errorf("%w: layer %v=%d has %d cubies", ErrOrientationInvariant, axis, layer, len(members))
	}

	start := make([]Pose, len(members))
	for i, idx := range members {
		start[i] = l.Cubies[idx].Pose()
	}

	return &LayerTurn{
		Axis:    axis,
		Layer:   layer,
		Turn:    turn,
		Members: members,
		start:   start,
	}, nil
}

// Angle returns the full signed angle of the turn in radians.
func (t *LayerTurn) Angle() float64 {
	return float64(t.Turn) * math.Pi / 2
}

// Pivot returns the rotation of the layer at fraction f of the turn.
func (t *LayerTurn) Pivot(f float64) Quat {
	return AxisAngle(t.Axis, t.Angle()*f)
}

// Poses returns the pose of each member at fraction f of the turn, in the
// order of Members.
func (t *LayerTurn) Poses(f float64) []Pose {
	pivot := t.Pivot(f)
	poses := make([]Pose, len(t.start))
	for i, p := range t.start {
		poses[i] = Pose{
			Pos: pivot.Rotate(p.Pos),
			Rot: pivot.Mul(p.Rot),
		}
	}
	return poses
}

// CommitTurn applies the completed turn to the lattice. Every final pose is
// quantized before anything is written, so a failure leaves the lattice
// unchanged.
func (l *Lattice) CommitTurn(t *LayerTurn) error {
	final := t.Poses(1)
	positions := make([]types.Vec, len(final))
	orients := make([]Rotation, len(final))

	for i, p := range final {
		c := &l.Cubies[t.Members[i]]
		pos, err := QuantizePosition(p.Pos)
		if err != nil {
			return fmt.Errorf("failed to settle cubie %v: %w", c.ID, err)
		}
		rot, err := Quantize(p.Rot)
		if err != nil {
			return fmt.Errorf("failed to settle cubie %v: %w", c.ID, err)
		}
		if want := c.Orient.Then(QuarterTurn(t.Axis, t.Turn)); rot != want {
			return fmt.Errorf("%w: cubie %v settled to %d, expected %d", ErrOrientationInvariant, c.ID, rot, want)
		}
		positions[i] = pos
		orients[i] = rot
	}

	next := *l
	for i, idx := range t.Members {
		next.Cubies[idx].Pos = positions[i]
		next.Cubies[idx].Orient = orients[i]
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*l = next
	return nil
}

// RotateLayer turns a layer in one step, without animation.
func (l *Lattice) RotateLayer(axis types.Axis, layer int, turn types.Turn) error {
	t, err := l.BeginTurn(axis, layer, turn)
	if err != nil {
		return err
	}
	return l.CommitTurn(t)
}
