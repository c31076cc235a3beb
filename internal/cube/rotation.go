package cube

import (
	"fmt"
	"math"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// GroupOrder is the number of rotations of a cube.
const GroupOrder = 24

// quantizeTolerance bounds how far a float rotation may stray from a group
// element and still snap to it.
const quantizeTolerance = 1e-6

// Mat3 is an integer rotation matrix acting on column vectors.
type Mat3 [3][3]int

func (m Mat3) mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return r
}

func (m Mat3) apply(v types.Vec) types.Vec {
	return types.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m Mat3) transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Rotation is an element of the cube rotation group. The zero value is the
// identity. Values outside [0, GroupOrder) are invalid.
type Rotation uint8

// Identity is the unrotated orientation.
const Identity Rotation = 0

type element struct {
	m Mat3
	q Quat
}

var (
	group   []element
	byMat   = make(map[Mat3]Rotation, GroupOrder)
	quarter [3][2]Rotation // [axis][0: -90, 1: +90]
)

func init() {
	id := Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	gens := make([]Mat3, 0, 6)
	for a := types.AxisX; a <= types.AxisZ; a++ {
		for _, t := range []types.Turn{types.TurnCW, types.TurnCCW} {
			gens = append(gens, quarterMatrix(a, t))
		}
	}

	// Close the group under the quarter-turn generators, breadth first, so
	// the identity is element 0 and indices are stable across runs.
	add := func(m Mat3) {
		if _, ok := byMat[m]; ok {
			return
		}
		byMat[m] = Rotation(len(group))
		group = append(group, element{m: m, q: quatFromMatrix(m)})
	}
	add(id)
	for i := 0; i < len(group); i++ {
		for _, g := range gens {
			add(g.mul(group[i].m))
		}
	}
	if len(group) != GroupOrder {
		panic(fmt.Sprintf("cube: rotation group has %d elements", len(group)))
	}

	for a := types.AxisX; a <= types.AxisZ; a++ {
		quarter[a][0] = byMat[quarterMatrix(a, types.TurnCW)]
		quarter[a][1] = byMat[quarterMatrix(a, types.TurnCCW)]
	}
}

// quarterMatrix returns the right-handed quarter turn about axis a.
func quarterMatrix(a types.Axis, t types.Turn) Mat3 {
	s := int(t) // sin(+-90)
	switch a {
	case types.AxisX:
		return Mat3{{1, 0, 0}, {0, 0, -s}, {0, s, 0}}
	case types.AxisY:
		return Mat3{{0, 0, s}, {0, 1, 0}, {-s, 0, 0}}
	default:
		return Mat3{{0, -s, 0}, {s, 0, 0}, {0, 0, 1}}
	}
}

// QuarterTurn returns the group element for a quarter turn about axis a.
func QuarterTurn(a types.Axis, t types.Turn) Rotation {
	if t == types.TurnCCW {
		return quarter[a][1]
	}
	return quarter[a][0]
}

// Valid reports whether r is a group element.
func (r Rotation) Valid() bool {
	return int(r) < len(group)
}

// Matrix returns the integer rotation matrix of r.
func (r Rotation) Matrix() Mat3 {
	if !r.Valid() {
		return Mat3{}
	}
	return group[r].m
}

// Quat returns the unit quaternion of r.
func (r Rotation) Quat() Quat {
	if !r.Valid() {
		return Quat{}
	}
	return group[r].q
}

// Apply rotates v by r. An invalid rotation maps everything to the zero
// vector, which never matches a face normal.
func (r Rotation) Apply(v types.Vec) types.Vec {
	return r.Matrix().apply(v)
}

// Then returns the rotation that applies r first and then s.
func (r Rotation) Then(s Rotation) Rotation {
	if !r.Valid() || !s.Valid() {
		return Rotation(GroupOrder)
	}
	return byMat[s.Matrix().mul(r.Matrix())]
}

// Inverse returns the rotation undoing r.
func (r Rotation) Inverse() Rotation {
	if !r.Valid() {
		return r
	}
	return byMat[r.Matrix().transpose()]
}

// Quantize snaps q to the nearest group element. It fails when q is not
// within tolerance of any element.
func Quantize(q Quat) (Rotation, error) {
	if n := math.Sqrt(q.Dot(q)); math.Abs(n-1) > 1e-3 {
		return 0, fmt.Errorf("%w: quaternion %+v has norm %.6f", ErrNotQuantizable, q, n)
	}
	q = q.Normalize()
	best, bestDot := Rotation(0), -1.0
	for i, e := range group {
		d := math.Abs(q.Dot(e.q))
		if d > bestDot {
			best, bestDot = Rotation(i), d
		}
	}
	if bestDot < 1-quantizeTolerance {
		return 0, fmt.Errorf("%w: rotation %+v is %.6f from the nearest quarter-turn element", ErrNotQuantizable, q, 1-bestDot)
	}
	return best, nil
}

// QuantizePosition rounds p to a lattice point.
func QuantizePosition(p [3]float64) (types.Vec, error) {
	var n [3]int
	for i, c := range p {
		r := math.Round(c)
		if math.Abs(c-r) > quantizeTolerance {
			return types.Vec{}, fmt.Errorf("%w: position %v is off the lattice", ErrNotQuantizable, p)
		}
		n[i] = int(r)
	}
	v := types.Vec{X: n[0], Y: n[1], Z: n[2]}
	if !v.InLattice() {
		return types.Vec{}, fmt.Errorf("%w: position %v is outside the cube", ErrNotQuantizable, p)
	}
	return v, nil
}
