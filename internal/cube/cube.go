// Package cube models the 3x3x3 lattice of cubies used as a tic-tac-toe
// board, and the quarter-turn layer rotations that reshuffle it.
//
// Each cubie keeps its marks indexed by local face. Only its position and
// orientation change when a layer turns, so a mark always travels with the
// physical face it was written on.
package cube

import (
	"fmt"
	"strings"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Face is a local face of a cubie, fixed in the cubie's own frame.
type Face int

const (
	FaceR Face = 0 // +X
	FaceL Face = 1 // -X
	FaceU Face = 2 // +Y
	FaceD Face = 3 // -Y
	FaceF Face = 4 // +Z
	FaceB Face = 5 // -Z
)

// NumFaces is the number of faces on a cubie.
const NumFaces = 6

// NumCubies is the number of cubies in the lattice.
const NumCubies = 27

// LayerSize is the number of cubies in one layer.
const LayerSize = 9

var faceNormals = [NumFaces]types.Vec{
	FaceR: {X: 1},
	FaceL: {X: -1},
	FaceU: {Y: 1},
	FaceD: {Y: -1},
	FaceF: {Z: 1},
	FaceB: {Z: -1},
}

func (f Face) String() string {
	switch f {
	case FaceR:
		return "R"
	case FaceL:
		return "L"
	case FaceU:
		return "U"
	case FaceD:
		return "D"
	case FaceF:
		return "F"
	case FaceB:
		return "B"
	default:
		return "?"
	}
}

// Normal returns the unit normal of f in the cubie's local frame.
func (f Face) Normal() types.Vec {
	if f < 0 || f >= NumFaces {
		return types.Vec{}
	}
	return faceNormals[f]
}

// Cubie is one cell of the lattice.
type Cubie struct {
	ID     types.Vec            // Home coordinate, stable for the cubie's lifetime
	Pos    types.Vec            // Current lattice coordinate
	Orient Rotation             // Current orientation
	Marks  [NumFaces]types.Mark // Marks by local face
}

// Lattice is the full 3x3x3 cube.
type Lattice struct {
	Cubies [NumCubies]Cubie
}

// New creates a lattice with every cubie at home, unrotated and unmarked.
func New() *Lattice {
	l := &Lattice{}
	i := 0
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				p := types.Vec{X: x, Y: y, Z: z}
				l.Cubies[i] = Cubie{ID: p, Pos: p, Orient: Identity}
				i++
			}
		}
	}
	return l
}

// Clone creates a deep copy of the lattice.
func (l *Lattice) Clone() *Lattice {
	clone := *l
	return &clone
}

// At returns the cubie currently at pos.
func (l *Lattice) At(pos types.Vec) (*Cubie, bool) {
	for i := range l.Cubies {
		if l.Cubies[i].Pos == pos {
			return &l.Cubies[i], true
		}
	}
	return nil, false
}

// Layer returns the indices of the cubies whose coordinate along axis
// equals value.
func (l *Lattice) Layer(axis types.Axis, value int) []int {
	idx := make([]int, 0, LayerSize)
	for i, c := range l.Cubies {
		if c.Pos.Component(axis) == value {
			idx = append(idx, i)
		}
	}
	return idx
}

// Validate checks that every lattice point holds exactly one cubie and
// every orientation is a group element.
func (l *Lattice) Validate() error {
	seen := make(map[types.Vec]types.Vec, NumCubies)
	for _, c := range l.Cubies {
		if !c.Pos.InLattice() {
			return fmt.Errorf("%w: cubie %v at %v is off the lattice", ErrOrientationInvariant, c.ID, c.Pos)
		}
		if other, dup := seen[c.Pos]; dup {
			return fmt.Errorf("%w: cubies %v and %v share %v", ErrOrientationInvariant, other, c.ID, c.Pos)
		}
		seen[c.Pos] = c.ID
		if !c.Orient.Valid() {
			return fmt.Errorf("%w: cubie %v has orientation %d", ErrOrientationInvariant, c.ID, c.Orient)
		}
	}
	return nil
}

// view is the (right, up) basis of a face as seen from outside the cube.
type view struct {
	dir, right, up types.Vec
	name           string
}

var (
	viewFront = view{types.Vec{Z: 1}, types.Vec{X: 1}, types.Vec{Y: 1}, "F"}
	viewBack  = view{types.Vec{Z: -1}, types.Vec{X: -1}, types.Vec{Y: 1}, "B"}
	viewRight = view{types.Vec{X: 1}, types.Vec{Z: -1}, types.Vec{Y: 1}, "R"}
	viewLeft  = view{types.Vec{X: -1}, types.Vec{Z: 1}, types.Vec{Y: 1}, "L"}
	viewUp    = view{types.Vec{Y: 1}, types.Vec{X: 1}, types.Vec{Z: -1}, "U"}
	viewDown  = view{types.Vec{Y: -1}, types.Vec{X: 1}, types.Vec{Z: 1}, "D"}
)

func viewFor(dir types.Vec) (view, bool) {
	for _, v := range []view{viewFront, viewBack, viewRight, viewLeft, viewUp, viewDown} {
		if v.dir == dir {
			return v, true
		}
	}
	return view{}, false
}

// Grid is a 3x3 face of the cube, indexed [row][col] with row 0 at the
// bottom and col 0 at the left as seen from outside.
type Grid [3][3]types.Mark

// FaceGrid returns the marks visible on the outer face pointing along dir.
// For the front face, row is y+1 and col is x+1.
func (l *Lattice) FaceGrid(dir types.Vec) (Grid, error) {
	var g Grid
	v, ok := viewFor(dir)
	if !ok {
		return g, fmt.Errorf("%w: %v is not an axis direction", ErrInvalidLayer, dir)
	}
	for i := range l.Cubies {
		c := &l.Cubies[i]
		if c.Pos.Dot(dir) != 1 {
			continue
		}
		f, err := c.FaceToward(dir)
		if err != nil {
			return g, err
		}
		g[c.Pos.Dot(v.up)+1][c.Pos.Dot(v.right)+1] = c.Marks[f]
	}
	return g, nil
}

// String returns a net of the six outer faces:
//
//	  U
//	L F R B
//	  D
func (l *Lattice) String() string {
	grids := make(map[string]Grid, 6)
	for _, v := range []view{viewFront, viewBack, viewRight, viewLeft, viewUp, viewDown} {
		g, err := l.FaceGrid(v.dir)
		if err != nil {
			return "invalid lattice: " + err.Error()
		}
		grids[v.name] = g
	}

	var b strings.Builder
	writeRow := func(g Grid, row int) {
		for col := 0; col < 3; col++ {
			b.WriteString(cell(g[row][col]))
			b.WriteString(" ")
		}
	}

	for row := 2; row >= 0; row-- {
		b.WriteString("      ")
		writeRow(grids["U"], row)
		b.WriteString("\n")
	}
	for row := 2; row >= 0; row-- {
		for _, name := range []string{"L", "F", "R", "B"} {
			writeRow(grids[name], row)
		}
		b.WriteString("\n")
	}
	for row := 2; row >= 0; row-- {
		b.WriteString("      ")
		writeRow(grids["D"], row)
		b.WriteString("\n")
	}
	return b.String()
}

func cell(m types.Mark) string {
	if m == types.None {
		return "."
	}
	return m.String()
}
