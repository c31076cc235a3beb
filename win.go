package cubetac

import (
	"fmt"

	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Cell addresses the front grid. Row is y+1 and Col is x+1, so row 0 is
// the bottom row as seen from the front.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos returns the lattice coordinate of the front cubie at c.
func (c Cell) Pos() types.Vec {
	return types.Vec{X: c.Col - 1, Y: c.Row - 1, Z: 1}
}

// CellAt returns the front-grid cell of a front cubie position.
func CellAt(pos types.Vec) Cell {
	return Cell{Row: pos.Y + 1, Col: pos.X + 1}
}

// Line is one of the eight winning lines.
type Line struct {
	Name  string  `json:"name"`
	Cells [3]Cell `json:"cells"`
}

// Lines lists every winning line in scan order: rows bottom to top, then
// columns left to right, then the rising diagonal, then the falling one.
// When one move completes several lines the first in this order is
// reported.
var Lines = func() [8]Line {
	var ls [8]Line
	for i := 0; i < 3; i++ {
		ls[i] = Line{
			Name:  fmt.Sprintf("row %d", i),
			Cells: [3]Cell{{i, 0}, {i, 1}, {i, 2}},
		}
		ls[3+i] = Line{
			Name:  fmt.Sprintf("column %d", i),
			Cells: [3]Cell{{0, i}, {1, i}, {2, i}},
		}
	}
	ls[6] = Line{Name: "diagonal", Cells: [3]Cell{{0, 0}, {1, 1}, {2, 2}}}
	ls[7] = Line{Name: "anti-diagonal", Cells: [3]Cell{{0, 2}, {1, 1}, {2, 0}}}
	return ls
}()

// Contains reports whether the line passes through c.
func (l Line) Contains(c Cell) bool {
	for _, lc := range l.Cells {
		if lc == c {
			return true
		}
	}
	return false
}

// Result is the verdict of a win check.
type Result struct {
	Winner types.Mark `json:"winner"`
	Line   *Line      `json:"line,omitempty"`
}

// EvaluateGrid checks the eight lines of g in scan order.
func EvaluateGrid(g cube.Grid) Result {
	for i := range Lines {
		l := Lines[i]
		a, b, c := l.Cells[0], l.Cells[1], l.Cells[2]
		m := g[a.Row][a.Col]
		if m != types.None && m == g[b.Row][b.Col] && m == g[c.Row][c.Col] {
			return Result{Winner: m, Line: &l}
		}
	}
	return Result{}
}
