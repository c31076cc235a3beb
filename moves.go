package cubetac

import "github.com/SeamusWaldron/cubetac/pkg/types"

// Predefined layer turns, named by axis, layer and direction.
var (
	XLeftUp   = types.RotateMove(types.AxisX, -1, types.TurnCW) // Left column, front face rolls up
	XMiddleUp = types.RotateMove(types.AxisX, 0, types.TurnCW)  // Middle column
	XRightUp  = types.RotateMove(types.AxisX, 1, types.TurnCW)  // Right column

	YTopRight    = types.RotateMove(types.AxisY, 1, types.TurnCCW)  // Top row, front face slides right
	YMiddleRight = types.RotateMove(types.AxisY, 0, types.TurnCCW)  // Middle row
	YBottomRight = types.RotateMove(types.AxisY, -1, types.TurnCCW) // Bottom row

	ZFrontSpin  = types.RotateMove(types.AxisZ, 1, types.TurnCCW)  // Front slice, counter-clockwise
	ZMiddleSpin = types.RotateMove(types.AxisZ, 0, types.TurnCCW)  // Standing slice
	ZBackSpin   = types.RotateMove(types.AxisZ, -1, types.TurnCCW) // Back slice
)

// Controls maps keyboard keys to layer turns.
var Controls = map[string]types.Move{
	"1": XLeftUp,
	"2": XMiddleUp,
	"3": XRightUp,
	"q": YTopRight,
	"w": YMiddleRight,
	"e": YBottomRight,
	"a": ZFrontSpin,
	"s": ZMiddleSpin,
	"d": ZBackSpin,
}

// ControlsHelp is a one-line summary of Controls.
const ControlsHelp = "1,2,3: columns (x) | q,w,e: rows (y) | a,s,d: slices (z)"
