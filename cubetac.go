// Package cubetac implements tic-tac-toe on the front face of a 3x3x3 cube
// whose layers can be turned like a Rubik's Cube.
//
// # Rules
//
//   - Players alternate. A move either marks the front face of one of the
//     nine front cubies, or turns a layer by a quarter.
//   - Marks stick to the cubie face they were written on. Turning a layer
//     carries them to other sides of the cube, and brings other faces
//     (marked or not) to the front.
//   - After every move the front 3x3 grid is checked for three in a row.
//     The first complete line wins and the game is over.
//
// # Quick Start
//
//	g := cubetac.NewGame()
//
//	g.OnWin(func(winner types.Mark, line cubetac.Line) {
//	    fmt.Println("winner:", winner, line.Name)
//	})
//
//	g.Play(types.Vec{X: 0, Y: 0, Z: 1})         // X marks the centre
//	g.RotateLayer(types.AxisX, 1, types.TurnCW) // O turns the right layer
//
//	// Drive the animation from the frame loop.
//	for g.Rotating() {
//	    g.Tick(16 * time.Millisecond)
//	}
//
// # Layer Turns
//
// A layer turn is not applied immediately. RotateLayer locks the game and
// starts a transition; Tick advances it and Snapshot reports the
// interpolated poses for drawing. When the transition completes the turn is
// committed in one step, positions and orientations are snapped back onto
// the lattice and the quarter-turn rotation group, and the win check runs.
// Any mark or turn requested while a transition is in flight is rejected.
//
// # Controls
//
// Controls maps keyboard keys to layer turns:
//
//	1 2 3   x layers -1, 0, 1 by -90 degrees
//	q w e   y layers  1, 0,-1 by +90 degrees
//	a s d   z layers  1, 0,-1 by +90 degrees
package cubetac
