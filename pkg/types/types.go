// Package types contains shared type definitions for the cubetac application.
package types

import (
	"fmt"
	"strings"
)

// Mark is the value a player leaves on a cubie face.
type Mark uint8

const (
	None Mark = 0 // Unmarked face
	X    Mark = 1 // Player A, moves first by default
	O    Mark = 2 // Player B
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other player. None has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return None
	}
}

// IsPlayer reports whether m is X or O.
func (m Mark) IsPlayer() bool {
	return m == X || m == O
}

// ParseMark parses "X", "O" (case-insensitive) or "" into a Mark.
func ParseMark(s string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	case "", "-", ".":
		return None, nil
	default:
		return None, fmt.Errorf("%w: mark %q", ErrInvalidNotation, s)
	}
}

func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(b []byte) error {
	v, err := ParseMark(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Axis is one of the three principal axes of the cube.
type Axis uint8

const (
	AxisX Axis = 0 // Left to right
	AxisY Axis = 1 // Bottom to top
	AxisZ Axis = 2 // Back to front
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Valid reports whether a names one of the three axes.
func (a Axis) Valid() bool {
	return a <= AxisZ
}

// ParseAxis parses "x", "y" or "z" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("%w: axis %q", ErrInvalidNotation, s)
	}
}

func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Turn is the signed quarter-turn of a layer rotation. Positive turns are
// counter-clockwise when looking down the axis toward the origin.
type Turn int

const (
	TurnCW  Turn = -1 // -90 degrees
	TurnCCW Turn = 1  // +90 degrees
)

// Valid reports whether t is a single quarter turn.
func (t Turn) Valid() bool {
	return t == TurnCW || t == TurnCCW
}

// Degrees returns the signed angle of the turn.
func (t Turn) Degrees() int {
	return int(t) * 90
}

// Vec is an integer triple, used for lattice coordinates and unit directions.
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Front is the canonical viewing direction.
var Front = Vec{0, 0, 1}

// Component returns the coordinate along axis a.
func (v Vec) Component(a Axis) int {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// InLattice reports whether every component is in {-1, 0, 1}.
func (v Vec) InLattice() bool {
	return inUnit(v.X) && inUnit(v.Y) && inUnit(v.Z)
}

// Neg returns the opposite vector.
func (v Vec) Neg() Vec {
	return Vec{-v.X, -v.Y, -v.Z}
}

func (v Vec) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

func inUnit(n int) bool {
	return n >= -1 && n <= 1
}

// Dot returns the dot product of v and w.
func (v Vec) Dot(w Vec) int {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}
