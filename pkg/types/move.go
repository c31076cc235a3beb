package types

import (
	"fmt"
	"strconv"
	"strings"
)

// MoveKind distinguishes the two actions a player can take.
type MoveKind string

const (
	MoveMark   MoveKind = "mark"   // Mark the front face of a cubie
	MoveRotate MoveKind = "rotate" // Quarter-turn a layer
)

// Move is a single committed action.
type Move struct {
	Kind      MoveKind `json:"kind"`
	Player    Mark     `json:"player"`
	Pos       Vec      `json:"pos"`   // Mark target
	Axis      Axis     `json:"axis"`  // Rotation axis
	Layer     int      `json:"layer"` // Rotation layer along Axis
	Turn      Turn     `json:"turn"`  // Rotation direction
	Timestamp int64    `json:"ts_ms"` // Milliseconds since game start
}

// MarkMove builds a mark move.
func MarkMove(player Mark, pos Vec) Move {
	return Move{Kind: MoveMark, Player: player, Pos: pos}
}

// RotateMove builds a layer rotation move.
func RotateMove(axis Axis, layer int, turn Turn) Move {
	return Move{Kind: MoveRotate, Axis: axis, Layer: layer, Turn: turn}
}

// Notation returns the text form of the move.
// Marks: X(0,1,1). Rotations: x1, x1', y-1, z0' where ' means -90 degrees.
func (m Move) Notation() string {
	if m.Kind == MoveMark {
		return m.Player.String() + m.Pos.String()
	}
	suffix := ""
	if m.Turn == TurnCW {
		suffix = "'"
	}
	return m.Axis.String() + strconv.Itoa(m.Layer) + suffix
}

// String returns the notation string (alias for Notation).
func (m Move) String() string {
	return m.Notation()
}

// Inverse returns the rotation that undoes m. Marks have no inverse and
// are returned unchanged.
func (m Move) Inverse() Move {
	inv := m
	if m.Kind == MoveRotate {
		inv.Turn = -m.Turn
	}
	return inv
}

// ParseMove parses a single move in notation form.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	if strings.HasSuffix(s, ")") {
		return parseMark(s)
	}
	return parseRotation(s)
}

func parseMark(s string) (Move, error) {
	open := strings.IndexByte(s, '(')
	if open != 1 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	player, err := ParseMark(s[:1])
	if err != nil || !player.IsPlayer() {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 3 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	var coords [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
		}
		coords[i] = n
	}
	pos := Vec{coords[0], coords[1], coords[2]}
	if !pos.InLattice() {
		return Move{}, fmt.Errorf("%w: %q out of range", ErrInvalidNotation, s)
	}
	return MarkMove(player, pos), nil
}

func parseRotation(s string) (Move, error) {
	axis, err := ParseAxis(s[:1])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	rest := s[1:]
	turn := TurnCCW
	if strings.HasSuffix(rest, "'") {
		turn = TurnCW
		rest = rest[:len(rest)-1]
	}

	layer, err := strconv.Atoi(rest)
	if err != nil || !inUnit(layer) {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	return RotateMove(axis, layer, turn), nil
}

// ParseMoves parses a space-separated sequence of moves.
// Unlike single moves, the first invalid entry aborts the whole sequence.
func ParseMoves(s string) ([]Move, error) {
	parts := strings.Fields(s)
	moves := make([]Move, 0, len(parts))

	for i, part := range parts {
		move, err := ParseMove(part)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		moves = append(moves, move)
	}

	return moves, nil
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}

	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}

	return strings.Join(parts, " ")
}
