package types

import "errors"

// ErrInvalidNotation is returned when a move or value cannot be parsed.
var ErrInvalidNotation = errors.New("cubetac: invalid move notation")
