package cube

import (
	"errors"
	"fmt"
)

var (
	// ErrOrientationInvariant signals lattice state that quarter turns can
	// never produce. It is a bug, not a user error.
	ErrOrientationInvariant = errors.New("cube: orientation invariant violated")

	// ErrNotQuantizable is returned when a pose cannot be snapped back to the
	// lattice. It wraps ErrOrientationInvariant.
	ErrNotQuantizable = fmt.Errorf("%w: pose not quantizable", ErrOrientationInvariant)

	// ErrInvalidLayer is returned for an axis, layer or turn out of range.
	ErrInvalidLayer = errors.New("cube: invalid layer rotation")
)
