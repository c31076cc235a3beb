package cubetac

import (
	"github.com/SeamusWaldron/cubetac/internal/cube"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Sentinel errors for the cubetac package.
var (
	// ErrOrientationInvariant is returned when the lattice reaches a state
	// quarter turns cannot produce. The failing operation is not committed.
	ErrOrientationInvariant = cube.ErrOrientationInvariant

	// ErrInvalidNotation is returned by move parsing.
	ErrInvalidNotation = types.ErrInvalidNotation
)
