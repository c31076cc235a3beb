package cube

import (
	"fmt"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// WorldNormal returns the world direction local face f currently points to.
func (c *Cubie) WorldNormal(f Face) types.Vec {
	return c.Orient.Apply(f.Normal())
}

// FaceToward returns the local face currently pointing along dir. Exactly
// one face must match; anything else is an invariant violation.
func (c *Cubie) FaceToward(dir types.Vec) (Face, error) {
	found, count := Face(-1), 0
	for f := Face(0); f < NumFaces; f++ {
		if c.WorldNormal(f) == dir {
			found = f
			count++
		}
	}
	if count != 1 {
		return -1, fmt.Errorf("%w: cubie %v has %d faces toward %v", ErrOrientationInvariant, c.ID, count, dir)
	}
	return found, nil
}

// FrontFace returns the local face of c that points along types.Front.
func (c *Cubie) FrontFace() (Face, error) {
	return c.FaceToward(types.Front)
}

// FrontMark returns the mark on the front-facing local face.
func (c *Cubie) FrontMark() (types.Mark, error) {
	f, err := c.FrontFace()
	if err != nil {
		return types.None, err
	}
	return c.Marks[f], nil
}
