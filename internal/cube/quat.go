package cube

import (
	"math"

	"github.com/SeamusWaldron/cubetac/pkg/types"
)

// Quat is a rotation quaternion. It is only used for animation poses and
// for quantization; committed state never stores a Quat.
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IdentityQuat is the zero rotation.
var IdentityQuat = Quat{W: 1}

// AxisAngle returns the rotation of angle radians about a principal axis,
// following the right-hand rule.
func AxisAngle(a types.Axis, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	q := Quat{W: c}
	switch a {
	case types.AxisX:
		q.X = s
	case types.AxisY:
		q.Y = s
	case types.AxisZ:
		q.Z = s
	}
	return q
}

// Mul returns q*r, the rotation that applies r first and then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Dot returns the 4D dot product.
func (q Quat) Dot(r Quat) float64 {
	return q.W*r.W + q.X*r.X + q.Y*r.Y + q.Z*r.Z
}

// Normalize returns q scaled to unit length.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q.Dot(q))
	if n == 0 {
		return IdentityQuat
	}
	return Quat{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// Rotate applies q to v.
func (q Quat) Rotate(v [3]float64) [3]float64 {
	// v' = v + 2w(u x v) + 2u x (u x v)
	ux, uy, uz := q.X, q.Y, q.Z
	tx := 2 * (uy*v[2] - uz*v[1])
	ty := 2 * (uz*v[0] - ux*v[2])
	tz := 2 * (ux*v[1] - uy*v[0])
	return [3]float64{
		v[0] + q.W*tx + (uy*tz - uz*ty),
		v[1] + q.W*ty + (uz*tx - ux*tz),
		v[2] + q.W*tz + (ux*ty - uy*tx),
	}
}

// quatFromMatrix converts a proper rotation matrix to a quaternion with a
// non-negative scalar part.
func quatFromMatrix(m Mat3) Quat {
	var f [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f[i][j] = float64(m[i][j])
		}
	}

	var q Quat
	trace := f[0][0] + f[1][1] + f[2][2]
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quat{0.25 * s, (f[2][1] - f[1][2]) / s, (f[0][2] - f[2][0]) / s, (f[1][0] - f[0][1]) / s}
	case f[0][0] > f[1][1] && f[0][0] > f[2][2]:
		s := math.Sqrt(1+f[0][0]-f[1][1]-f[2][2]) * 2
		q = Quat{(f[2][1] - f[1][2]) / s, 0.25 * s, (f[0][1] + f[1][0]) / s, (f[0][2] + f[2][0]) / s}
	case f[1][1] > f[2][2]:
		s := math.Sqrt(1+f[1][1]-f[0][0]-f[2][2]) * 2
		q = Quat{(f[0][2] - f[2][0]) / s, (f[0][1] + f[1][0]) / s, 0.25 * s, (f[1][2] + f[2][1]) / s}
	default:
		s := math.Sqrt(1+f[2][2]-f[0][0]-f[1][1]) * 2
		q = Quat{(f[1][0] - f[0][1]) / s, (f[0][2] + f[2][0]) / s, (f[1][2] + f[2][1]) / s, 0.25 * s}
	}
	if q.W < 0 {
		q = Quat{-q.W, -q.X, -q.Y, -q.Z}
	}
	return q.Normalize()
}
