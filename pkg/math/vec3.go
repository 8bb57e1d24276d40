package math

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// ApproxEqual reports whether every component of v is within Epsilon of other.
func (v Vec3) ApproxEqual(other Vec3) bool {
	return mgl32.Abs(v.X-other.X) < Epsilon &&
		mgl32.Abs(v.Y-other.Y) < Epsilon &&
		mgl32.Abs(v.Z-other.Z) < Epsilon
}

// String returns the vector as "(x, y, z)" with six fractional digits.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
