// Package math provides the vector value types used by mesh attributes.
package math

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the per-component tolerance used by ApproxEqual.
const Epsilon = 1e-7

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// ApproxEqual reports whether every component of v is within Epsilon of other.
func (v Vec2) ApproxEqual(other Vec2) bool {
	return mgl32.Abs(v.X-other.X) < Epsilon &&
		mgl32.Abs(v.Y-other.Y) < Epsilon
}

// String returns the vector as "(x, y)" with six fractional digits.
func (v Vec2) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", v.X, v.Y)
}
