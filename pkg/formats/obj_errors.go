package formats

import (
	"errors"
	"fmt"
)

// OBJ validation errors. A *ValidationError unwraps to one of these.
var (
	ErrModelMissing         = errors.New("model doesn't exist")
	ErrNullFace             = errors.New("polygon is null")
	ErrEmptyFaceVertices    = errors.New("polygon doesn't contain vertices")
	ErrTextureCountMismatch = errors.New("texture indices count doesn't match vertices count")
	ErrNormalCountMismatch  = errors.New("normals count doesn't match vertices count")
	ErrIndexOutOfBounds     = errors.New("index is out of bounds")
)

// OBJAttribute identifies which index sequence of a face an error refers to.
type OBJAttribute uint8

// Face attribute kinds.
const (
	AttrVertex OBJAttribute = iota
	AttrTexture
	AttrNormal
)

// String returns the attribute name used in error messages.
func (a OBJAttribute) String() string {
	switch a {
	case AttrVertex:
		return "vertex"
	case AttrTexture:
		return "texture"
	case AttrNormal:
		return "normal"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ValidationError describes why a mesh cannot be written as OBJ.
//
// Kind is one of the Err* sentinels above. Face is the zero-based polygon
// index (-1 for ErrModelMissing). Expected and Actual are set for count
// mismatches. Attribute, Component, Value and Max are set for
// ErrIndexOutOfBounds; the valid range is [0, Max].
type ValidationError struct {
	Kind      error
	Face      int
	Attribute OBJAttribute
	Component int
	Expected  int
	Actual    int
	Value     int
	Max       int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrModelMissing:
		return "model doesn't exist"
	case ErrNullFace:
		return fmt.Sprintf("polygon %d is null", e.Face)
	case ErrEmptyFaceVertices:
		return fmt.Sprintf("polygon %d doesn't contain vertices", e.Face)
	case ErrTextureCountMismatch:
		return fmt.Sprintf("polygon %d: texture indices count (%d) doesn't match vertices count (%d)",
			e.Face, e.Actual, e.Expected)
	case ErrNormalCountMismatch:
		return fmt.Sprintf("polygon %d: normals count (%d) doesn't match vertices count (%d)",
			e.Face, e.Actual, e.Expected)
	case ErrIndexOutOfBounds:
		return fmt.Sprintf("polygon %d, %s %d: index %d is out of bounds [0, %d]",
			e.Face, e.Attribute, e.Component, e.Value, e.Max)
	default:
		return fmt.Sprintf("polygon %d: %v", e.Face, e.Kind)
	}
}

// Unwrap returns the sentinel error for the kind of failure.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}
