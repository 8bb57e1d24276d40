// Package mesh holds the in-memory polygonal mesh written and read by the OBJ codec.
package mesh

import "github.com/Faultbox/objkit/pkg/math"

// Position is a vertex position.
type Position = math.Vec3

// TexCoord is a texture coordinate (u, v).
type TexCoord = math.Vec2

// Normal is a vertex normal. It is structurally identical to Position.
type Normal = math.Vec3

// Face is a polygon given by zero-based indices into the owning mesh.
//
// TexCoords and Normals are optional: a nil or empty slice means the face
// does not reference that attribute. When present they must have the same
// length as Vertices. Faces do not check their indices; the writer does,
// because a face may be built before the mesh attributes are complete.
type Face struct {
	Vertices  []int
	TexCoords []int
	Normals   []int
}

// NewFace creates a face referencing only vertex positions.
func NewFace(vertices ...int) *Face {
	return &Face{Vertices: vertices}
}

// WithTexCoords sets the texture coordinate indices and returns f.
func (f *Face) WithTexCoords(indices ...int) *Face {
	f.TexCoords = indices
	return f
}

// WithNormals sets the normal indices and returns f.
func (f *Face) WithNormals(indices ...int) *Face {
	f.Normals = indices
	return f
}

// Mesh is a polygonal mesh. Attribute slices are append-only and indexed from zero.
// A nil entry in Faces is an absent face slot.
type Mesh struct {
	Positions []Position
	TexCoords []TexCoord
	Normals   []Normal
	Faces     []*Face
}

// Stats holds element counts of a mesh.
type Stats struct {
	Vertices  int
	TexCoords int
	Normals   int
	Polygons  int
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{
		Positions: []Position{},
		TexCoords: []TexCoord{},
		Normals:   []Normal{},
		Faces:     []*Face{},
	}
}

// AddPosition appends a position and returns its index.
func (m *Mesh) AddPosition(p Position) int {
	m.Positions = append(m.Positions, p)
	return len(m.Positions) - 1
}

// AddTexCoord appends a texture coordinate and returns its index.
func (m *Mesh) AddTexCoord(t TexCoord) int {
	m.TexCoords = append(m.TexCoords, t)
	return len(m.TexCoords) - 1
}

// AddNormal appends a normal and returns its index.
func (m *Mesh) AddNormal(n Normal) int {
	m.Normals = append(m.Normals, n)
	return len(m.Normals) - 1
}

// AddFace appends a face and returns its index.
func (m *Mesh) AddFace(f *Face) int {
	m.Faces = append(m.Faces, f)
	return len(m.Faces) - 1
}

// Stats returns the element counts of the mesh.
func (m *Mesh) Stats() Stats {
	return Stats{
		Vertices:  len(m.Positions),
		TexCoords: len(m.TexCoords),
		Normals:   len(m.Normals),
		Polygons:  len(m.Faces),
	}
}
