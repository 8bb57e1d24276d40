package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"

	"github.com/Faultbox/objkit/pkg/mesh"
)

// objCreator is written to the first header comment of every OBJ file.
const objCreator = "objkit"

// ValidateOBJ checks that every face of m can be written as OBJ.
//
// Faces are checked in order and the first failure is returned as a
// *ValidationError. Within a face the checks run in a fixed order: presence,
// vertex count, texture count, normal count, then vertex, texture and normal
// bounds.
func ValidateOBJ(m *mesh.Mesh) error {
	if m == nil {
		return &ValidationError{Kind: ErrModelMissing, Face: -1}
	}

	for i, f := range m.Faces {
		if err := validateFace(m, i, f); err != nil {
			return err
		}
	}
	return nil
}

func validateFace(m *mesh.Mesh, i int, f *mesh.Face) error {
	if f == nil {
		return &ValidationError{Kind: ErrNullFace, Face: i}
	}

	n := len(f.Vertices)
	if n == 0 {
		return &ValidationError{Kind: ErrEmptyFaceVertices, Face: i}
	}

	// Optional sequences must be absent or cover every vertex.
	if len(f.TexCoords) != 0 && len(f.TexCoords) != n {
		return &ValidationError{Kind: ErrTextureCountMismatch, Face: i, Expected: n, Actual: len(f.TexCoords)}
	}
	if len(f.Normals) != 0 && len(f.Normals) != n {
		return &ValidationError{Kind: ErrNormalCountMismatch, Face: i, Expected: n, Actual: len(f.Normals)}
	}

	if err := checkIndexBounds(i, AttrVertex, f.Vertices, len(m.Positions)); err != nil {
		return err
	}
	if err := checkIndexBounds(i, AttrTexture, f.TexCoords, len(m.TexCoords)); err != nil {
		return err
	}
	return checkIndexBounds(i, AttrNormal, f.Normals, len(m.Normals))
}

func checkIndexBounds(face int, attr OBJAttribute, indices []int, count int) error {
	for k, idx := range indices {
		if idx < 0 || idx >= count {
			return &ValidationError{
				Kind:      ErrIndexOutOfBounds,
				Face:      face,
				Attribute: attr,
				Component: k,
				Value:     idx,
				Max:       count - 1,
			}
		}
	}
	return nil
}

// WriteOBJ validates m and writes it to w as Wavefront OBJ text.
// Nothing is written to w if validation fails.
func WriteOBJ(m *mesh.Mesh, w io.Writer) error {
	if err := ValidateOBJ(m); err != nil {
		return err
	}
	return writeOBJ(m, w)
}

// WriteOBJFile validates m and writes it to path.
//
// The file is written to a temporary file in the same directory and renamed
// into place on success, so path is either fully replaced or left untouched.
// New files get mode 0644; an existing file's mode is preserved.
// No file is created if validation fails.
func WriteOBJFile(m *mesh.Mesh, path string) (err error) {
	if err := ValidateOBJ(m); err != nil {
		return err
	}

	// A replaced file keeps its permissions.
	mode := os.FileMode(0644)
	if fi, statErr := os.Stat(path); statErr == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	err = tmp.Chmod(mode)
	if err == nil {
		err = writeOBJ(m, tmp)
	}
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return fmt.Errorf("writing OBJ file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("committing OBJ file: %w", err)
	}
	return nil
}

// writeOBJ emits an already validated mesh.
func writeOBJ(m *mesh.Mesh, w io.Writer) error {
	bw := bufio.NewWriter(w)
	stats := m.Stats()

	fmt.Fprintf(bw, "# Created by %s\n", objCreator)
	fmt.Fprintf(bw, "# Vertices: %d\n", stats.Vertices)
	fmt.Fprintf(bw, "# Texture coordinates: %d\n", stats.TexCoords)
	fmt.Fprintf(bw, "# Normals: %d\n", stats.Normals)
	fmt.Fprintf(bw, "# Polygons: %d\n\n", stats.Polygons)

	line := make([]byte, 0, 64)

	for _, p := range m.Positions {
		line = appendFloats(append(line[:0], 'v'), p.X, p.Y, p.Z)
		bw.Write(line)
	}
	endBlock(bw, len(m.Positions))

	for _, t := range m.TexCoords {
		line = appendFloats(append(line[:0], "vt"...), t.X, t.Y)
		bw.Write(line)
	}
	endBlock(bw, len(m.TexCoords))

	for _, n := range m.Normals {
		line = appendFloats(append(line[:0], "vn"...), n.X, n.Y, n.Z)
		bw.Write(line)
	}
	endBlock(bw, len(m.Normals))

	for _, f := range m.Faces {
		line = appendFace(line[:0], f)
		bw.Write(line)
	}

	// bufio keeps the first write error; Flush reports it.
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing OBJ data: %w", err)
	}
	return nil
}

// endBlock separates a non-empty attribute block from the next one.
func endBlock(bw *bufio.Writer, n int) {
	if n > 0 {
		bw.WriteByte('\n')
	}
}

// appendFloats appends " %.6f" for each value and a newline.
func appendFloats(buf []byte, values ...float32) []byte {
	for _, v := range values {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(v), 'f', 6, 64)
	}
	return append(buf, '\n')
}

// appendFace appends an "f" line using one-based indices.
func appendFace(buf []byte, f *mesh.Face) []byte {
	buf = append(buf, 'f')
	for k, v := range f.Vertices {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(v+1), 10)

		hasTexture := k < len(f.TexCoords)
		hasNormal := k < len(f.Normals)

		switch {
		case hasTexture && hasNormal:
			buf = append(buf, '/')
			buf = strconv.AppendInt(buf, int64(f.TexCoords[k]+1), 10)
			buf = append(buf, '/')
			buf = strconv.AppendInt(buf, int64(f.Normals[k]+1), 10)
		case hasTexture:
			buf = append(buf, '/')
			buf = strconv.AppendInt(buf, int64(f.TexCoords[k]+1), 10)
		case hasNormal:
			buf = append(buf, "//"...)
			buf = strconv.AppendInt(buf, int64(f.Normals[k]+1), 10)
		}
	}
	return append(buf, '\n')
}
