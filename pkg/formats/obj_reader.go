package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/objkit/pkg/mesh"
)

// OBJ parsing errors.
var (
	ErrInvalidOBJLine   = errors.New("invalid OBJ line")
	ErrNegativeOBJIndex = errors.New("relative (negative) OBJ indices are not supported")
)

// maxOBJLine bounds the length of a single OBJ line.
const maxOBJLine = 1 << 20

// faceRefForm is the slash layout of a face vertex reference.
type faceRefForm uint8

const (
	refV    faceRefForm = iota // v
	refVT                      // v/t
	refVN                      // v//n
	refVTN                     // v/t/n
)

// ParseOBJ parses Wavefront OBJ text into a mesh.
//
// Only v, vt, vn and f directives are read. Comments, blank lines and other
// directives (mtllib, usemtl, o, g, s, ...) are skipped.
func ParseOBJ(data []byte) (*mesh.Mesh, error) {
	m := mesh.New()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v [3]float32
			if v, err = parseOBJFloats(fields[1:], 3, 3); err == nil {
				m.AddPosition(mesh.Position{X: v[0], Y: v[1], Z: v[2]})
			}
		case "vt":
			var v [3]float32
			if v, err = parseOBJFloats(fields[1:], 1, 2); err == nil {
				m.AddTexCoord(mesh.TexCoord{X: v[0], Y: v[1]})
			}
		case "vn":
			var v [3]float32
			if v, err = parseOBJFloats(fields[1:], 3, 3); err == nil {
				m.AddNormal(mesh.Normal{X: v[0], Y: v[1], Z: v[2]})
			}
		case "f":
			var f *mesh.Face
			if f, err = parseOBJFace(fields[1:]); err == nil {
				m.AddFace(f)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning OBJ data: %w", err)
	}

	return m, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// parseOBJFloats reads up to want leading values, requiring at least required.
// Missing values are zero; extra ones (such as the optional w) are ignored.
func parseOBJFloats(fields []string, required, want int) ([3]float32, error) {
	var out [3]float32
	if len(fields) < required {
		return out, fmt.Errorf("%w: expected at least %d values, got %d", ErrInvalidOBJLine, required, len(fields))
	}

	for i := 0; i < want && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, fmt.Errorf("%w: bad number %q", ErrInvalidOBJLine, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseOBJFace converts the references of an f directive to zero-based indices.
func parseOBJFace(refs []string) (*mesh.Face, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: face without vertices", ErrInvalidOBJLine)
	}

	face := &mesh.Face{Vertices: make([]int, 0, len(refs))}
	var form faceRefForm

	for k, ref := range refs {
		parts := strings.Split(ref, "/")

		var refForm faceRefForm
		switch {
		case len(parts) == 1:
			refForm = refV
		case len(parts) == 2:
			refForm = refVT
		case len(parts) == 3 && parts[1] == "":
			refForm = refVN
		case len(parts) == 3:
			refForm = refVTN
		default:
			return nil, fmt.Errorf("%w: bad vertex reference %q", ErrInvalidOBJLine, ref)
		}

		if k == 0 {
			form = refForm
		} else if refForm != form {
			return nil, fmt.Errorf("%w: mixed vertex reference forms in face", ErrInvalidOBJLine)
		}

		v, err := parseOBJIndex(parts[0])
		if err != nil {
			return nil, err
		}
		face.Vertices = append(face.Vertices, v)

		if refForm == refVT || refForm == refVTN {
			t, err := parseOBJIndex(parts[1])
			if err != nil {
				return nil, err
			}
			face.TexCoords = append(face.TexCoords, t)
		}
		if refForm == refVN || refForm == refVTN {
			n, err := parseOBJIndex(parts[2])
			if err != nil {
				return nil, err
			}
			face.Normals = append(face.Normals, n)
		}
	}

	return face, nil
}

// parseOBJIndex converts a one-based OBJ index to zero-based.
func parseOBJIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrInvalidOBJLine, s)
	}
	if idx < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeOBJIndex, idx)
	}
	if idx == 0 {
		return 0, fmt.Errorf("%w: index 0 (OBJ indices start at 1)", ErrInvalidOBJLine)
	}
	return idx - 1, nil
}
