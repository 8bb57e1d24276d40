package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/objkit/pkg/mesh"
)

// createTriangleMesh returns a mesh with three positions forming a unit triangle.
func createTriangleMesh() *mesh.Mesh {
	m := mesh.New()
	m.AddPosition(mesh.Position{X: 0, Y: 0, Z: 0})
	m.AddPosition(mesh.Position{X: 1, Y: 0, Z: 0})
	m.AddPosition(mesh.Position{X: 0, Y: 1, Z: 0})
	return m
}

func addTriangleTexCoords(m *mesh.Mesh) {
	m.AddTexCoord(mesh.TexCoord{X: 0, Y: 0})
	m.AddTexCoord(mesh.TexCoord{X: 1, Y: 0})
	m.AddTexCoord(mesh.TexCoord{X: 0, Y: 1})
}

func writeToString(t *testing.T, m *mesh.Mesh) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteOBJ(m, &buf); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	return buf.String()
}

// faceLines returns every line of out that starts with "f ".
func faceLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "f ") {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestWriteOBJ_FullPolygon(t *testing.T) {
	m := createTriangleMesh()
	addTriangleTexCoords(m)
	m.AddNormal(mesh.Normal{X: 0, Y: 0, Z: 1})
	m.AddFace(mesh.NewFace(0, 1, 2).WithTexCoords(0, 1, 2).WithNormals(0, 0, 0))

	got := writeToString(t, m)

	want := "# Created by objkit\n" +
		"# Vertices: 3\n" +
		"# Texture coordinates: 3\n" +
		"# Normals: 1\n" +
		"# Polygons: 1\n" +
		"\n" +
		"v 0.000000 0.000000 0.000000\n" +
		"v 1.000000 0.000000 0.000000\n" +
		"v 0.000000 1.000000 0.000000\n" +
		"\n" +
		"vt 0.000000 0.000000\n" +
		"vt 1.000000 0.000000\n" +
		"vt 0.000000 1.000000\n" +
		"\n" +
		"vn 0.000000 0.000000 1.000000\n" +
		"\n" +
		"f 1/1/1 2/2/1 3/3/1\n"

	if got != want {
		t.Errorf("unexpected output:\n--- got ---\n%s--- want ---\n%s", got, want)
	}
}

func TestWriteOBJ_FaceEncodings(t *testing.T) {
	tests := []struct {
		name      string
		face      *mesh.Face
		want      string
		forbidden string
	}{
		{
			name:      "vertex only",
			face:      mesh.NewFace(0, 1, 2),
			want:      "f 1 2 3",
			forbidden: "/",
		},
		{
			name:      "vertex and texture",
			face:      mesh.NewFace(0, 1, 2).WithTexCoords(2, 1, 0),
			want:      "f 1/3 2/2 3/1",
			forbidden: "//",
		},
		{
			name: "vertex and normal",
			face: mesh.NewFace(0, 1, 2).WithNormals(0, 0, 0),
			want: "f 1//1 2//1 3//1",
		},
		{
			name: "all three",
			face: mesh.NewFace(2, 1, 0).WithTexCoords(0, 1, 2).WithNormals(0, 0, 0),
			want: "f 3/1/1 2/2/1 1/3/1",
		},
		{
			name: "empty optional slices",
			face: &mesh.Face{Vertices: []int{0, 1, 2}, TexCoords: []int{}, Normals: []int{}},
			want: "f 1 2 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createTriangleMesh()
			if len(tt.face.TexCoords) > 0 {
				addTriangleTexCoords(m)
			}
			if len(tt.face.Normals) > 0 {
				m.AddNormal(mesh.Normal{Z: 1})
			}
			m.AddFace(tt.face)

			out := writeToString(t, m)
			lines := faceLines(out)
			if len(lines) != 1 {
				t.Fatalf("expected 1 face line, got %d", len(lines))
			}
			if lines[0] != tt.want {
				t.Errorf("expected face line %q, got %q", tt.want, lines[0])
			}
			if tt.forbidden != "" && strings.Contains(out, tt.forbidden) {
				t.Errorf("output must not contain %q:\n%s", tt.forbidden, out)
			}
		})
	}
}

func TestWriteOBJ_EmptyMesh(t *testing.T) {
	out := writeToString(t, mesh.New())

	want := "# Created by objkit\n" +
		"# Vertices: 0\n" +
		"# Texture coordinates: 0\n" +
		"# Normals: 0\n" +
		"# Polygons: 0\n" +
		"\n"
	if out != want {
		t.Errorf("unexpected output for empty mesh:\n%s", out)
	}
	if strings.Contains(out, "v ") || strings.Contains(out, "f ") {
		t.Error("empty mesh must not produce vertex or face lines")
	}
}

func TestWriteOBJ_BlockSeparators(t *testing.T) {
	// Positions and faces only: a single blank line between the blocks and
	// none after the face block.
	m := createTriangleMesh()
	m.AddFace(mesh.NewFace(0, 1, 2))
	m.AddFace(mesh.NewFace(2, 1, 0))

	out := writeToString(t, m)
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("unexpected double blank line:\n%s", out)
	}
	if !strings.HasSuffix(out, "0.000000\n\nf 1 2 3\nf 3 2 1\n") {
		t.Errorf("unexpected block layout:\n%s", out)
	}
}

func TestWriteOBJ_NumberFormat(t *testing.T) {
	m := mesh.New()
	m.AddPosition(mesh.Position{X: -1.5, Y: 0.125, Z: 1234.5})
	m.AddTexCoord(mesh.TexCoord{X: 0.25, Y: 1})

	out := writeToString(t, m)
	if !strings.Contains(out, "v -1.500000 0.125000 1234.500000\n") {
		t.Errorf("unexpected vertex formatting:\n%s", out)
	}
	if !strings.Contains(out, "vt 0.250000 1.000000\n") {
		t.Errorf("unexpected texcoord formatting:\n%s", out)
	}
}

func TestWriteOBJ_Idempotent(t *testing.T) {
	m := createTriangleMesh()
	addTriangleTexCoords(m)
	m.AddFace(mesh.NewFace(0, 1, 2).WithTexCoords(0, 1, 2))

	first := writeToString(t, m)
	second := writeToString(t, m)
	if first != second {
		t.Error("writing the same mesh twice produced different output")
	}
}

func TestWriteOBJ_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *mesh.Mesh
		want  ValidationError
	}{
		{
			name:  "model missing",
			build: func() *mesh.Mesh { return nil },
			want:  ValidationError{Kind: ErrModelMissing, Face: -1},
		},
		{
			name: "null face",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddFace(mesh.NewFace(0, 1, 2))
				m.AddFace(nil)
				return m
			},
			want: ValidationError{Kind: ErrNullFace, Face: 1},
		},
		{
			name: "empty face",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddFace(&mesh.Face{})
				return m
			},
			want: ValidationError{Kind: ErrEmptyFaceVertices, Face: 0},
		},
		{
			name: "texture count mismatch",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddTexCoord(mesh.TexCoord{X: 0, Y: 0})
				m.AddTexCoord(mesh.TexCoord{X: 1, Y: 0})
				m.AddFace(mesh.NewFace(0, 1, 2).WithTexCoords(0, 1))
				return m
			},
			want: ValidationError{Kind: ErrTextureCountMismatch, Face: 0, Expected: 3, Actual: 2},
		},
		{
			name: "normal count mismatch",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddNormal(mesh.Normal{Z: 1})
				m.AddFace(mesh.NewFace(0, 1, 2).WithNormals(0, 0, 0, 0))
				return m
			},
			want: ValidationError{Kind: ErrNormalCountMismatch, Face: 0, Expected: 3, Actual: 4},
		},
		{
			name: "vertex out of bounds",
			build: func() *mesh.Mesh {
				m := mesh.New()
				m.AddPosition(mesh.Position{})
				m.AddFace(mesh.NewFace(0, 1, 2))
				return m
			},
			want: ValidationError{Kind: ErrIndexOutOfBounds, Face: 0, Attribute: AttrVertex, Component: 1, Value: 1, Max: 0},
		},
		{
			name: "vertex index equal to count",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddFace(mesh.NewFace(0, 1, 2))
				m.AddFace(mesh.NewFace(0, 1, 3))
				return m
			},
			want: ValidationError{Kind: ErrIndexOutOfBounds, Face: 1, Attribute: AttrVertex, Component: 2, Value: 3, Max: 2},
		},
		{
			name: "negative vertex index",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddFace(mesh.NewFace(-1, 1, 2))
				return m
			},
			want: ValidationError{Kind: ErrIndexOutOfBounds, Face: 0, Attribute: AttrVertex, Component: 0, Value: -1, Max: 2},
		},
		{
			name: "texture out of bounds",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddTexCoord(mesh.TexCoord{})
				m.AddFace(mesh.NewFace(0, 1, 2).WithTexCoords(0, 0, 5))
				return m
			},
			want: ValidationError{Kind: ErrIndexOutOfBounds, Face: 0, Attribute: AttrTexture, Component: 2, Value: 5, Max: 0},
		},
		{
			name: "normal out of bounds with no normals",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddFace(mesh.NewFace(0, 1, 2).WithNormals(0, 0, 0))
				return m
			},
			want: ValidationError{Kind: ErrIndexOutOfBounds, Face: 0, Attribute: AttrNormal, Component: 0, Value: 0, Max: -1},
		},
		{
			name: "vertex bounds checked before texture bounds",
			build: func() *mesh.Mesh {
				m := createTriangleMesh()
				m.AddFace(mesh.NewFace(0, 9, 2).WithTexCoords(7, 7, 7))
				return m
			},
			want: ValidationError{Kind: ErrIndexOutOfBounds, Face: 0, Attribute: AttrVertex, Component: 1, Value: 9, Max: 2},
		},
		{
			name: "count mismatch checked before bounds",
			build: func() *mesh.Mesh {
				m := mesh.New()
				m.AddFace(mesh.NewFace(5, 6, 7).WithNormals(0))
				return m
			},
			want: ValidationError{Kind: ErrNormalCountMismatch, Face: 0, Expected: 3, Actual: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteOBJ(tt.build(), &buf)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			if !errors.Is(err, tt.want.Kind) {
				t.Errorf("expected errors.Is(err, %v), got %v", tt.want.Kind, err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if *verr != tt.want {
				t.Errorf("got %+v, want %+v", *verr, tt.want)
			}

			if buf.Len() != 0 {
				t.Errorf("expected no output on validation failure, got %d bytes", buf.Len())
			}
		})
	}
}

func TestValidationError_Messages(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Kind: ErrModelMissing, Face: -1}, "model doesn't exist"},
		{&ValidationError{Kind: ErrNullFace, Face: 4}, "polygon 4 is null"},
		{&ValidationError{Kind: ErrEmptyFaceVertices, Face: 2}, "polygon 2 doesn't contain vertices"},
		{
			&ValidationError{Kind: ErrTextureCountMismatch, Face: 0, Expected: 3, Actual: 2},
			"polygon 0: texture indices count (2) doesn't match vertices count (3)",
		},
		{
			&ValidationError{Kind: ErrNormalCountMismatch, Face: 1, Expected: 4, Actual: 1},
			"polygon 1: normals count (1) doesn't match vertices count (4)",
		},
		{
			&ValidationError{Kind: ErrIndexOutOfBounds, Face: 0, Attribute: AttrVertex, Component: 1, Value: 1, Max: 0},
			"polygon 0, vertex 1: index 1 is out of bounds [0, 0]",
		},
		{
			&ValidationError{Kind: ErrIndexOutOfBounds, Face: 3, Attribute: AttrNormal, Component: 0, Value: 7, Max: 5},
			"polygon 3, normal 0: index 7 is out of bounds [0, 5]",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidateOBJ_Valid(t *testing.T) {
	m := createTriangleMesh()
	addTriangleTexCoords(m)
	m.AddNormal(mesh.Normal{Z: 1})
	m.AddFace(mesh.NewFace(0, 1, 2))
	m.AddFace(mesh.NewFace(0, 1, 2).WithTexCoords(0, 1, 2))
	m.AddFace(mesh.NewFace(0, 1, 2).WithNormals(0, 0, 0))
	m.AddFace(mesh.NewFace(0, 1, 2).WithTexCoords(0, 1, 2).WithNormals(0, 0, 0))

	if err := ValidateOBJ(m); err != nil {
		t.Errorf("expected valid mesh, got %v", err)
	}
}

// failingWriter fails every write.
type failingWriter struct{}

var errSinkFailed = errors.New("sink failed")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errSinkFailed
}

func TestWriteOBJ_SinkError(t *testing.T) {
	m := createTriangleMesh()
	m.AddFace(mesh.NewFace(0, 1, 2))

	err := WriteOBJ(m, failingWriter{})
	if !errors.Is(err, errSinkFailed) {
		t.Errorf("expected sink error, got %v", err)
	}
}

func TestWriteOBJFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "triangle.obj")

	m := createTriangleMesh()
	m.AddNormal(mesh.Normal{Z: 1})
	m.AddFace(mesh.NewFace(0, 1, 2).WithNormals(0, 0, 0))

	if err := WriteOBJFile(m, path); err != nil {
		t.Fatalf("WriteOBJFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != writeToString(t, m) {
		t.Errorf("file content differs from WriteOBJ output:\n%s", data)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteOBJFile_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()

	// New file: nothing is created.
	path := filepath.Join(tmpDir, "bad.obj")
	m := createTriangleMesh()
	m.AddFace(mesh.NewFace(0, 1, 3))

	err := WriteOBJFile(m, path)
	if !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected ErrIndexOutOfBounds, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be created on validation failure")
	}

	// Existing file: left untouched.
	existing := filepath.Join(tmpDir, "existing.obj")
	if err := os.WriteFile(existing, []byte("keep me\n"), 0644); err != nil {
		t.Fatalf("failed to write existing file: %v", err)
	}
	if err := WriteOBJFile(nil, existing); !errors.Is(err, ErrModelMissing) {
		t.Fatalf("expected ErrModelMissing, got %v", err)
	}
	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("failed to read existing file: %v", err)
	}
	if string(data) != "keep me\n" {
		t.Errorf("existing file was modified: %q", data)
	}
}

func TestWriteOBJFile_Permissions(t *testing.T) {
	tmpDir := t.TempDir()
	m := createTriangleMesh()
	m.AddFace(mesh.NewFace(0, 1, 2))

	fresh := filepath.Join(tmpDir, "fresh.obj")
	if err := WriteOBJFile(m, fresh); err != nil {
		t.Fatalf("WriteOBJFile failed: %v", err)
	}
	info, err := os.Stat(fresh)
	if err != nil {
		t.Fatalf("failed to stat output: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0644 {
		t.Errorf("expected new file mode 0644, got %o", perm)
	}

	existing := filepath.Join(tmpDir, "private.obj")
	if err := os.WriteFile(existing, []byte("old\n"), 0600); err != nil {
		t.Fatalf("failed to write existing file: %v", err)
	}
	if err := os.Chmod(existing, 0600); err != nil {
		t.Fatalf("failed to chmod existing file: %v", err)
	}
	if err := WriteOBJFile(m, existing); err != nil {
		t.Fatalf("WriteOBJFile failed: %v", err)
	}
	info, err = os.Stat(existing)
	if err != nil {
		t.Fatalf("failed to stat replaced file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected replaced file to keep mode 0600, got %o", perm)
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("failed to read replaced file: %v", err)
	}
	if !strings.Contains(string(data), "f 1 2 3\n") {
		t.Errorf("replaced file has unexpected content:\n%s", data)
	}
}

func TestWriteOBJFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.obj")
	if err := WriteOBJFile(mesh.New(), path); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
