package mesh_test

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/garmentsim/bodyseg/pkg/mesh"
)

// writeTemp writes content to a temp file and returns its path.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadOBJBasic(t *testing.T) {
	path := writeTemp(t, "tri.obj", `
# comment
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vn 0 0 1
vn 0 0 1
f 1 2 3
`)
	m, err := mesh.ReadOBJ(path)
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if m.VertexCount() != 3 || m.FaceCount() != 1 {
		t.Fatalf("got %d vertices, %d faces, want 3, 1", m.VertexCount(), m.FaceCount())
	}
	if !m.HasNormals() {
		t.Error("one normal per vertex was supplied but not attached")
	}
	if m.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", m.Faces[0])
	}
}

func TestReadOBJFaceVariants(t *testing.T) {
	// v/vt/vn indices, a quad needing fan triangulation, and a
	// negative (relative) index.
	path := writeTemp(t, "quad.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1
f 1//1 2//1 -1//1
`)
	m, err := mesh.ReadOBJ(path)
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if m.FaceCount() != 3 {
		t.Fatalf("got %d faces, want 3 (quad fans into 2, plus 1)", m.FaceCount())
	}
	if m.Faces[0] != [3]int{0, 1, 2} || m.Faces[1] != [3]int{0, 2, 3} {
		t.Errorf("fan triangulation produced %v, %v", m.Faces[0], m.Faces[1])
	}
	if m.Faces[2] != [3]int{0, 1, 3} {
		t.Errorf("negative index face = %v, want [0 1 3]", m.Faces[2])
	}
	// 1 normal for 4 vertices: not a per-vertex layout, so dropped.
	if m.HasNormals() {
		t.Error("mismatched normal count should not attach normals")
	}
}

func TestReadOBJErrors(t *testing.T) {
	for name, content := range map[string]string{
		"bad coordinate": "v 0 0 x\n",
		"short face":     "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"range face":     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
	} {
		path := writeTemp(t, "bad.obj", content)
		if _, err := mesh.ReadOBJ(path); err == nil {
			t.Errorf("%s: ReadOBJ succeeded, want error", name)
		}
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []v3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0.5}},
		Normals:   []v3.Vec{{Z: 1}, {Z: 1}, {Z: 1}},
		Faces:     [][3]int{{0, 1, 2}},
	}
	path := filepath.Join(t.TempDir(), "out.obj")
	if err := mesh.WriteOBJ(path, m); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	got, err := mesh.ReadOBJ(path)
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if got.VertexCount() != 3 || got.FaceCount() != 1 || !got.HasNormals() {
		t.Errorf("round trip lost data: %d vertices, %d faces, normals=%v",
			got.VertexCount(), got.FaceCount(), got.HasNormals())
	}
	if got.Positions[2] != m.Positions[2] {
		t.Errorf("position round trip: got %v, want %v", got.Positions[2], m.Positions[2])
	}
}

func TestWriteColoredOBJ(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []v3.Vec{{X: 0}, {X: 1}, {X: 2}},
		Faces:     [][3]int{{0, 1, 2}},
	}
	colors := []color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	path := filepath.Join(t.TempDir(), "colored.obj")
	if err := mesh.WriteColoredOBJ(path, m, colors); err != nil {
		t.Fatalf("WriteColoredOBJ failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "v 0 0 0 1.000000 0.000000 0.000000"; !strings.Contains(string(data), want) {
		t.Errorf("output missing colored vertex line %q:\n%s", want, data)
	}

	// Color count must match the vertex count.
	if err := mesh.WriteColoredOBJ(path, m, colors[:2]); err == nil {
		t.Error("mismatched color count accepted, want error")
	}
}
