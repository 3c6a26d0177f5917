package mesh

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ReadOBJ loads a Wavefront OBJ file. Supported elements are v, vn and
// f lines; everything else (materials, texture coordinates, groups) is
// skipped. Faces with more than three vertices are fan-triangulated.
// Face indices may be in v, v/vt, v//vn or v/vt/vn form; negative
// indices are resolved relative to the vertices read so far.
//
// Normals are attached to the mesh only when the file supplies exactly
// one normal per vertex in vertex order, which is the common layout for
// scanned body meshes. Any other normal layout is dropped; call
// ComputeNormals to rebuild them from the faces.
func ReadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	defer f.Close()

	m := &Mesh{}
	var normals []v3.Vec
	lineNo := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("read obj: line %d: %w", lineNo, err)
			}
			m.Positions = append(m.Positions, p)
		case "vn":
			n, err := parseVec(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("read obj: line %d: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("read obj: line %d: face with %d vertices", lineNo, len(fields)-1)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				i, err := parseFaceIndex(tok, len(m.Positions))
				if err != nil {
					return nil, fmt.Errorf("read obj: line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			// Fan triangulation for quads and larger polygons.
			for i := 1; i+1 < len(idx); i++ {
				m.Faces = append(m.Faces, [3]int{idx[0], idx[i], idx[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if len(normals) == len(m.Positions) {
		m.Normals = normals
	}
	return m, nil
}

// parseVec parses the first three float fields of a v/vn line.
// Extra fields (e.g. vertex colors or w) are ignored.
func parseVec(fields []string) (v3.Vec, error) {
	if len(fields) < 3 {
		return v3.Vec{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("bad coordinate %q", fields[i])
		}
		c[i] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFaceIndex parses one face vertex token (v, v/vt, v//vn, v/vt/vn)
// and returns the 0-based position index. count is the number of
// positions read so far, used to resolve negative indices.
func parseFaceIndex(tok string, count int) (int, error) {
	if slash := strings.IndexByte(tok, '/'); slash >= 0 {
		tok = tok[:slash]
	}
	i, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", tok)
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("face index %q out of range", tok)
	}
	return i, nil
}

// WriteOBJ writes the mesh as a Wavefront OBJ file.
func WriteOBJ(path string, m *Mesh) error {
	return writeOBJ(path, m, nil)
}

// WriteColoredOBJ writes the mesh with one color per vertex using the
// "v x y z r g b" vertex-color extension, which most mesh viewers
// accept. colors must have one entry per vertex.
func WriteColoredOBJ(path string, m *Mesh, colors []color.NRGBA) error {
	if len(colors) != m.VertexCount() {
		return fmt.Errorf("write obj: %d colors for %d vertices", len(colors), m.VertexCount())
	}
	return writeOBJ(path, m, colors)
}

func writeOBJ(path string, m *Mesh, colors []color.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, p := range m.Positions {
		if colors != nil {
			c := colors[i]
			fmt.Fprintf(w, "v %g %g %g %.6f %.6f %.6f\n", p.X, p.Y, p.Z,
				float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		} else {
			fmt.Fprintf(w, "v %g %g %g\n", p.X, p.Y, p.Z)
		}
	}
	if m.HasNormals() {
		for _, n := range m.Normals {
			fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
		for _, face := range m.Faces {
			fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n",
				face[0]+1, face[0]+1, face[1]+1, face[1]+1, face[2]+1, face[2]+1)
		}
	} else {
		for _, face := range m.Faces {
			fmt.Fprintf(w, "f %d %d %d\n", face[0]+1, face[1]+1, face[2]+1)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}
