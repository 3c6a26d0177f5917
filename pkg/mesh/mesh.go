// Package mesh provides the triangle mesh data model consumed by the
// segmentation engine. A mesh is an ordered sequence of vertex
// positions (index = storage order), optional per-vertex unit normals,
// and triangular faces. The segmentation algorithms operate on vertex
// positions and normals only; faces are carried through untouched for
// export.
package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh. Positions and Normals are parallel slices:
// Normals is either empty or has exactly one entry per vertex.
// Faces hold 0-based vertex indices.
type Mesh struct {
	Positions []v3.Vec `json:"positions"`
	Normals   []v3.Vec `json:"normals"`
	Faces     [][3]int `json:"faces"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// HasNormals returns true if the mesh carries one normal per vertex.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Positions)
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Positions: make([]v3.Vec, len(m.Positions)),
		Faces:     make([][3]int, len(m.Faces)),
	}
	copy(c.Positions, m.Positions)
	copy(c.Faces, m.Faces)
	if len(m.Normals) > 0 {
		c.Normals = make([]v3.Vec, len(m.Normals))
		copy(c.Normals, m.Normals)
	}
	return c
}

// Centroid returns the mean of all vertex positions. Returns the zero
// vector for an empty mesh.
func (m *Mesh) Centroid() v3.Vec {
	if len(m.Positions) == 0 {
		return v3.Vec{}
	}
	var sum v3.Vec
	for _, p := range m.Positions {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(m.Positions)))
}

// Center translates all vertex positions so the centroid sits at the
// origin. No scaling or rotation is applied; the mesh is assumed to be
// already oriented with +Y as the vertical axis. Orientation is not
// detected or corrected here. Normals are unaffected by translation.
func (m *Mesh) Center() {
	c := m.Centroid()
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Sub(c)
	}
}

// HeightBounds returns the minimum and maximum vertex coordinate along
// the vertical (Y) axis. Returns (0, 0) for an empty mesh.
func (m *Mesh) HeightBounds() (min, max float64) {
	if len(m.Positions) == 0 {
		return 0, 0
	}
	min = m.Positions[0].Y
	max = m.Positions[0].Y
	for _, p := range m.Positions[1:] {
		if p.Y < min {
			min = p.Y
		}
		if p.Y > max {
			max = p.Y
		}
	}
	return min, max
}

// ComputeNormals derives per-vertex normals from face geometry:
// area-weighted face normals are accumulated at each vertex and
// normalized. Vertices that accumulate a zero-length normal (no faces,
// or degenerate faces) fall back to +Y. Existing normals are replaced.
func (m *Mesh) ComputeNormals() {
	acc := make([]v3.Vec, len(m.Positions))
	for _, f := range m.Faces {
		a, b, c := f[0], f[1], f[2]
		if a < 0 || b < 0 || c < 0 ||
			a >= len(m.Positions) || b >= len(m.Positions) || c >= len(m.Positions) {
			continue
		}
		// Cross product length is twice the triangle area, so the
		// unnormalized cross already carries the area weighting.
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		n := e1.Cross(e2)
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	m.Normals = make([]v3.Vec, len(m.Positions))
	for i, n := range acc {
		if n.Length() == 0 {
			m.Normals[i] = v3.Vec{X: 0, Y: 1, Z: 0}
			continue
		}
		m.Normals[i] = n.Normalize()
	}
}
