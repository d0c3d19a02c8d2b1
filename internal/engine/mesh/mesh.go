// Package mesh holds the immutable triangle topology of one painting session
// and the face adjacency graph built from it.
package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// degenerateArea is the doubled-area threshold below which a face has no normal.
const degenerateArea = 1e-12

// Face is one triangle of the mesh.
// Index equals the face's position in Mesh.Faces and keys every per-face array.
type Face struct {
	Index    int
	Vertices [3]int
	Normal   mgl64.Vec3
}

// Mesh is the immutable topology for one editing session.
type Mesh struct {
	Vertices []mgl64.Vec3
	Faces    []Face
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// New creates a mesh from vertex positions and triangles given as vertex index
// triples. Winding defines the face normal (counter-clockwise is front).
// Triangles referencing missing vertices are dropped; degenerate triangles are
// kept with a zero normal so face indices stay aligned with the input order.
func New(vertices []mgl64.Vec3, triangles [][3]int) *Mesh {
	m := &Mesh{
		Vertices: vertices,
		Faces:    make([]Face, 0, len(triangles)),
	}

	for _, tri := range triangles {
		valid := true
		for _, vi := range tri {
			if vi < 0 || vi >= len(vertices) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		m.Faces = append(m.Faces, Face{
			Index:    len(m.Faces),
			Vertices: tri,
			Normal:   faceNormal(vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]),
		})
	}

	return m
}

func faceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < degenerateArea {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IsEmpty returns true if the mesh has nothing to paint.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0 || len(m.Vertices) == 0
}

// Corners returns the three vertex positions of face f in winding order.
func (m *Mesh) Corners(f int) [3]mgl64.Vec3 {
	face := m.Faces[f]
	return [3]mgl64.Vec3{
		m.Vertices[face.Vertices[0]],
		m.Vertices[face.Vertices[1]],
		m.Vertices[face.Vertices[2]],
	}
}

// Centroid returns the center of face f.
func (m *Mesh) Centroid(f int) mgl64.Vec3 {
	c := m.Corners(f)
	return c[0].Add(c[1]).Add(c[2]).Mul(1.0 / 3.0)
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < b.Min[i] {
				b.Min[i] = v[i]
			}
			if v[i] > b.Max[i] {
				b.Max[i] = v[i]
			}
		}
	}
	return b
}

// Center returns the middle of the bounding box.
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the largest extent of the bounding box.
func (b Bounds) Size() float64 {
	d := b.Max.Sub(b.Min)
	return max(d[0], d[1], d[2])
}
