package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCubeTopology(t *testing.T) {
	m := Cube(2)

	if m.VertexCount() != 8 {
		t.Errorf("expected 8 vertices, got %d", m.VertexCount())
	}
	if m.FaceCount() != 12 {
		t.Errorf("expected 12 faces, got %d", m.FaceCount())
	}

	for i, f := range m.Faces {
		if f.Index != i {
			t.Errorf("face %d has index %d", i, f.Index)
		}
		if l := f.Normal.Len(); l < 0.999 || l > 1.001 {
			t.Errorf("face %d normal length %f, want 1", i, l)
		}
		// Outward normals point away from the origin
		if f.Normal.Dot(m.Centroid(i)) <= 0 {
			t.Errorf("face %d normal %v points inward", i, f.Normal)
		}
	}

	front := mgl64.Vec3{0, 0, 1}
	if !m.Faces[0].Normal.ApproxEqual(front) || !m.Faces[1].Normal.ApproxEqual(front) {
		t.Errorf("faces 0 and 1 should face +Z, got %v and %v", m.Faces[0].Normal, m.Faces[1].Normal)
	}
}

func TestNewDropsInvalidTriangles(t *testing.T) {
	vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m := New(vertices, [][3]int{{0, 1, 2}, {0, 1, 7}, {2, 1, 0}})

	if m.FaceCount() != 2 {
		t.Fatalf("expected 2 faces, got %d", m.FaceCount())
	}
	if m.Faces[1].Index != 1 {
		t.Errorf("second face index = %d, want 1", m.Faces[1].Index)
	}
	if m.Faces[1].Normal.Z() >= 0 {
		t.Errorf("reversed winding should flip the normal, got %v", m.Faces[1].Normal)
	}
}

func TestDegenerateFaceHasZeroNormal(t *testing.T) {
	vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	m := New(vertices, [][3]int{{0, 1, 2}})
	if m.Faces[0].Normal != (mgl64.Vec3{}) {
		t.Errorf("collinear face normal = %v, want zero", m.Faces[0].Normal)
	}
}

func TestBounds(t *testing.T) {
	b := Cube(4).Bounds()
	if b.Min != (mgl64.Vec3{-2, -2, -2}) || b.Max != (mgl64.Vec3{2, 2, 2}) {
		t.Errorf("bounds = %v..%v, want -2..2", b.Min, b.Max)
	}
	if b.Size() != 4 {
		t.Errorf("size = %f, want 4", b.Size())
	}
	if b.Center() != (mgl64.Vec3{}) {
		t.Errorf("center = %v, want origin", b.Center())
	}
}

func TestEmptyMesh(t *testing.T) {
	m := New(nil, nil)
	if !m.IsEmpty() {
		t.Error("mesh without faces should be empty")
	}
	g := BuildAdjacency(m, DefaultAdjacencyOptions())
	if g.FaceCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty mesh graph has %d rows, %d edges", g.FaceCount(), g.EdgeCount())
	}
	if g.Neighbors(0) != nil {
		t.Error("neighbors of a missing face should be nil")
	}
}
