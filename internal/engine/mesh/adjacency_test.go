package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCubeAdjacency(t *testing.T) {
	m := Cube(2)
	g := BuildAdjacency(m, DefaultAdjacencyOptions())

	// Every cube triangle has three edges, each shared with exactly one other triangle
	for i := 0; i < m.FaceCount(); i++ {
		if n := len(g.Neighbors(i)); n != 3 {
			t.Errorf("face %d has %d neighbors, want 3", i, n)
		}
	}
	if g.EdgeCount() != 18 {
		t.Errorf("expected 18 shared edges, got %d", g.EdgeCount())
	}

	// The two front triangles share their diagonal
	if !g.Adjacent(0, 1) {
		t.Error("front triangles 0 and 1 should be adjacent")
	}
	// Front and back never touch
	for _, back := range []int{2, 3} {
		if g.Adjacent(0, back) || g.Adjacent(1, back) {
			t.Errorf("front face adjacent to back face %d", back)
		}
	}
}

func TestAdjacencySymmetry(t *testing.T) {
	meshes := map[string]*Mesh{
		"cube":   Cube(1),
		"strip":  strip(20),
		"sheets": doubleSidedSheet(),
	}

	for name, m := range meshes {
		t.Run(name, func(t *testing.T) {
			g := BuildAdjacency(m, DefaultAdjacencyOptions())
			for i := 0; i < m.FaceCount(); i++ {
				for _, j := range g.Neighbors(i) {
					if !g.Adjacent(j, i) {
						t.Errorf("%d lists %d but not the reverse", i, j)
					}
					if j == i {
						t.Errorf("face %d lists itself", i)
					}
				}
			}
		})
	}
}

func TestAdjacencyExcludesOpposingNormals(t *testing.T) {
	m := doubleSidedSheet()
	g := BuildAdjacency(m, DefaultAdjacencyOptions())

	// Faces 0/1 are the front quad, 2/3 the same quad wound backwards
	if !g.Adjacent(0, 1) || !g.Adjacent(2, 3) {
		t.Error("triangles on the same side should be adjacent")
	}
	for _, front := range []int{0, 1} {
		for _, back := range []int{2, 3} {
			if g.Adjacent(front, back) {
				t.Errorf("front %d adjacent to reversed %d", front, back)
			}
		}
	}
}

func TestAdjacencyToleratesUnweldedVertices(t *testing.T) {
	// Two triangles with duplicated but coincident vertices (triangle soup)
	vertices := []mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{1, 0, 0}, {1, 1, 0}, {0, 1 + 1e-9, 0},
	}
	m := New(vertices, [][3]int{{0, 1, 2}, {3, 4, 5}})
	g := BuildAdjacency(m, DefaultAdjacencyOptions())
	if !g.Adjacent(0, 1) {
		t.Error("coincident vertices within tolerance should link the faces")
	}
}

func TestAdjacencyRowCapacity(t *testing.T) {
	// A fan of many triangles all sharing the edge (0,1)
	vertices := []mgl64.Vec3{{0, 0, 0}, {0, 0, 1}}
	var triangles [][3]int
	for i := 0; i < MaxNeighbors+5; i++ {
		vertices = append(vertices, mgl64.Vec3{1, float64(i) * 0.01, 0.5})
		triangles = append(triangles, [3]int{0, 1, len(vertices) - 1})
	}
	m := New(vertices, triangles)
	g := BuildAdjacency(m, DefaultAdjacencyOptions())

	for i := 0; i < m.FaceCount(); i++ {
		if n := len(g.Neighbors(i)); n > MaxNeighbors {
			t.Errorf("face %d has %d neighbors, capacity is %d", i, n, MaxNeighbors)
		}
	}
	if g.Dropped() == 0 {
		t.Error("expected some pairs to be dropped for full rows")
	}
}

// strip builds a flat row of n quads (2n triangles) in the XY plane.
func strip(n int) *Mesh {
	var vertices []mgl64.Vec3
	for i := 0; i <= n; i++ {
		vertices = append(vertices, mgl64.Vec3{float64(i), 0, 0}, mgl64.Vec3{float64(i), 1, 0})
	}
	var triangles [][3]int
	for i := 0; i < n; i++ {
		a, b, c, d := 2*i, 2*i+2, 2*i+3, 2*i+1
		triangles = append(triangles, [3]int{a, b, c}, [3]int{a, c, d})
	}
	return New(vertices, triangles)
}

// doubleSidedSheet builds a unit quad plus the same quad with reversed winding.
func doubleSidedSheet() *Mesh {
	vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	return New(vertices, [][3]int{
		{0, 1, 2}, {0, 2, 3},
		{2, 1, 0}, {3, 2, 0},
	})
}
