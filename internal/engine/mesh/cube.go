package mesh

import "github.com/go-gl/mathgl/mgl64"

// Cube builds an axis-aligned cube of the given edge length centered at the
// origin: 8 shared vertices and 12 outward-facing triangles.
// Faces 0 and 1 form the +Z (front) side.
func Cube(size float64) *Mesh {
	h := size / 2
	vertices := []mgl64.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	triangles := [][3]int{
		{4, 5, 6}, {4, 6, 7}, // +Z
		{1, 0, 3}, {1, 3, 2}, // -Z
		{5, 1, 2}, {5, 2, 6}, // +X
		{0, 4, 7}, {0, 7, 3}, // -X
		{7, 6, 2}, {7, 2, 3}, // +Y
		{0, 1, 5}, {0, 5, 4}, // -Y
	}
	return New(vertices, triangles)
}
