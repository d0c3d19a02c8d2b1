// Package picking provides ray casting against meshes.
package picking

import (
	gomath "math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/surfpaint/internal/engine/mesh"
)

// parallelEpsilon is the determinant below which a ray is parallel to a triangle.
const parallelEpsilon = 1e-12

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Hit is one ray/face intersection.
type Hit struct {
	Face     int
	Point    mgl64.Vec3
	Distance float64
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float64, invViewProj mgl64.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	// Unproject near and far points
	nearWorld := invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1.0, 1.0})
	farWorld := invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1.0, 1.0})

	// Perspective divide
	near := nearWorld.Vec3()
	if nearWorld[3] != 0 {
		near = near.Mul(1 / nearWorld[3])
	}
	far := farWorld.Vec3()
	if farWorld[3] != 0 {
		far = far.Mul(1 / farWorld[3])
	}

	dir := far.Sub(near)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}

	return Ray{Origin: near, Direction: dir}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectTriangle tests the ray against triangle abc from either side
// (Moller-Trumbore). Returns the distance along the ray.
func (r Ray) IntersectTriangle(a, b, c mgl64.Vec3) (t float64, hit bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if gomath.Abs(det) < parallelEpsilon {
		return 0, false // Ray parallel to triangle
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, false // Intersection behind ray origin
	}
	return t, true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float64, hit bool) {
	tmin := -gomath.MaxFloat64
	tmax := gomath.MaxFloat64

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] != 0 {
			t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			tmin = gomath.Max(tmin, t1)
			tmax = gomath.Min(tmax, t2)
		} else if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	// Check if intersection is valid
	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	// Return entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// CastMesh intersects the ray with every face of m and returns the hits
// ordered nearest first.
func CastMesh(r Ray, m *mesh.Mesh) []Hit {
	if m.IsEmpty() {
		return nil
	}

	b := m.Bounds()
	if _, ok := r.IntersectAABB(AABB{Min: b.Min, Max: b.Max}); !ok {
		return nil
	}

	var hits []Hit
	for i := range m.Faces {
		c := m.Corners(i)
		if t, ok := r.IntersectTriangle(c[0], c[1], c[2]); ok {
			hits = append(hits, Hit{Face: i, Point: r.At(t), Distance: t})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})
	return hits
}
