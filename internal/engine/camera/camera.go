// Package camera provides the orbit camera used to view and paint a mesh.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/surfpaint/internal/engine/picking"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// Projection selects how the camera maps the scene onto the raster surface.
type Projection int

const (
	// Perspective is a pinhole projection with a vertical field of view.
	Perspective Projection = iota
	// Orthographic is a parallel projection sized to match the perspective
	// frustum at the orbit target.
	Orthographic
)

// String returns the projection name.
func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// ParseProjection converts a config string to a projection, defaulting to perspective.
func ParseProjection(s string) Projection {
	if s == "orthographic" || s == "ortho" {
		return Orthographic
	}
	return Perspective
}

// frontFacingEpsilon is the minimum cosine for a face to count as facing the camera.
const frontFacingEpsilon = 1e-6

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	// Target point to orbit around
	Target mgl64.Vec3

	// Spherical coordinates
	Distance float64 // Distance from target
	Pitch    float64 // Vertical angle, radians
	Yaw      float64 // Horizontal angle, radians

	Projection Projection
	FovY       float64 // Vertical field of view, radians
	Near, Far  float64

	// Constraints
	MinDistance float64
	MaxDistance float64
	MinPitch    float64
	MaxPitch    float64

	// Sensitivity
	DragSensitivity float64
	ZoomSensitivity float64

	width, height int
}

// NewOrbitCamera creates a new orbit camera for a raster surface of the given size.
func NewOrbitCamera(width, height int) *OrbitCamera {
	return &OrbitCamera{
		Distance:        5.0,
		Pitch:           0.0,
		Yaw:             0.0,
		Projection:      Perspective,
		FovY:            mgl64.DegToRad(45),
		Near:            0.05,
		Far:             1000,
		MinDistance:     0.1,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		width:           width,
		height:          height,
	}
}

// Viewport returns the raster surface size in pixels.
func (c *OrbitCamera) Viewport() (int, int) {
	return c.width, c.height
}

// SetViewport changes the raster surface size.
func (c *OrbitCamera) SetViewport(width, height int) {
	c.width = width
	c.height = height
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl64.Vec3 {
	x := c.Distance * gomath.Cos(c.Pitch) * gomath.Sin(c.Yaw)
	y := c.Distance * gomath.Sin(c.Pitch)
	z := c.Distance * gomath.Cos(c.Pitch) * gomath.Cos(c.Yaw)
	return c.Target.Add(mgl64.Vec3{x, y, z})
}

// Forward returns the unit view direction from the camera to its target.
func (c *OrbitCamera) Forward() mgl64.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
}

func (c *OrbitCamera) aspect() float64 {
	if c.height == 0 {
		return 1
	}
	return float64(c.width) / float64(c.height)
}

// ProjectionMatrix returns the projection matrix for the current mode.
func (c *OrbitCamera) ProjectionMatrix() mgl64.Mat4 {
	if c.Projection == Orthographic {
		halfH := c.Distance * gomath.Tan(c.FovY/2)
		halfW := halfH * c.aspect()
		return mgl64.Ortho(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	}
	return mgl64.Perspective(c.FovY, c.aspect(), c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection() mgl64.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// ProjectDepth projects a world point to normalized screen space ([0,1],
// origin top-left, Y down) and also returns the NDC depth and the clip w.
// ok is false for points on or behind the camera plane.
func (c *OrbitCamera) ProjectDepth(p mgl64.Vec3) (screen math.Vec2, depth, w float64, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	w = clip[3]
	if w <= 1e-9 {
		return math.Vec2{}, 0, w, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	screen = math.Vec2{X: (ndc[0] + 1) / 2, Y: (1 - ndc[1]) / 2}
	return screen, ndc[2], w, true
}

// Project maps a world point to normalized screen space ([0,1], origin top-left).
func (c *OrbitCamera) Project(p mgl64.Vec3) math.Vec2 {
	s, _, _, _ := c.ProjectDepth(p)
	return s
}

// Unproject maps a normalized screen point and NDC depth (-1 near, 1 far)
// back to world space.
func (c *OrbitCamera) Unproject(screen math.Vec2, depth float64) mgl64.Vec3 {
	ndc := mgl64.Vec4{2*screen.X - 1, 1 - 2*screen.Y, depth, 1}
	world := c.ViewProjection().Inv().Mul4x1(ndc)
	if world[3] == 0 {
		return world.Vec3()
	}
	return world.Vec3().Mul(1 / world[3])
}

// Ray returns the world-space pick ray through a pixel of the raster surface.
func (c *OrbitCamera) Ray(px, py float64) picking.Ray {
	return picking.ScreenToRay(px, py, float64(c.width), float64(c.height), c.ViewProjection().Inv())
}

// ViewDirection returns the unit direction from the camera towards point p.
func (c *OrbitCamera) ViewDirection(p mgl64.Vec3) mgl64.Vec3 {
	if c.Projection == Orthographic {
		return c.Forward()
	}
	return p.Sub(c.Position()).Normalize()
}

// IsFrontFacing reports whether a surface at point p with the given normal faces the camera.
func (c *OrbitCamera) IsFrontFacing(normal, p mgl64.Vec3) bool {
	return normal.Dot(c.ViewDirection(p).Mul(-1)) > frontFacingEpsilon
}

// HandleDrag updates rotation based on pointer drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float64) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	// Clamp pitch
	c.Pitch = mgl64.Clamp(c.Pitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float64) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl64.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on a bounding box and backs off until it fits the view.
func (c *OrbitCamera) FitToBounds(minCorner, maxCorner mgl64.Vec3) {
	c.Target = minCorner.Add(maxCorner).Mul(0.5)

	radius := maxCorner.Sub(minCorner).Len() / 2
	if radius <= 0 {
		radius = 1
	}
	c.Distance = radius / gomath.Sin(c.FovY/2)
	c.Near = c.Distance * 0.01
	c.Far = c.Distance * 10
	if c.Distance > c.MaxDistance {
		c.MaxDistance = c.Distance * 4
	}
	if c.MinDistance > c.Distance {
		c.MinDistance = c.Distance / 4
	}
}
