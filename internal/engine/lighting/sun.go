// Package lighting provides the shading models used by the software renderer.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Light describes how surfaces are shaded.
type Light struct {
	// Direction points from the surface towards the light. Ignored when Headlight is set.
	Direction mgl64.Vec3
	// Headlight makes the light follow the camera.
	Headlight bool
	Ambient   float64
	Diffuse   float64
}

// SunDirection converts longitude/latitude angles in degrees to a light direction vector.
// Longitude is rotation around Y axis (0-360), latitude is elevation from horizon (0-90).
// Returns a normalized direction vector pointing towards the sun.
func SunDirection(longitude, latitude float64) mgl64.Vec3 {
	// Convert degrees to radians
	lonRad := longitude * math.Pi / 180.0
	latRad := latitude * math.Pi / 180.0

	// Spherical to Cartesian conversion
	x := math.Cos(latRad) * math.Sin(lonRad)
	y := math.Sin(latRad)
	z := math.Cos(latRad) * math.Cos(lonRad)

	return mgl64.Vec3{x, y, z}
}

// Default returns the lighting used to display the mesh while orbiting:
// a camera headlight over a soft ambient term.
func Default() Light {
	return Light{
		Direction: SunDirection(45, 45),
		Headlight: true,
		Ambient:   0.35,
		Diffuse:   0.65,
	}
}

// Uniform returns full-strength ambient light with no diffuse term.
// Renders under this light reproduce texture colors exactly, which keeps
// shading out of anything baked from the render.
func Uniform() Light {
	return Light{Ambient: 1}
}

// IsUniform reports whether the light adds no shading.
func (l Light) IsUniform() bool {
	return l.Diffuse == 0 && l.Ambient == 1
}

// Intensity returns the brightness multiplier for a surface normal.
// toCamera is the unit direction from the surface to the eye.
func (l Light) Intensity(normal, toCamera mgl64.Vec3) float64 {
	dir := l.Direction
	if l.Headlight {
		dir = toCamera
	}
	lambert := math.Max(0, normal.Dot(dir))
	return math.Min(1, l.Ambient+l.Diffuse*lambert)
}
