// Package scene describes what is currently applied to the mesh: one UV
// triple and one texture image per face, plus the lighting to shade with.
package scene

import (
	"image"
	"image/color"

	"github.com/Faultbox/surfpaint/internal/engine/lighting"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// FaceUV holds the texture coordinates of a face's three corners, in the
// face's vertex order. Coordinates are normalized with the origin at the
// top-left of the texture.
type FaceUV [3]math.Vec2

// DegenerateUV returns a UV triple collapsed onto the texture center.
func DegenerateUV() FaceUV {
	c := math.Vec2{X: 0.5, Y: 0.5}
	return FaceUV{c, c, c}
}

// Scale maps the UV into pixel space of a w x h image.
func (uv FaceUV) Scale(w, h float64) [3]math.Vec2 {
	return [3]math.Vec2{
		{X: uv[0].X * w, Y: uv[0].Y * h},
		{X: uv[1].X * w, Y: uv[1].Y * h},
		{X: uv[2].X * w, Y: uv[2].Y * h},
	}
}

// Scene is a mesh with a texture binding. UV and Textures are parallel to
// Mesh.Faces; several faces may share one image.
type Scene struct {
	Mesh     *mesh.Mesh
	UV       []FaceUV
	Textures []image.Image
	Light    lighting.Light

	// Background fills pixels the mesh does not cover. The zero value is transparent.
	Background color.RGBA
}

// New creates a scene for m with all faces untextured.
func New(m *mesh.Mesh) *Scene {
	n := 0
	if m != nil {
		n = len(m.Faces)
	}
	return &Scene{
		Mesh:     m,
		UV:       make([]FaceUV, n),
		Textures: make([]image.Image, n),
		Light:    lighting.Default(),
	}
}

// Bind replaces the UV mapping and textures applied to the mesh.
func (s *Scene) Bind(uv []FaceUV, textures []image.Image) {
	copy(s.UV, uv)
	copy(s.Textures, textures)
}

// BindShared applies one texture to every face.
func (s *Scene) BindShared(uv []FaceUV, tex image.Image) {
	copy(s.UV, uv)
	for i := range s.Textures {
		s.Textures[i] = tex
	}
}

// WithLight returns a shallow copy of the scene shaded by l.
// The per-face slices are shared with the original.
func (s *Scene) WithLight(l lighting.Light, background color.RGBA) *Scene {
	cp := *s
	cp.Light = l
	cp.Background = background
	return &cp
}
