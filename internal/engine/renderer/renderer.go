// Package renderer provides a CPU triangle rasterizer that draws a textured
// scene to an RGBA surface and answers per-pixel face queries by ray casting.
package renderer

import (
	"image"
	"image/color"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/picking"
	"github.com/Faultbox/surfpaint/internal/engine/scene"
	"github.com/Faultbox/surfpaint/internal/logger"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	// DrawBackFaces renders triangles facing away from the camera.
	DrawBackFaces bool
}

// Stats describes the last rendered frame.
type Stats struct {
	FacesDrawn  int
	FacesCulled int
	Pixels      int
}

// Renderer rasterizes scenes in software.
type Renderer struct {
	config  Config
	zbuffer []float64
	stats   Stats
	log     *zap.Logger
}

// New creates a new renderer.
func New(cfg Config) *Renderer {
	return &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}
}

// Stats returns statistics for the last RenderToSurface call.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	P    math.Vec2 // Pixel coordinates
	Z    float64   // NDC depth
	InvW float64   // 1/w for perspective-correct interpolation
	UV   math.Vec2
}

// RenderToSurface draws s as seen by cam into a new image the size of the
// camera viewport.
func (r *Renderer) RenderToSurface(s *scene.Scene, cam *camera.OrbitCamera) *image.RGBA {
	w, h := cam.Viewport()
	img := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	r.stats = Stats{}
	if w <= 0 || h <= 0 {
		return img
	}

	if s.Background.A != 0 {
		bg := s.Background
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i+0] = bg.R
			img.Pix[i+1] = bg.G
			img.Pix[i+2] = bg.B
			img.Pix[i+3] = bg.A
		}
	}

	r.clearDepth(w * h)

	if s.Mesh.IsEmpty() {
		return img
	}

	for f := range s.Mesh.Faces {
		if r.drawFace(img, s, cam, f) {
			r.stats.FacesDrawn++
		} else {
			r.stats.FacesCulled++
		}
	}

	r.log.Debug("frame rendered",
		zap.Int("faces", r.stats.FacesDrawn),
		zap.Int("culled", r.stats.FacesCulled),
		zap.Int("pixels", r.stats.Pixels))
	return img
}

// Intersect returns every face the ray crosses, nearest first.
func (r *Renderer) Intersect(ray picking.Ray, m *mesh.Mesh) []picking.Hit {
	return picking.CastMesh(ray, m)
}

func (r *Renderer) clearDepth(n int) {
	if cap(r.zbuffer) < n {
		r.zbuffer = make([]float64, n)
	}
	r.zbuffer = r.zbuffer[:n]
	// Copy-doubling fill
	r.zbuffer[0] = gomath.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// drawFace rasterizes one face. Returns false if nothing was attempted.
func (r *Renderer) drawFace(img *image.RGBA, s *scene.Scene, cam *camera.OrbitCamera, f int) bool {
	face := s.Mesh.Faces[f]
	centroid := s.Mesh.Centroid(f)
	if !r.config.DrawBackFaces && !cam.IsFrontFacing(face.Normal, centroid) {
		return false
	}

	width, height := img.Rect.Dx(), img.Rect.Dy()
	corners := s.Mesh.Corners(f)

	var sv [3]screenVertex
	for i := range 3 {
		p, z, w, ok := cam.ProjectDepth(corners[i])
		if !ok {
			// No near-plane clipping; faces crossing the eye plane are skipped
			return false
		}
		sv[i] = screenVertex{
			P:    math.Vec2{X: p.X * float64(width), Y: p.Y * float64(height)},
			Z:    z,
			InvW: 1 / w,
		}
		if f < len(s.UV) {
			sv[i].UV = s.UV[f][i]
		}
	}

	area := sv[1].P.Sub(sv[0].P).Cross(sv[2].P.Sub(sv[0].P))
	if gomath.Abs(area) < math.Epsilon {
		return false
	}

	var tex image.Image
	if f < len(s.Textures) {
		tex = s.Textures[f]
	}

	intensity := 1.0
	if !s.Light.IsUniform() {
		toCamera := cam.ViewDirection(centroid).Mul(-1)
		n := face.Normal
		if n.Dot(toCamera) < 0 {
			n = n.Mul(-1)
		}
		intensity = s.Light.Intensity(n, toCamera)
	}

	minX := int(gomath.Max(0, gomath.Floor(min(sv[0].P.X, sv[1].P.X, sv[2].P.X))))
	maxX := int(gomath.Min(float64(width-1), gomath.Ceil(max(sv[0].P.X, sv[1].P.X, sv[2].P.X))))
	minY := int(gomath.Max(0, gomath.Floor(min(sv[0].P.Y, sv[1].P.Y, sv[2].P.Y))))
	maxY := int(gomath.Min(float64(height-1), gomath.Ceil(max(sv[0].P.Y, sv[1].P.Y, sv[2].P.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := math.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}

			// Barycentric weights; dividing by the signed area accepts either winding
			b0 := sv[2].P.Sub(sv[1].P).Cross(p.Sub(sv[1].P)) / area
			b1 := sv[0].P.Sub(sv[2].P).Cross(p.Sub(sv[2].P)) / area
			b2 := 1 - b0 - b1
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*sv[0].Z + b1*sv[1].Z + b2*sv[2].Z
			if z < -1 || z > 1 {
				continue
			}
			idx := y*width + x
			if z >= r.zbuffer[idx] {
				continue
			}

			w0, w1, w2 := b0*sv[0].InvW, b1*sv[1].InvW, b2*sv[2].InvW
			oneOverW := w0 + w1 + w2
			if oneOverW == 0 {
				continue
			}
			u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
			v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW

			c := sample(tex, u, v)
			if intensity < 1 {
				c = shade(c, intensity)
			}

			r.zbuffer[idx] = z
			img.SetRGBA(x, y, c)
			r.stats.Pixels++
		}
	}
	return true
}

// sample reads the nearest texel at normalized (u, v). Coordinates outside
// [0,1] clamp to the edge. A nil texture samples white.
func sample(tex image.Image, u, v float64) color.RGBA {
	if tex == nil {
		return color.RGBA{255, 255, 255, 255}
	}
	b := tex.Bounds()
	if b.Empty() {
		return color.RGBA{255, 255, 255, 255}
	}
	tx := b.Min.X + clampInt(int(gomath.Floor(u*float64(b.Dx()))), 0, b.Dx()-1)
	ty := b.Min.Y + clampInt(int(gomath.Floor(v*float64(b.Dy()))), 0, b.Dy()-1)

	if rgba, ok := tex.(*image.RGBA); ok {
		return rgba.RGBAAt(tx, ty)
	}
	return color.RGBAModel.Convert(tex.At(tx, ty)).(color.RGBA)
}

func shade(c color.RGBA, intensity float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * intensity),
		G: uint8(float64(c.G) * intensity),
		B: uint8(float64(c.B) * intensity),
		A: c.A,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
