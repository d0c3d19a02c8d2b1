// Package session wires the texture engine, camera, renderer and pencil into
// the operations an editor front end calls: pointer events, camera moves,
// texture mode switches, background reset and export.
package session

import (
	"image"
	"image/color"

	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/brush"
	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/renderer"
	"github.com/Faultbox/surfpaint/internal/engine/texture"
	"github.com/Faultbox/surfpaint/internal/logger"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// Options configures a Session.
type Options struct {
	Brush      brush.Settings
	Background color.RGBA
	Texture    texture.Options
}

// DefaultOptions returns the standard session settings.
func DefaultOptions() Options {
	return Options{
		Brush:      brush.DefaultSettings(),
		Background: color.RGBA{48, 48, 48, 255},
		Texture:    texture.DefaultOptions(),
	}
}

// Session is one painting session over an immutable mesh.
// Not safe for concurrent use; events must be delivered serially.
type Session struct {
	mesh     *mesh.Mesh
	camera   *camera.OrbitCamera
	renderer *renderer.Renderer
	engine   *texture.Engine
	pencil   *brush.Pencil
	opts     Options
	log      *zap.Logger

	pointerDown bool
	strokes     int
}

// New creates a session painting m as seen through cam.
func New(m *mesh.Mesh, cam *camera.OrbitCamera, r *renderer.Renderer, opts Options) *Session {
	s := &Session{
		mesh:     m,
		camera:   cam,
		renderer: r,
		opts:     opts,
		log:      logger.Named("session"),
		pencil:   brush.NewPencil(opts.Brush),
	}
	s.engine = texture.New(m, r, cam, opts.Texture)
	return s
}

// Engine returns the texture engine.
func (s *Session) Engine() *texture.Engine {
	return s.engine
}

// Camera returns the session camera.
func (s *Session) Camera() *camera.OrbitCamera {
	return s.camera
}

// Mesh returns the session mesh.
func (s *Session) Mesh() *mesh.Mesh {
	return s.mesh
}

// Brush returns the settings new strokes start with.
func (s *Session) Brush() brush.Settings {
	return s.opts.Brush
}

// SetBrush changes the settings of subsequent strokes.
func (s *Session) SetBrush(b brush.Settings) {
	s.opts.Brush = b
}

// Strokes returns how many strokes have been started.
func (s *Session) Strokes() int {
	return s.strokes
}

// Painting reports whether the pointer is down.
func (s *Session) Painting() bool {
	return s.pointerDown
}

// OnPointerDown starts a stroke at pos, in raster pixels.
func (s *Session) OnPointerDown(pos math.Vec2, radius float64, isNewStroke bool) texture.MapResult {
	s.pointerDown = true
	s.strokes++

	// Each stroke owns a pencil built from explicit settings
	settings := s.opts.Brush
	if radius > 0 {
		settings.Width = 2 * radius
	}
	s.pencil = brush.NewPencil(settings)

	return s.sample(pos, radius, true)
}

// OnPointerMove extends the stroke to pos. isNewStroke starts a new segment
// without a capsule from the previous sample. Moves without a pressed
// pointer are ignored.
func (s *Session) OnPointerMove(pos math.Vec2, radius float64, isNewStroke bool) texture.MapResult {
	if !s.pointerDown {
		return texture.MapResult{Seed: -1}
	}
	return s.sample(pos, radius, isNewStroke)
}

// OnPointerUp finishes the stroke, painting a last sample at pos when it
// moved since the previous one.
func (s *Session) OnPointerUp(pos math.Vec2, radius float64, isNewStroke bool) texture.MapResult {
	if !s.pointerDown {
		return texture.MapResult{Seed: -1}
	}

	res := texture.MapResult{Seed: -1}
	if prev, _ := s.engine.Previous(); !prev.Near(pos) {
		res = s.sample(pos, radius, isNewStroke)
	}

	s.pointerDown = false
	s.engine.EndStroke()
	s.pencil.End()
	return res
}

func (s *Session) sample(pos math.Vec2, radius float64, strokeStarts bool) texture.MapResult {
	res := s.engine.Paint(texture.Sample{Position: pos, Radius: radius, StrokeStarts: strokeStarts})
	if !res.Hit {
		// The mapper treats a miss as a stroke break; so does the pencil
		s.pencil.End()
		return res
	}

	var err error
	raster := s.engine.DrawingRaster()
	if strokeStarts || !s.pencil.Active() {
		err = s.pencil.Begin(raster, pos)
	} else {
		err = s.pencil.Continue(raster, pos)
	}
	if err != nil {
		s.log.Warn("pencil stamp failed", zap.Error(err))
	}
	return res
}

// Orbit rotates the camera by a pointer drag in pixels. The Drawing raster
// is tied to the current projection, so painted faces are merged first.
func (s *Session) Orbit(dx, dy float64) {
	s.finishStroke()
	s.engine.UseViewingTexture()
	s.camera.HandleDrag(dx, dy)
}

// Zoom moves the camera toward or away from its target.
func (s *Session) Zoom(delta float64) {
	s.finishStroke()
	s.engine.UseViewingTexture()
	s.camera.HandleZoom(delta)
}

// SetProjection switches between perspective and orthographic viewing.
func (s *Session) SetProjection(p camera.Projection) {
	if s.camera.Projection == p {
		return
	}
	s.finishStroke()
	s.engine.UseViewingTexture()
	s.camera.Projection = p
	s.log.Info("projection changed", zap.Stringer("projection", p))
}

// Resize changes the raster surface size.
func (s *Session) Resize(width, height int) {
	if w, h := s.camera.Viewport(); w == width && h == height {
		return
	}
	s.finishStroke()
	s.engine.UseViewingTexture()
	s.camera.SetViewport(width, height)
}

func (s *Session) finishStroke() {
	if s.pointerDown {
		s.pointerDown = false
		s.engine.EndStroke()
		s.pencil.End()
	}
}

// UseViewingTexture applies the per-face patch representation.
func (s *Session) UseViewingTexture() {
	s.engine.UseViewingTexture()
}

// UseDrawingTexture applies the camera-aligned raster representation.
func (s *Session) UseDrawingTexture() {
	s.engine.UseDrawingTexture()
}

// UsePackedTexture applies the export atlas. The error wraps
// texture.ErrAtlasOverflow when patches did not fit.
func (s *Session) UsePackedTexture() error {
	s.finishStroke()
	return s.engine.UsePackedTexture()
}

// BackgroundReset erases all paint, filling the mesh with c.
// It merges any pending paint first so the reset is valid in every mode.
func (s *Session) BackgroundReset(c color.RGBA) error {
	s.finishStroke()
	s.engine.UseViewingTexture()
	return s.engine.BackgroundReset(c)
}

// ExportPackedImage packs the painted surface into one image.
func (s *Session) ExportPackedImage() (*image.RGBA, error) {
	s.finishStroke()
	return s.engine.ExportPackedImage()
}

// Render draws the mesh with the active texture representation.
func (s *Session) Render() *image.RGBA {
	sc := s.engine.Scene()
	return s.renderer.RenderToSurface(sc.WithLight(sc.Light, s.opts.Background), s.camera)
}
