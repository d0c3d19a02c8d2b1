// Package texture keeps the three texture representations of a painted mesh
// consistent and maps pointer strokes onto mesh faces.
//
// The Viewing representation gives every face a region of a small patch
// image and survives camera movement. The Drawing representation is one
// raster aligned with the current camera, so pointer pixels map straight to
// texels while painting. The Packed representation is a single square atlas
// built for export. Exactly one of them is applied to the mesh at a time.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	gomath "math"

	xdraw "golang.org/x/image/draw"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/lighting"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/scene"
	"github.com/Faultbox/surfpaint/internal/logger"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// ErrNotViewing is returned by operations that require the Viewing representation.
var ErrNotViewing = errors.New("texture: not in viewing mode")

// Mode is the representation currently applied to the mesh.
type Mode int

const (
	// Viewing maps each face into a per-face patch.
	Viewing Mode = iota
	// Drawing maps every face into one camera-aligned raster.
	Drawing
	// Packed maps every face into the export atlas.
	Packed
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Drawing:
		return "drawing"
	case Packed:
		return "packed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Renderer is the rendering collaborator used to project the Viewing
// texture into the Drawing raster and to pick faces under the pointer.
type Renderer interface {
	Intersector
	RenderToSurface(s *scene.Scene, cam *camera.OrbitCamera) *image.RGBA
}

// Options configures an Engine.
type Options struct {
	// BaseColor fills every face at start.
	BaseColor color.RGBA
	// DilateOffset is the pixel offset of the four extra projection passes.
	DilateOffset int
	// AtlasScale is the atlas side heuristic, see Packer.
	AtlasScale float64
	Adjacency  mesh.AdjacencyOptions
	Logger     *zap.Logger
}

// DefaultOptions returns the standard engine settings.
func DefaultOptions() Options {
	return Options{
		BaseColor:    color.RGBA{255, 255, 255, 255},
		DilateOffset: 2,
		AtlasScale:   DefaultAtlasScale,
		Adjacency:    mesh.DefaultAdjacencyOptions(),
	}
}

// Stats counts the work the engine has done.
type Stats struct {
	Merges       int
	Projections  int
	Packs        int
	Resets       int
	Patches      int
	MergedFaces  int
	LastAffected int
}

// Engine is the texture state machine for one painting session. It is the
// only writer of the UV mapping and textures applied to the mesh.
// Not safe for concurrent use.
type Engine struct {
	mesh     *mesh.Mesh
	graph    *mesh.Graph
	renderer Renderer
	camera   *camera.OrbitCamera
	opts     Options
	log      *zap.Logger

	mode  Mode
	scene *scene.Scene

	// Viewing
	patches   *patchStore
	patchOf   []PatchID
	viewingUV []scene.FaceUV

	// Drawing
	drawing   *image.RGBA
	drawingUV []scene.FaceUV
	vertexUV  []math.Vec2

	// Packed
	atlas   *Atlas
	packErr error
	packer  *Packer

	affected *FaceSet
	mapper   *StrokeMapper
	stats    Stats
}

// New creates an engine for m, starting in Viewing mode with every face
// set to opts.BaseColor. cam is read, never modified.
func New(m *mesh.Mesh, r Renderer, cam *camera.OrbitCamera, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logger.Named("texture")
	}
	if opts.DilateOffset < 0 {
		opts.DilateOffset = 0
	}

	n := 0
	if m != nil {
		n = m.FaceCount()
	}

	e := &Engine{
		mesh:      m,
		renderer:  r,
		camera:    cam,
		opts:      opts,
		log:       opts.Logger,
		mode:      Viewing,
		scene:     scene.New(m),
		patches:   newPatchStore(),
		patchOf:   make([]PatchID, n),
		viewingUV: make([]scene.FaceUV, n),
		drawingUV: make([]scene.FaceUV, n),
		affected:  NewFaceSet(n),
		packer:    NewPacker(opts.AtlasScale, opts.Logger.Named("atlas")),
	}
	if m != nil {
		e.vertexUV = make([]math.Vec2, m.VertexCount())
	}

	e.graph = mesh.BuildAdjacency(m, opts.Adjacency)
	e.mapper = NewStrokeMapper(m, e.graph, r, e.log.Named("stroke"))
	if m.IsEmpty() {
		e.log.Warn("mesh has no faces, painting disabled")
		return e
	}

	e.log.Info("texture engine ready",
		zap.Int("faces", n),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("edges", e.graph.EdgeCount()),
		zap.Int("dropped_edges", e.graph.Dropped()))

	e.resetPatches(opts.BaseColor)
	e.applyViewing()
	return e
}

// Mode returns the active representation.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Scene returns the scene with the active representation applied.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Mesh returns the session mesh.
func (e *Engine) Mesh() *mesh.Mesh {
	return e.mesh
}

// Graph returns the face adjacency graph.
func (e *Engine) Graph() *mesh.Graph {
	return e.graph
}

// Affected returns the faces touched since the last merge.
func (e *Engine) Affected() *FaceSet {
	return e.affected
}

// DrawingRaster returns the Drawing surface, or nil before the first projection.
// Brushes paint into it while the engine is in Drawing mode.
func (e *Engine) DrawingRaster() *image.RGBA {
	return e.drawing
}

// Atlas returns the last packed atlas, or nil.
func (e *Engine) Atlas() *Atlas {
	return e.atlas
}

// ViewingUV returns the UV triple of face f in its viewing patch.
func (e *Engine) ViewingUV(f int) scene.FaceUV {
	return e.viewingUV[f]
}

// DrawingUV returns the UV triple of face f in the Drawing raster.
func (e *Engine) DrawingUV(f int) scene.FaceUV {
	return e.drawingUV[f]
}

// PatchOf returns the viewing patch of face f.
func (e *Engine) PatchOf(f int) *Patch {
	return e.patches.get(e.patchOf[f])
}

// Stats returns engine counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Patches = e.patches.len()
	return s
}

// UseViewingTexture applies the Viewing representation, first merging any
// painted faces out of the Drawing raster. No-op in Viewing mode.
func (e *Engine) UseViewingTexture() {
	if e.mode == Viewing {
		return
	}
	from := e.mode
	if from == Drawing {
		e.merge()
	}
	e.mode = Viewing
	e.applyViewing()
	e.log.Info("texture mode", zap.Stringer("from", from), zap.Stringer("to", Viewing))
}

// UseDrawingTexture projects the Viewing representation through the camera
// into a fresh Drawing raster and applies it. No-op in Drawing mode.
func (e *Engine) UseDrawingTexture() {
	if e.mode == Drawing {
		return
	}
	e.UseViewingTexture()
	e.project()
	e.mode = Drawing
	e.scene.BindShared(e.drawingUV, e.drawing)
	e.scene.Light = lighting.Default()
	e.log.Info("texture mode", zap.Stringer("from", Viewing), zap.Stringer("to", Drawing))
}

// UsePackedTexture packs the Viewing patches into one atlas and applies it.
// The error wraps ErrAtlasOverflow when patches were dropped; the mode
// still changes. No-op in Packed mode.
func (e *Engine) UsePackedTexture() error {
	if e.mode == Packed {
		return nil
	}
	e.UseViewingTexture()

	atlas, err := e.packer.Pack(e.patchOf, e.patches.get, e.viewingUV)
	e.atlas, e.packErr = atlas, err
	e.stats.Packs++

	e.mode = Packed
	e.scene.BindShared(atlas.UV, atlas.Image)
	e.log.Info("texture mode", zap.Stringer("from", Viewing), zap.Stringer("to", Packed),
		zap.Int("atlas", atlas.Size))
	return err
}

// ExportPackedImage returns the packed atlas image, packing first if needed.
// The error wraps ErrAtlasOverflow when the image is missing patches.
func (e *Engine) ExportPackedImage() (*image.RGBA, error) {
	if err := e.UsePackedTexture(); err != nil && !errors.Is(err, ErrAtlasOverflow) {
		return nil, err
	}
	return e.atlas.Image, e.packErr
}

// BackgroundReset maps every face onto one shared flat-color patch,
// erasing painted content. Only valid in Viewing mode.
func (e *Engine) BackgroundReset(c color.RGBA) error {
	if e.mode != Viewing {
		return fmt.Errorf("background reset in %s mode: %w", e.mode, ErrNotViewing)
	}
	if e.mesh.IsEmpty() {
		return nil
	}
	e.resetPatches(c)
	e.affected.Clear()
	e.stats.Resets++
	e.applyViewing()
	e.log.Info("background reset", zap.String("color", fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
	return nil
}

// Paint maps one pointer sample onto the mesh and records the touched faces.
// It switches to Drawing mode first, so the camera must stay still until the
// next UseViewingTexture.
func (e *Engine) Paint(s Sample) MapResult {
	if e.mesh.IsEmpty() {
		return MapResult{Seed: -1}
	}
	e.UseDrawingTexture()
	res := e.mapper.Map(s, e.camera, e.drawingUV, e.drawing.Bounds().Size(), e.affected)
	e.stats.LastAffected = e.affected.Len()
	return res
}

// Previous returns the last mapped pointer position and its seed face,
// -1 when no stroke is in progress.
func (e *Engine) Previous() (math.Vec2, int) {
	if e.mapper == nil {
		return math.Vec2{}, -1
	}
	return e.mapper.Previous()
}

// EndStroke forgets the previous sample so the next Paint starts a new stroke.
func (e *Engine) EndStroke() {
	if e.mapper != nil {
		e.mapper.Reset()
	}
}

func (e *Engine) resetPatches(c color.RGBA) {
	p := e.patches.flat(c)
	uv := scene.DegenerateUV()
	for f := range e.patchOf {
		e.patchOf[f] = p.ID
		e.viewingUV[f] = uv
	}
	e.patches.prune(e.patchOf)
}

func (e *Engine) applyViewing() {
	if e.mesh.IsEmpty() {
		return
	}
	textures := make([]image.Image, len(e.patchOf))
	for f, id := range e.patchOf {
		textures[f] = e.patches.get(id).Image
	}
	e.scene.Bind(e.viewingUV, textures)
	e.scene.Light = lighting.Default()
}

// merge copies the region of the Drawing raster covered by the affected
// faces into one new shared patch and remaps those faces onto it.
func (e *Engine) merge() {
	faces := e.affected.Faces()
	if len(faces) == 0 || e.drawing == nil {
		e.affected.Clear()
		return
	}

	size := e.drawing.Bounds().Size()
	w, h := float64(size.X), float64(size.Y)

	minX, minY := gomath.Inf(1), gomath.Inf(1)
	maxX, maxY := gomath.Inf(-1), gomath.Inf(-1)
	for _, f := range faces {
		for _, p := range e.drawingUV[f].Scale(w, h) {
			minX, maxX = gomath.Min(minX, p.X), gomath.Max(maxX, p.X)
			minY, maxY = gomath.Min(minY, p.Y), gomath.Max(maxY, p.Y)
		}
	}

	x0 := clamp(int(gomath.Floor(minX)), 0, size.X-1)
	y0 := clamp(int(gomath.Floor(minY)), 0, size.Y-1)
	x1 := clamp(int(gomath.Ceil(maxX)), x0+1, size.X)
	y1 := clamp(int(gomath.Ceil(maxY)), y0+1, size.Y)
	bounds := image.Rect(x0, y0, x1, y1)

	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(img, img.Bounds(), e.drawing, bounds.Min, xdraw.Src)
	patch := e.patches.add(img)

	pw, ph := float64(bounds.Dx()), float64(bounds.Dy())
	for _, f := range faces {
		px := e.drawingUV[f].Scale(w, h)
		for c := 0; c < 3; c++ {
			e.viewingUV[f][c] = math.Vec2{
				X: (px[c].X - float64(x0)) / pw,
				Y: (px[c].Y - float64(y0)) / ph,
			}
		}
		e.patchOf[f] = patch.ID
	}

	removed := e.patches.prune(e.patchOf)
	e.stats.Merges++
	e.stats.MergedFaces += len(faces)
	e.log.Debug("merged drawing into viewing",
		zap.Int("faces", len(faces)),
		zap.Uint32("patch", uint32(patch.ID)),
		zap.Stringer("bounds", bounds),
		zap.Int("patches_released", removed))

	e.affected.Clear()
}

// project renders the Viewing representation from the current camera under
// uniform light and recomputes the Drawing UVs from vertex projections.
func (e *Engine) project() {
	proj := e.scene.WithLight(lighting.Uniform(), color.RGBA{})
	shot := e.renderer.RenderToSurface(proj, e.camera)

	bounds := shot.Bounds()
	if e.drawing == nil || e.drawing.Bounds() != bounds {
		e.drawing = image.NewRGBA(bounds)
	} else {
		clear(e.drawing.Pix)
	}

	// Four offset passes under a centered one dilate coverage past silhouette edges
	d := e.opts.DilateOffset
	offsets := []image.Point{{-d, 0}, {d, 0}, {0, -d}, {0, d}, {0, 0}}
	if d == 0 {
		offsets = offsets[4:]
	}
	for _, off := range offsets {
		xdraw.Draw(e.drawing, bounds.Add(off), shot, bounds.Min, xdraw.Over)
	}

	if e.mesh.IsEmpty() {
		return
	}
	for v, p := range e.mesh.Vertices {
		e.vertexUV[v] = e.camera.Project(p)
	}
	for f, face := range e.mesh.Faces {
		for c, v := range face.Vertices {
			e.drawingUV[f][c] = e.vertexUV[v]
		}
	}

	e.mapper.Reset()
	e.stats.Projections++
	e.log.Debug("projected viewing texture",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.Int("passes", len(offsets)))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
