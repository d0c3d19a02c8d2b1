package texture

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/picking"
	"github.com/Faultbox/surfpaint/internal/engine/scene"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// Intersector resolves a pick ray to the faces it crosses, nearest first.
type Intersector interface {
	Intersect(r picking.Ray, m *mesh.Mesh) []picking.Hit
}

// Sample is one pointer sample of a stroke.
type Sample struct {
	// Position is in raster-surface pixels, origin top-left.
	Position math.Vec2
	// Radius of the brush footprint in pixels.
	Radius float64
	// StrokeStarts marks the first sample of a stroke segment.
	StrokeStarts bool
}

// MapResult reports what one sample did.
type MapResult struct {
	Seed   int  // Face under the pointer, -1 on a miss
	Hit    bool // Pointer ray hit the mesh
	Added  int  // Faces newly inserted into the affected set
	Tested int  // Faces examined by the flood
}

// StrokeMapper finds the faces a brush footprint touches by flooding the
// adjacency graph from the face under the pointer.
type StrokeMapper struct {
	mesh   *mesh.Mesh
	graph  *mesh.Graph
	picker Intersector
	log    *zap.Logger

	centroids []mgl64.Vec3
	visited   *FaceSet
	stack     []int

	prevPos  math.Vec2
	prevFace int
}

// NewStrokeMapper creates a mapper for m. The graph must be built from m.
func NewStrokeMapper(m *mesh.Mesh, g *mesh.Graph, picker Intersector, log *zap.Logger) *StrokeMapper {
	n := 0
	if m != nil {
		n = m.FaceCount()
	}
	sm := &StrokeMapper{
		mesh:      m,
		graph:     g,
		picker:    picker,
		log:       log,
		centroids: make([]mgl64.Vec3, n),
		visited:   NewFaceSet(n),
		prevFace:  -1,
	}
	for f := 0; f < n; f++ {
		sm.centroids[f] = m.Centroid(f)
	}
	return sm
}

// Reset forgets the previous sample so the next one starts a new stroke.
func (sm *StrokeMapper) Reset() {
	sm.prevFace = -1
	sm.prevPos = math.Vec2{}
}

// Previous returns the last sample position and seed face, or -1 if there is none.
func (sm *StrokeMapper) Previous() (math.Vec2, int) {
	return sm.prevPos, sm.prevFace
}

// footprint is the stroke shape tested against face UV triangles in pixel space.
type footprint struct {
	center math.Vec2
	radius float64
	quad   [4]math.Vec2
	swept  bool
}

func (fp footprint) overlaps(tri [3]math.Vec2) bool {
	// The round cap at the current center is part of the swept shape too
	if math.TriangleCircleOverlap(tri, fp.center, fp.radius) {
		return true
	}
	return fp.swept && math.TriangleQuadOverlap(tri, fp.quad)
}

// Map floods from the face under s.Position and inserts every front-facing
// face whose drawing UV overlaps the footprint into affected. uv is the
// Drawing mapping and raster the Drawing surface size.
func (sm *StrokeMapper) Map(s Sample, cam *camera.OrbitCamera, uv []scene.FaceUV, raster image.Point, affected *FaceSet) MapResult {
	res := MapResult{Seed: -1}
	if sm.mesh.IsEmpty() || s.Radius <= math.Epsilon {
		return res
	}

	hits := sm.picker.Intersect(cam.Ray(s.Position.X, s.Position.Y), sm.mesh)
	if len(hits) == 0 {
		// A miss breaks stroke continuity; the next hit starts fresh
		sm.Reset()
		return res
	}
	seed := hits[0].Face
	res.Seed, res.Hit = seed, true

	fp := footprint{center: s.Position, radius: s.Radius}
	continuing := !s.StrokeStarts && sm.prevFace >= 0
	if continuing {
		fp.quad, fp.swept = math.CapsuleQuad(sm.prevPos, s.Position, s.Radius)
	}

	w, h := float64(raster.X), float64(raster.Y)

	sm.visited.Clear()
	sm.stack = append(sm.stack[:0], seed)
	if continuing && sm.prevFace != seed {
		sm.stack = append(sm.stack, sm.prevFace)
	}

	for len(sm.stack) > 0 {
		f := sm.stack[len(sm.stack)-1]
		sm.stack = sm.stack[:len(sm.stack)-1]

		if !sm.visited.Add(f) {
			continue
		}
		res.Tested++

		if !cam.IsFrontFacing(sm.mesh.Faces[f].Normal, sm.centroids[f]) {
			continue
		}
		if !fp.overlaps(uv[f].Scale(w, h)) {
			continue
		}

		if affected.Add(f) {
			res.Added++
		}
		for _, n := range sm.graph.Neighbors(f) {
			if !sm.visited.Contains(n) {
				sm.stack = append(sm.stack, n)
			}
		}
	}

	sm.prevPos = s.Position
	sm.prevFace = seed

	sm.log.Debug("stroke sample mapped",
		zap.Int("seed", seed),
		zap.Bool("starts", !continuing),
		zap.Int("tested", res.Tested),
		zap.Int("added", res.Added),
		zap.Int("affected", affected.Len()))
	return res
}
