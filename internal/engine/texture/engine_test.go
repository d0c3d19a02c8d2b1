package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/picking"
	"github.com/Faultbox/surfpaint/internal/engine/scene"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// fakeRenderer fills the whole surface with one color and picks faces by
// exact ray casting.
type fakeRenderer struct {
	fill    color.RGBA
	renders int
}

func (r *fakeRenderer) RenderToSurface(_ *scene.Scene, cam *camera.OrbitCamera) *image.RGBA {
	r.renders++
	w, h := cam.Viewport()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r.fill.R, r.fill.G, r.fill.B, r.fill.A
	}
	return img
}

func (r *fakeRenderer) Intersect(ray picking.Ray, m *mesh.Mesh) []picking.Hit {
	return picking.CastMesh(ray, m)
}

func newCubeEngine(t *testing.T) (*Engine, *fakeRenderer, *camera.OrbitCamera) {
	t.Helper()
	r := &fakeRenderer{fill: color.RGBA{0, 128, 0, 255}}
	cam := camera.NewOrbitCamera(200, 200)
	e := New(mesh.Cube(1), r, cam, DefaultOptions())
	return e, r, cam
}

var center = math.Vec2{X: 100, Y: 100}

func TestNewStartsViewing(t *testing.T) {
	e, _, _ := newCubeEngine(t)

	if e.Mode() != Viewing {
		t.Fatalf("initial mode = %s, want viewing", e.Mode())
	}
	first := e.PatchOf(0)
	for f := 0; f < e.Mesh().FaceCount(); f++ {
		if e.PatchOf(f) != first {
			t.Errorf("face %d does not share the base patch", f)
		}
	}
	if e.Stats().Patches != 1 {
		t.Errorf("patches = %d, want 1", e.Stats().Patches)
	}
}

func TestBackgroundResetFreshSession(t *testing.T) {
	e, _, _ := newCubeEngine(t)
	red := color.RGBA{200, 10, 10, 255}

	if err := e.BackgroundReset(red); err != nil {
		t.Fatalf("BackgroundReset: %v", err)
	}

	shared := e.PatchOf(0)
	if w, h := shared.Size(); w != 1 || h != 1 {
		t.Fatalf("reset patch is %dx%d, want 1x1", w, h)
	}
	if got := shared.Image.RGBAAt(0, 0); got != red {
		t.Errorf("reset patch color = %v, want %v", got, red)
	}
	for f := 0; f < e.Mesh().FaceCount(); f++ {
		if e.PatchOf(f).ID != shared.ID {
			t.Errorf("face %d patch %d, want shared %d", f, e.PatchOf(f).ID, shared.ID)
		}
		if e.ViewingUV(f) != scene.DegenerateUV() {
			t.Errorf("face %d UV = %v, want all (0.5, 0.5)", f, e.ViewingUV(f))
		}
		if e.Scene().Textures[f] != shared.Image {
			t.Errorf("face %d scene texture not bound to the reset patch", f)
		}
	}
	if e.Stats().Patches != 1 {
		t.Errorf("old patches should be released, have %d", e.Stats().Patches)
	}
}

func TestBackgroundResetRequiresViewing(t *testing.T) {
	e, _, _ := newCubeEngine(t)
	e.UseDrawingTexture()

	err := e.BackgroundReset(color.RGBA{A: 255})
	if !errors.Is(err, ErrNotViewing) {
		t.Fatalf("err = %v, want ErrNotViewing", err)
	}
	if e.Mode() != Drawing {
		t.Error("failed reset must not change mode")
	}
}

func TestModeSwitchesAreNoOps(t *testing.T) {
	e, r, _ := newCubeEngine(t)

	e.UseViewingTexture()
	e.UseViewingTexture()
	if st := e.Stats(); st.Merges != 0 || st.Projections != 0 {
		t.Errorf("viewing while viewing did work: %+v", st)
	}

	e.UseDrawingTexture()
	raster := e.DrawingRaster()
	e.UseDrawingTexture()
	if r.renders != 1 || e.Stats().Projections != 1 {
		t.Errorf("drawing twice rendered %d times", r.renders)
	}
	if e.DrawingRaster() != raster {
		t.Error("repeat UseDrawingTexture replaced the raster")
	}

	if err := e.UsePackedTexture(); err != nil {
		t.Fatalf("UsePackedTexture: %v", err)
	}
	atlas := e.Atlas()
	if err := e.UsePackedTexture(); err != nil {
		t.Fatalf("UsePackedTexture: %v", err)
	}
	if e.Stats().Packs != 1 || e.Atlas() != atlas {
		t.Error("packed twice should not repack")
	}
	if e.Mode() != Packed {
		t.Errorf("mode = %s, want packed", e.Mode())
	}
}

func TestExactlyOneMode(t *testing.T) {
	e, _, _ := newCubeEngine(t)

	steps := []struct {
		do   func()
		want Mode
	}{
		{e.UseDrawingTexture, Drawing},
		{func() { _ = e.UsePackedTexture() }, Packed},
		{e.UseViewingTexture, Viewing},
		{func() { _ = e.UsePackedTexture() }, Packed},
		{e.UseDrawingTexture, Drawing},
		{e.UseViewingTexture, Viewing},
	}
	for i, st := range steps {
		st.do()
		if e.Mode() != st.want {
			t.Fatalf("step %d: mode = %s, want %s", i, e.Mode(), st.want)
		}
		// The bound textures always belong to the active representation
		tex := e.Scene().Textures[0]
		switch st.want {
		case Drawing:
			if tex != e.DrawingRaster() {
				t.Errorf("step %d: drawing mode bound another texture", i)
			}
		case Packed:
			if tex != e.Atlas().Image {
				t.Errorf("step %d: packed mode bound another texture", i)
			}
		case Viewing:
			if tex != e.PatchOf(0).Image {
				t.Errorf("step %d: viewing mode bound another texture", i)
			}
		}
	}
}

func TestPaintMergesIntoSharedPatch(t *testing.T) {
	e, _, _ := newCubeEngine(t)

	res := e.Paint(Sample{Position: center, Radius: 5, StrokeStarts: true})
	if !res.Hit {
		t.Fatal("center sample should hit the cube")
	}
	if e.Mode() != Drawing {
		t.Fatalf("Paint should switch to drawing, mode = %s", e.Mode())
	}
	if !e.Affected().Contains(res.Seed) {
		t.Error("seed face missing from the affected set")
	}
	before := e.PatchOf(2).ID

	e.UseViewingTexture()

	if e.Affected().Len() != 0 {
		t.Error("merge should clear the affected set")
	}
	if e.PatchOf(0).ID != e.PatchOf(1).ID {
		t.Error("front triangles should share the merged patch")
	}
	if e.PatchOf(0).ID == before {
		t.Error("painted faces still on the base patch")
	}
	if e.PatchOf(2).ID != before {
		t.Error("unpainted face moved off the base patch")
	}

	// Merged patch holds the projected render
	got := e.PatchOf(0).Image.RGBAAt(0, 0)
	if got != (color.RGBA{0, 128, 0, 255}) {
		t.Errorf("merged patch pixel = %v, want projected fill", got)
	}

	// Renormalized UVs span the patch
	lo, hi := math.Vec2{X: 1, Y: 1}, math.Vec2{}
	for _, f := range []int{0, 1} {
		for _, p := range e.ViewingUV(f) {
			lo = math.Vec2{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
			hi = math.Vec2{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
		}
	}
	if lo.X < 0 || lo.Y < 0 || hi.X > 1 || hi.Y > 1 {
		t.Errorf("viewing UVs out of patch: %v..%v", lo, hi)
	}
	if lo.X > 0.05 || hi.X < 0.95 {
		t.Errorf("viewing UVs should span the patch, got %v..%v", lo, hi)
	}
}

func TestMergeIdempotence(t *testing.T) {
	e, _, _ := newCubeEngine(t)
	e.Paint(Sample{Position: center, Radius: 5, StrokeStarts: true})
	e.UseViewingTexture()

	n := e.Mesh().FaceCount()
	uv := make([]scene.FaceUV, n)
	ids := make([]PatchID, n)
	for f := 0; f < n; f++ {
		uv[f], ids[f] = e.ViewingUV(f), e.PatchOf(f).ID
	}
	merges := e.Stats().Merges

	e.UseViewingTexture()
	// A drawing round trip with no strokes must not touch the patches either
	e.UseDrawingTexture()
	e.UseViewingTexture()

	for f := 0; f < n; f++ {
		if e.ViewingUV(f) != uv[f] || e.PatchOf(f).ID != ids[f] {
			t.Errorf("face %d changed after repeated viewing", f)
		}
	}
	if e.Stats().Merges != merges {
		t.Errorf("merges = %d, want %d", e.Stats().Merges, merges)
	}
}

func TestFrontFaceExclusion(t *testing.T) {
	e, _, cam := newCubeEngine(t)

	// The footprint covers the whole raster, only visibility limits it
	e.Paint(Sample{Position: center, Radius: 1000, StrokeStarts: true})

	for _, f := range e.Affected().Faces() {
		face := e.Mesh().Faces[f]
		if !cam.IsFrontFacing(face.Normal, e.Mesh().Centroid(f)) {
			t.Errorf("back-facing face %d was affected", f)
		}
	}
	if e.Affected().Len() != 2 {
		t.Errorf("affected = %v, want the two front triangles", e.Affected().Faces())
	}
}

func TestPaintMissAndDegenerateRadius(t *testing.T) {
	e, _, _ := newCubeEngine(t)

	if res := e.Paint(Sample{Position: math.Vec2{X: 1, Y: 1}, Radius: 5, StrokeStarts: true}); res.Hit {
		t.Error("corner sample should miss the cube")
	}
	if res := e.Paint(Sample{Position: center, Radius: 0, StrokeStarts: true}); res.Added != 0 {
		t.Error("zero radius must not affect faces")
	}
	if e.Affected().Len() != 0 {
		t.Errorf("affected = %v, want empty", e.Affected().Faces())
	}
}

func TestMissBreaksStroke(t *testing.T) {
	e, _, _ := newCubeEngine(t)

	e.Paint(Sample{Position: center, Radius: 3, StrokeStarts: true})
	if _, f := e.mapper.Previous(); f < 0 {
		t.Fatal("hit should record the previous face")
	}
	e.Paint(Sample{Position: math.Vec2{X: 1, Y: 1}, Radius: 3})
	if _, f := e.mapper.Previous(); f != -1 {
		t.Errorf("miss should clear the previous face, got %d", f)
	}
}

// rect is an axis aligned rectangle in the z=0 plane: x0, x1, y0, y1.
type rect [4]float64

// newPlaneEngine builds an engine over subdivided rectangles facing +Z.
// Rectangles share no vertices, so each one is a separate adjacency island.
func newPlaneEngine(t *testing.T, n int, rects ...rect) (*Engine, *camera.OrbitCamera) {
	t.Helper()
	var verts []mgl64.Vec3
	var tris [][3]int
	for _, r := range rects {
		base := len(verts)
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				x := r[0] + (r[1]-r[0])*float64(i)/float64(n)
				y := r[2] + (r[3]-r[2])*float64(j)/float64(n)
				verts = append(verts, mgl64.Vec3{x, y, 0})
			}
		}
		at := func(i, j int) int { return base + j*(n+1) + i }
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
				tris = append(tris, [3]int{a, b, c}, [3]int{a, c, d})
			}
		}
	}

	cam := camera.NewOrbitCamera(200, 200)
	e := New(mesh.New(verts, tris), &fakeRenderer{fill: color.RGBA{0, 128, 0, 255}}, cam, DefaultOptions())
	return e, cam
}

// affectedBetween counts affected faces whose centroid lands strictly
// between the pixel columns lo and hi.
func affectedBetween(e *Engine, cam *camera.OrbitCamera, lo, hi float64) int {
	w, _ := cam.Viewport()
	count := 0
	for _, f := range e.Affected().Faces() {
		x := cam.Project(e.Mesh().Centroid(f)).X * float64(w)
		if x > lo && x < hi {
			count++
		}
	}
	return count
}

func TestContinuingStrokeSweepsCapsule(t *testing.T) {
	// The plane spans roughly x in [52, 148] with cells about 6px wide
	full := rect{-1, 1, -1, 1}
	from := math.Vec2{X: 80, Y: 103}
	to := math.Vec2{X: 120, Y: 103}

	tests := []struct {
		name        string
		secondStart bool
		wantBetween bool
	}{
		{"continuing sample sweeps the gap", false, true},
		{"separate dabs leave the gap", true, false},
	}

	counts := make(map[bool]int)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, cam := newPlaneEngine(t, 16, full)

			e.Paint(Sample{Position: from, Radius: 0.5, StrokeStarts: true})
			if n := affectedBetween(e, cam, 90, 110); n != 0 {
				t.Fatalf("first dab reached %d faces between the samples", n)
			}
			res := e.Paint(Sample{Position: to, Radius: 0.5, StrokeStarts: tt.secondStart})
			if !res.Hit {
				t.Fatal("second sample missed the plane")
			}

			got := affectedBetween(e, cam, 90, 110) > 0
			if got != tt.wantBetween {
				t.Errorf("faces between samples affected = %v, want %v (affected %v)",
					got, tt.wantBetween, e.Affected().Faces())
			}
			counts[tt.secondStart] = e.Affected().Len()
		})
	}

	if counts[false] <= counts[true] {
		t.Errorf("sweep affected %d faces, separate dabs %d", counts[false], counts[true])
	}
}

func TestContinuingStrokeFloodsFromPreviousFace(t *testing.T) {
	// Two islands with a gap around x=100; the left one ends near x=90
	e, cam := newPlaneEngine(t, 8, rect{-1, -0.2, -0.5, 0.5}, rect{0.2, 1, -0.5, 0.5})

	left := func(f int) bool { return e.Mesh().Centroid(f).X() < 0 }
	for f := range e.Mesh().Faces {
		for _, n := range e.Graph().Neighbors(f) {
			if left(f) != left(n) {
				t.Fatalf("faces %d and %d link the islands", f, n)
			}
		}
	}

	first := e.Paint(Sample{Position: math.Vec2{X: 73, Y: 103}, Radius: 0.5, StrokeStarts: true})
	if !first.Hit || !left(first.Seed) {
		t.Fatalf("first sample should hit the left island, got %+v", first)
	}
	if n := affectedBetween(e, cam, 80, 90); n != 0 {
		t.Fatalf("first dab reached %d faces near the left edge", n)
	}

	second := e.Paint(Sample{Position: math.Vec2{X: 127, Y: 103}, Radius: 0.5})
	if !second.Hit || left(second.Seed) {
		t.Fatalf("second sample should hit the right island, got %+v", second)
	}

	// Only a flood started at the previous face can reach these
	if n := affectedBetween(e, cam, 80, 90); n == 0 {
		t.Errorf("left island faces under the sweep not affected: %v", e.Affected().Faces())
	}
	if n := affectedBetween(e, cam, 110, 120); n == 0 {
		t.Errorf("right island faces under the sweep not affected: %v", e.Affected().Faces())
	}
}

func TestEmptyMesh(t *testing.T) {
	r := &fakeRenderer{}
	e := New(mesh.New(nil, nil), r, camera.NewOrbitCamera(16, 16), DefaultOptions())

	if res := e.Paint(Sample{Position: math.Vec2{X: 8, Y: 8}, Radius: 4, StrokeStarts: true}); res.Hit {
		t.Error("empty mesh cannot be hit")
	}
	e.UseDrawingTexture()
	e.UseViewingTexture()
	if err := e.BackgroundReset(color.RGBA{A: 255}); err != nil {
		t.Errorf("BackgroundReset on empty mesh: %v", err)
	}
	img, err := e.ExportPackedImage()
	if err != nil {
		t.Fatalf("ExportPackedImage: %v", err)
	}
	if img == nil || img.Bounds().Dx() != 1 {
		t.Errorf("empty export = %v, want a 1x1 image", img)
	}
}

func TestExportPacksViewingPatches(t *testing.T) {
	e, _, _ := newCubeEngine(t)
	e.Paint(Sample{Position: center, Radius: 5, StrokeStarts: true})

	img, err := e.ExportPackedImage()
	if err != nil {
		t.Fatalf("ExportPackedImage: %v", err)
	}
	if e.Mode() != Packed {
		t.Errorf("mode = %s, want packed", e.Mode())
	}

	// Base 1x1 patch plus the merged patch
	atlas := e.Atlas()
	if len(atlas.Placements) != 2 {
		t.Errorf("placements = %d, want 2", len(atlas.Placements))
	}
	if img != atlas.Image {
		t.Error("export should return the atlas image")
	}
	for f := range e.Mesh().Faces {
		for _, p := range atlas.UV[f] {
			if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
				t.Errorf("face %d packed UV %v outside the atlas", f, p)
			}
		}
	}
}

func TestProjectionDilates(t *testing.T) {
	r := &dotRenderer{}
	cam := camera.NewOrbitCamera(20, 20)
	e := New(mesh.Cube(1), r, cam, DefaultOptions())
	e.UseDrawingTexture()

	raster := e.DrawingRaster()
	for _, p := range []image.Point{{10, 10}, {8, 10}, {12, 10}, {10, 8}, {10, 12}} {
		if raster.RGBAAt(p.X, p.Y).A == 0 {
			t.Errorf("pixel %v should be covered by a dilation pass", p)
		}
	}
	if raster.RGBAAt(12, 12).A != 0 {
		t.Error("diagonal offsets are not part of the dilation")
	}
}

// dotRenderer renders a single opaque pixel at the surface center.
type dotRenderer struct{ fakeRenderer }

func (r *dotRenderer) RenderToSurface(_ *scene.Scene, cam *camera.OrbitCamera) *image.RGBA {
	w, h := cam.Viewport()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(w/2, h/2, color.RGBA{255, 0, 0, 255})
	return img
}
