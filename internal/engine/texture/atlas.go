package texture

import (
	"errors"
	"fmt"
	"image"
	gomath "math"
	"sort"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/scene"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// DefaultAtlasScale is the side length heuristic: side = scale * sqrt(total area).
const DefaultAtlasScale = 1.5

// ErrAtlasOverflow is returned with a usable atlas when some patches did not fit.
var ErrAtlasOverflow = errors.New("atlas overflow")

// Placement records where a patch landed in the atlas.
type Placement struct {
	Patch PatchID
	// X, Y, W, H is the occupied rectangle in atlas pixels. For a rotated
	// patch W and H are the source height and width.
	X, Y, W, H int
	// Rotated patches are stored turned 90 degrees clockwise.
	Rotated bool
}

// Rect returns the occupied atlas rectangle.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.W, p.Y+p.H)
}

// Atlas is the packed export texture.
type Atlas struct {
	Image *image.RGBA
	Size  int
	// UV is the Packed mapping, parallel to the mesh faces.
	UV         []scene.FaceUV
	Placements map[PatchID]Placement
	// Dropped lists patches that did not fit; their faces map to (0,0).
	Dropped []PatchID
	// Degenerate lists patches with no pixels; their faces map to (0,0).
	Degenerate []PatchID
}

// pixel maps a patch-local UV to atlas pixels.
func (p Placement) pixel(w0, h0 int, uv math.Vec2) math.Vec2 {
	if p.Rotated {
		// Clockwise turn: source (x, y) lands at (X + H0 - y, Y + x)
		return math.Vec2{
			X: float64(p.X) + (1-uv.Y)*float64(h0),
			Y: float64(p.Y) + uv.X*float64(w0),
		}
	}
	return math.Vec2{
		X: float64(p.X) + uv.X*float64(w0),
		Y: float64(p.Y) + uv.Y*float64(h0),
	}
}

// Packer places patches into one square atlas with a boustrophedon skyline.
type Packer struct {
	// Scale multiplies sqrt(total patch area) to get the atlas side.
	Scale float64
	log   *zap.Logger
}

// NewPacker creates a packer. A non-positive scale selects DefaultAtlasScale.
func NewPacker(scale float64, log *zap.Logger) *Packer {
	if scale <= 0 {
		scale = DefaultAtlasScale
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Packer{Scale: scale, log: log}
}

// packItem is one unique patch on its way into the atlas.
type packItem struct {
	patch   *Patch
	faces   []int
	w, h    int // stored (possibly rotated) size
	rotated bool
}

// Pack deduplicates the patches referenced by patchOf, places them, and
// computes the Packed UV of every face from its viewing UV. When patches
// are dropped the returned error wraps ErrAtlasOverflow and the atlas is
// still complete for everything that fit.
func (p *Packer) Pack(patchOf []PatchID, lookup func(PatchID) *Patch, viewingUV []scene.FaceUV) (*Atlas, error) {
	atlas := &Atlas{
		UV:         make([]scene.FaceUV, len(patchOf)),
		Placements: make(map[PatchID]Placement),
	}

	// Group faces by patch ID, in first-use order
	var items []*packItem
	byID := make(map[PatchID]*packItem)
	for f, id := range patchOf {
		it, ok := byID[id]
		if !ok {
			patch := lookup(id)
			if patch.Empty() {
				atlas.Degenerate = append(atlas.Degenerate, id)
				byID[id] = nil
				continue
			}
			it = &packItem{patch: patch}
			it.w, it.h = patch.Size()
			if it.w > it.h {
				it.w, it.h = it.h, it.w
				it.rotated = true
			}
			byID[id] = it
			items = append(items, it)
		} else if it == nil {
			continue
		}
		it.faces = append(it.faces, f)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].h > items[j].h
	})

	area := 0
	tallest := 0
	for _, it := range items {
		area += it.w * it.h
		tallest = max(tallest, it.h)
	}
	side := max(int(gomath.Ceil(p.Scale*gomath.Sqrt(float64(area)))), tallest, 1)
	atlas.Size = side
	atlas.Image = image.NewRGBA(image.Rect(0, 0, side, side))

	skyline := make([]int, side)
	row := 0
	cursor := 0 // next free column; counts down from side on odd rows

	for _, it := range items {
		x, ok := nextSlot(row, cursor, it.w, side)
		if !ok {
			row++
			if row%2 == 0 {
				cursor = 0
			} else {
				cursor = side
			}
			x, _ = nextSlot(row, cursor, it.w, side)
		}

		y := 0
		for c := x; c < x+it.w; c++ {
			y = max(y, skyline[c])
		}
		if y+it.h > side {
			atlas.Dropped = append(atlas.Dropped, it.patch.ID)
			continue
		}

		for c := x; c < x+it.w; c++ {
			skyline[c] = y + it.h
		}
		if row%2 == 0 {
			cursor = x + it.w
		} else {
			cursor = x
		}

		pl := Placement{Patch: it.patch.ID, X: x, Y: y, W: it.w, H: it.h, Rotated: it.rotated}
		atlas.Placements[pl.Patch] = pl
		blit(atlas.Image, pl, it.patch.Image)

		w0, h0 := it.patch.Size()
		inv := 1 / float64(side)
		for _, f := range it.faces {
			for c := 0; c < 3; c++ {
				px := pl.pixel(w0, h0, viewingUV[f][c])
				atlas.UV[f][c] = math.Vec2{X: px.X * inv, Y: px.Y * inv}
			}
		}
	}

	p.log.Info("atlas packed",
		zap.Int("size", side),
		zap.Int("patches", len(items)),
		zap.Int("placed", len(atlas.Placements)),
		zap.Int("rows", row+1))

	for _, id := range atlas.Degenerate {
		p.log.Warn("skipped degenerate patch", zap.Uint32("patch", uint32(id)))
	}
	if n := len(atlas.Dropped); n > 0 {
		p.log.Warn("atlas overflow", zap.Int("dropped", n), zap.Int("size", side))
		return atlas, fmt.Errorf("%w: %d of %d patches did not fit in %dpx", ErrAtlasOverflow, n, len(items), side)
	}
	return atlas, nil
}

// nextSlot returns the left column for a patch of width w on the given row,
// or false if the row has no room left. Even rows fill left to right, odd
// rows right to left.
func nextSlot(row, cursor, w, side int) (int, bool) {
	if row%2 == 0 {
		return cursor, cursor+w <= side
	}
	return cursor - w, cursor-w >= 0
}

// blit copies a patch into its placement, turning it when rotated.
func blit(dst *image.RGBA, pl Placement, src *image.RGBA) {
	if !pl.Rotated {
		xdraw.Draw(dst, pl.Rect(), src, src.Bounds().Min, xdraw.Src)
		return
	}
	b := src.Bounds()
	// Source (x, y) maps to (X + H0 - y, Y + x); H0 == pl.W
	s2d := f64.Aff3{
		0, -1, float64(pl.X + pl.W + b.Min.Y),
		1, 0, float64(pl.Y - b.Min.X),
	}
	xdraw.NearestNeighbor.Transform(dst, s2d, src, b, xdraw.Src, nil)
}
