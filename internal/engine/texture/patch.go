package texture

import (
	"image"
	"image/color"
)

// PatchID identifies a patch for its whole lifetime. Faces that share a
// patch hold the same ID; IDs are never reused within an engine.
type PatchID uint32

// Patch is a rectangular image holding the painted content of the faces
// mapped onto it in the Viewing representation.
type Patch struct {
	ID    PatchID
	Image *image.RGBA
}

// Size returns the patch dimensions in pixels.
func (p *Patch) Size() (int, int) {
	if p == nil || p.Image == nil {
		return 0, 0
	}
	b := p.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Empty reports whether the patch has no pixels.
func (p *Patch) Empty() bool {
	w, h := p.Size()
	return w == 0 || h == 0
}

// patchStore owns every live patch and hands out IDs.
type patchStore struct {
	next    PatchID
	patches map[PatchID]*Patch
}

func newPatchStore() *patchStore {
	return &patchStore{next: 1, patches: make(map[PatchID]*Patch)}
}

func (s *patchStore) add(img *image.RGBA) *Patch {
	p := &Patch{ID: s.next, Image: img}
	s.next++
	s.patches[p.ID] = p
	return p
}

// flat creates a single-pixel patch of color c.
func (s *patchStore) flat(c color.RGBA) *Patch {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return s.add(img)
}

func (s *patchStore) get(id PatchID) *Patch {
	return s.patches[id]
}

// prune drops every patch no face refers to and returns how many were removed.
func (s *patchStore) prune(patchOf []PatchID) int {
	used := make(map[PatchID]struct{}, len(s.patches))
	for _, id := range patchOf {
		used[id] = struct{}{}
	}
	removed := 0
	for id := range s.patches {
		if _, ok := used[id]; !ok {
			delete(s.patches, id)
			removed++
		}
	}
	return removed
}

func (s *patchStore) len() int {
	return len(s.patches)
}
