// Package brush draws stroke appearance onto the Drawing raster.
package brush

import (
	"image"
	"image/color"
	gomath "math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/surfpaint/pkg/math"
)

// Settings configures one pencil. Every pencil carries its own copy.
type Settings struct {
	Color color.RGBA
	// Width is the stroke diameter in pixels.
	Width float64
	// Opacity scales the color alpha, 0 to 1.
	Opacity float64
}

// DefaultSettings returns a 10px opaque black pencil.
func DefaultSettings() Settings {
	return Settings{
		Color:   color.RGBA{0, 0, 0, 255},
		Width:   10,
		Opacity: 1,
	}
}

// ParseColor converts a hex string ("#rgb", "#rrggbb", "#rrggbbaa") to a color.
func ParseColor(hex string) color.RGBA {
	return color.RGBAModel.Convert(gg.Hex(hex).Color()).(color.RGBA)
}

// Pencil paints round discs on stroke start and round-capped segments
// between consecutive samples.
type Pencil struct {
	settings Settings
	prev     math.Vec2
	active   bool
}

// NewPencil creates a pencil with the given settings.
func NewPencil(s Settings) *Pencil {
	s.Opacity = gomath.Max(0, gomath.Min(1, s.Opacity))
	return &Pencil{settings: s}
}

// Settings returns the pencil configuration.
func (p *Pencil) Settings() Settings {
	return p.settings
}

// Radius returns the footprint radius used to map strokes onto faces.
func (p *Pencil) Radius() float64 {
	return p.settings.Width / 2
}

// Begin starts a stroke with a disc at pos.
func (p *Pencil) Begin(dst *image.RGBA, pos math.Vec2) error {
	p.prev, p.active = pos, true
	return p.stamp(dst, pos, pos)
}

// Continue extends the stroke to pos. Without an active stroke it starts one.
func (p *Pencil) Continue(dst *image.RGBA, pos math.Vec2) error {
	if !p.active {
		return p.Begin(dst, pos)
	}
	from := p.prev
	p.prev = pos
	return p.stamp(dst, from, pos)
}

// End finishes the stroke.
func (p *Pencil) End() {
	p.active = false
}

// Active reports whether a stroke is in progress.
func (p *Pencil) Active() bool {
	return p.active
}

// setPaint loads the pencil color into dc as straight (non-premultiplied) RGBA.
func (p *Pencil) setPaint(dc *gg.Context) {
	c := p.settings.Color
	dc.SetRGBA(
		float64(c.R)/255,
		float64(c.G)/255,
		float64(c.B)/255,
		float64(c.A)/255*p.settings.Opacity,
	)
}

// stamp rasterizes the segment a-b into an offscreen canvas covering only its
// bounds and composites it over dst.
func (p *Pencil) stamp(dst *image.RGBA, a, b math.Vec2) error {
	r := p.Radius()
	if dst == nil || r <= 0 {
		return nil
	}

	pad := r + 1
	rect := image.Rect(
		int(gomath.Floor(min(a.X, b.X)-pad)),
		int(gomath.Floor(min(a.Y, b.Y)-pad)),
		int(gomath.Ceil(max(a.X, b.X)+pad)),
		int(gomath.Ceil(max(a.Y, b.Y)+pad)),
	)
	clipped := rect.Intersect(dst.Bounds())
	if clipped.Empty() {
		return nil
	}

	dc := gg.NewContext(rect.Dx(), rect.Dy())
	defer dc.Close()
	p.setPaint(dc)

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	var err error
	if a.Near(b) {
		dc.DrawCircle(a.X-ox, a.Y-oy, r)
		err = dc.Fill()
	} else {
		dc.SetLineWidth(2 * r)
		dc.SetLineCap(gg.LineCapRound)
		dc.DrawLine(a.X-ox, a.Y-oy, b.X-ox, b.Y-oy)
		err = dc.Stroke()
	}
	if err != nil {
		return err
	}

	xdraw.Draw(dst, clipped, dc.Image(), clipped.Min.Sub(rect.Min), xdraw.Over)
	return nil
}
