package main

import (
	"errors"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/brush"
	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/input"
	"github.com/Faultbox/surfpaint/internal/engine/texture"
	"github.com/Faultbox/surfpaint/internal/export"
	"github.com/Faultbox/surfpaint/internal/logger"
	"github.com/Faultbox/surfpaint/internal/session"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// Brush radius limits for the bracket keys, in pixels.
const (
	minRadius = 1
	maxRadius = 64
)

// controller turns input events into session operations.
// Left drag paints, right drag orbits, the wheel zooms.
type controller struct {
	session   *session.Session
	writer    *export.Writer
	baseColor string
	log       *zap.Logger

	radius    float64
	leftDown  bool
	rightDown bool
	quit      bool
	status    string
}

func newController(s *session.Session, w *export.Writer, baseColor string) *controller {
	return &controller{
		session:   s,
		writer:    w,
		baseColor: baseColor,
		log:       logger.Named("viewer"),
		radius:    s.Brush().Width / 2,
	}
}

func (c *controller) handle(e input.Event) {
	pos := math.Vec2{X: float64(e.MouseX), Y: float64(e.MouseY)}

	switch e.Type {
	case input.EventQuit:
		c.quit = true

	case input.EventWindowResize:
		c.session.Resize(e.Width, e.Height)

	case input.EventMouseDown:
		switch e.Button {
		case sdl.BUTTON_LEFT:
			c.leftDown = true
			c.session.OnPointerDown(pos, c.radius, true)
		case sdl.BUTTON_RIGHT:
			c.rightDown = true
		}

	case input.EventMouseUp:
		switch e.Button {
		case sdl.BUTTON_LEFT:
			c.leftDown = false
			c.session.OnPointerUp(pos, c.radius, false)
		case sdl.BUTTON_RIGHT:
			c.rightDown = false
		}

	case input.EventMouseMove:
		switch {
		case c.leftDown:
			// Shift starts a new segment instead of sweeping from the last sample
			c.session.OnPointerMove(pos, c.radius, e.Shift)
		case c.rightDown:
			c.session.Orbit(float64(e.DX), float64(e.DY))
		}

	case input.EventMouseWheel:
		c.session.Zoom(float64(e.Wheel))

	case input.EventKeyDown:
		c.key(e.Key)
	}
}

func (c *controller) key(k sdl.Keycode) {
	switch k {
	case sdl.K_ESCAPE, sdl.K_q:
		c.quit = true
	case sdl.K_r:
		if err := c.session.BackgroundReset(brush.ParseColor(c.baseColor)); err != nil {
			c.log.Warn("background reset failed", zap.Error(err))
		}
		c.status = "reset"
	case sdl.K_o:
		p := camera.Orthographic
		if c.session.Camera().Projection == camera.Orthographic {
			p = camera.Perspective
		}
		c.session.SetProjection(p)
		c.status = p.String()
	case sdl.K_v:
		c.session.UseViewingTexture()
		c.status = "viewing"
	case sdl.K_d:
		c.session.UseDrawingTexture()
		c.status = "drawing"
	case sdl.K_p:
		if err := c.session.UsePackedTexture(); err != nil {
			c.log.Warn("packed texture incomplete", zap.Error(err))
		}
		c.status = "packed"
	case sdl.K_e:
		c.exportAtlas()
	case sdl.K_s:
		path, err := c.writer.Save(c.session.Render())
		if err != nil {
			c.log.Error("saving view failed", zap.Error(err))
			return
		}
		c.status = "saved " + path
	case sdl.K_LEFTBRACKET:
		c.radius = max(minRadius, c.radius-1)
		c.status = fmt.Sprintf("radius %.0f", c.radius)
	case sdl.K_RIGHTBRACKET:
		c.radius = min(maxRadius, c.radius+1)
		c.status = fmt.Sprintf("radius %.0f", c.radius)
	}
}

func (c *controller) exportAtlas() {
	img, err := c.session.ExportPackedImage()
	if err != nil && !errors.Is(err, texture.ErrAtlasOverflow) {
		c.log.Error("packing atlas failed", zap.Error(err))
		return
	}
	if err != nil {
		c.log.Warn("atlas is missing patches", zap.Error(err))
	}

	path, err := c.writer.Save(img)
	if err != nil {
		c.log.Error("saving atlas failed", zap.Error(err))
		return
	}
	c.log.Info("atlas exported", zap.String("path", path))
	c.status = "exported " + path
}

// title describes the session state for the window title bar.
func (c *controller) title() string {
	s := fmt.Sprintf("surfpaint - %s - radius %.0f", c.session.Engine().Mode(), c.radius)
	if c.status != "" {
		s += " - " + c.status
	}
	return s
}
