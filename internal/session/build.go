package session

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/surfpaint/internal/config"
	"github.com/Faultbox/surfpaint/internal/engine/brush"
	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/loader"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/renderer"
	"github.com/Faultbox/surfpaint/internal/engine/texture"
)

// FromConfig loads the configured mesh and builds a session around it.
func FromConfig(cfg *config.Config) (*Session, error) {
	m, err := loader.Load(cfg.Mesh.Source, LoaderOptionsFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("loading mesh: %w", err)
	}
	return NewFromConfig(m, cfg), nil
}

// NewFromConfig builds a session for an already loaded mesh.
func NewFromConfig(m *mesh.Mesh, cfg *config.Config) *Session {
	cam := CameraFrom(cfg, m)
	r := renderer.New(renderer.Config{DrawBackFaces: cfg.Render.DrawBackFaces})
	return New(m, cam, r, OptionsFrom(cfg))
}

// LoaderOptionsFrom returns the mesh loader settings of cfg.
func LoaderOptionsFrom(cfg *config.Config) loader.Options {
	return loader.Options{
		Cells:       cfg.Mesh.PresetCells,
		Size:        cfg.Mesh.PresetSize,
		WeldEpsilon: cfg.Texture.VertexEpsilon,
	}
}

// CameraFrom builds the orbit camera described by cfg, framing m.
func CameraFrom(cfg *config.Config, m *mesh.Mesh) *camera.OrbitCamera {
	cam := camera.NewOrbitCamera(cfg.Render.Width, cfg.Render.Height)
	cam.Projection = camera.ParseProjection(cfg.Render.Projection)
	cam.FovY = mgl64.DegToRad(cfg.Render.FovDegrees)
	cam.Pitch = mgl64.DegToRad(cfg.Camera.PitchDegrees)
	cam.Yaw = mgl64.DegToRad(cfg.Camera.YawDegrees)
	if cfg.Camera.DragSensitivity > 0 {
		cam.DragSensitivity = cfg.Camera.DragSensitivity
	}
	if cfg.Camera.ZoomSensitivity > 0 {
		cam.ZoomSensitivity = cfg.Camera.ZoomSensitivity
	}

	if !m.IsEmpty() {
		b := m.Bounds()
		cam.FitToBounds(b.Min, b.Max)
	}
	if cfg.Camera.Distance > 0 {
		cam.Distance = mgl64.Clamp(cfg.Camera.Distance, cam.MinDistance, cam.MaxDistance)
	}
	return cam
}

// OptionsFrom returns the session settings of cfg.
func OptionsFrom(cfg *config.Config) Options {
	tex := texture.DefaultOptions()
	tex.BaseColor = brush.ParseColor(cfg.Texture.BaseColor)
	tex.DilateOffset = cfg.Texture.DilateOffset
	tex.AtlasScale = cfg.Texture.AtlasScale
	tex.Adjacency = mesh.AdjacencyOptions{
		VertexEpsilon: cfg.Texture.VertexEpsilon,
		OpposingDot:   cfg.Texture.OpposingDot,
	}

	return Options{
		Brush: brush.Settings{
			Color:   brush.ParseColor(cfg.Brush.Color),
			Width:   2 * cfg.Brush.Radius,
			Opacity: cfg.Brush.Opacity,
		},
		Background: brush.ParseColor(cfg.Render.Background),
		Texture:    tex,
	}
}
