// Package config handles surfpaint configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all editor settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Brush   BrushConfig   `yaml:"brush"`
	Texture TextureConfig `yaml:"texture"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`

	// Source is the file the config was read from, empty for defaults only.
	Source string `yaml:"-"`
}

// RenderConfig holds raster surface and display settings.
type RenderConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Projection    string  `yaml:"projection"` // perspective or orthographic
	FovDegrees    float64 `yaml:"fov_degrees"`
	Background    string  `yaml:"background"` // hex color
	DrawBackFaces bool    `yaml:"draw_back_faces"`
	Fullscreen    bool    `yaml:"fullscreen"`
}

// CameraConfig holds the initial orbit and its sensitivities.
type CameraConfig struct {
	// Distance from the mesh center; 0 fits the mesh bounds.
	Distance        float64 `yaml:"distance"`
	PitchDegrees    float64 `yaml:"pitch_degrees"`
	YawDegrees      float64 `yaml:"yaw_degrees"`
	DragSensitivity float64 `yaml:"drag_sensitivity"`
	ZoomSensitivity float64 `yaml:"zoom_sensitivity"`
}

// BrushConfig holds the pencil settings.
type BrushConfig struct {
	Radius  float64 `yaml:"radius"` // pixels
	Color   string  `yaml:"color"`  // hex color
	Opacity float64 `yaml:"opacity"`
}

// TextureConfig holds texture engine tuning.
type TextureConfig struct {
	BaseColor     string  `yaml:"base_color"`
	DilateOffset  int     `yaml:"dilate_offset"`
	AtlasScale    float64 `yaml:"atlas_scale"`
	VertexEpsilon float64 `yaml:"vertex_epsilon"`
	OpposingDot   float64 `yaml:"opposing_dot"`
}

// MeshConfig selects the mesh to paint.
type MeshConfig struct {
	Source      string  `yaml:"source"` // preset:<name> or a .gltf/.glb path
	PresetCells int     `yaml:"preset_cells"`
	PresetSize  float64 `yaml:"preset_size"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	Prefix      string `yaml:"prefix"`
	Compression string `yaml:"compression"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:      800,
			Height:     600,
			Projection: "perspective",
			FovDegrees: 45,
			Background: "#303030",
		},
		Camera: CameraConfig{
			Distance:        0,
			PitchDegrees:    20,
			YawDegrees:      30,
			DragSensitivity: 0.005,
			ZoomSensitivity: 0.1,
		},
		Brush: BrushConfig{
			Radius:  6,
			Color:   "#d03030",
			Opacity: 1,
		},
		Texture: TextureConfig{
			BaseColor:     "#ffffff",
			DilateOffset:  2,
			AtlasScale:    1.5,
			VertexEpsilon: 1e-6,
			OpposingDot:   -0.9,
		},
		Mesh: MeshConfig{
			Source:      "preset:cube",
			PresetCells: 24,
			PresetSize:  1,
		},
		Export: ExportConfig{
			Dir:         "",
			Prefix:      "surfpaint",
			Compression: "default",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that would leave the engine unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	switch c.Render.Projection {
	case "perspective", "orthographic", "ortho":
	default:
		errs = append(errs, fmt.Errorf("unknown projection %q", c.Render.Projection))
	}
	if c.Render.FovDegrees <= 0 || c.Render.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("fov_degrees %g out of range (0, 180)", c.Render.FovDegrees))
	}
	if c.Brush.Radius <= 0 {
		errs = append(errs, fmt.Errorf("brush radius %g must be positive", c.Brush.Radius))
	}
	if c.Texture.AtlasScale <= 0 {
		errs = append(errs, fmt.Errorf("atlas_scale %g must be positive", c.Texture.AtlasScale))
	}
	if c.Texture.DilateOffset < 0 {
		errs = append(errs, fmt.Errorf("dilate_offset %d must not be negative", c.Texture.DilateOffset))
	}
	if c.Mesh.Source == "" {
		errs = append(errs, errors.New("mesh source is empty"))
	}
	return errors.Join(errs...)
}
