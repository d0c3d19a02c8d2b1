package session

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/surfpaint/internal/engine/brush"
	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/pkg/math"
)

// Script is a recorded editing session replayed by the headless CLI.
//
//	steps:
//	  - orbit: [120, -40]
//	  - stroke:
//	      color: "#ff0000"
//	      radius: 8
//	      points: [[0.4, 0.5], [0.6, 0.5]]
//	  - reset: "#ffffff"
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Fields set on the same step run in
// declaration order: orbit, zoom, projection, reset, stroke.
type Step struct {
	Orbit      []float64 `yaml:"orbit,omitempty"` // drag dx, dy in pixels
	Zoom       float64   `yaml:"zoom,omitempty"`
	Projection string    `yaml:"projection,omitempty"`
	Reset      string    `yaml:"reset,omitempty"` // hex color
	Stroke     *Stroke   `yaml:"stroke,omitempty"`
}

// Stroke is one pointer-down, moves, pointer-up sequence.
type Stroke struct {
	Color   string   `yaml:"color,omitempty"`
	Radius  float64  `yaml:"radius,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty"`
	// Space is "normalized" (default, [0,1] with the origin top-left) or "pixels".
	Space  string      `yaml:"space,omitempty"`
	Points [][]float64 `yaml:"points"`
}

// RunResult summarizes a replayed script.
type RunResult struct {
	Strokes int
	Samples int
	Hits    int
	Resets  int
}

// LoadScript reads a YAML stroke script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScript decodes and validates a YAML stroke script.
func ParseScript(data []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks every step.
func (sc *Script) Validate() error {
	var errs []error
	for i, st := range sc.Steps {
		if st.Orbit != nil && len(st.Orbit) != 2 {
			errs = append(errs, fmt.Errorf("step %d: orbit needs [dx, dy]", i))
		}
		switch st.Projection {
		case "", "perspective", "orthographic", "ortho":
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown projection %q", i, st.Projection))
		}
		if st.Stroke == nil {
			continue
		}
		switch st.Stroke.Space {
		case "", "normalized", "pixels":
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown point space %q", i, st.Stroke.Space))
		}
		if len(st.Stroke.Points) == 0 {
			errs = append(errs, fmt.Errorf("step %d: stroke has no points", i))
		}
		for j, p := range st.Stroke.Points {
			if len(p) != 2 {
				errs = append(errs, fmt.Errorf("step %d: point %d needs [x, y]", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

// Run replays sc against the session.
func (s *Session) Run(sc *Script) (RunResult, error) {
	var res RunResult
	for i, st := range sc.Steps {
		if len(st.Orbit) == 2 {
			s.Orbit(st.Orbit[0], st.Orbit[1])
		}
		if st.Zoom != 0 {
			s.Zoom(st.Zoom)
		}
		if st.Projection != "" {
			s.SetProjection(camera.ParseProjection(st.Projection))
		}
		if st.Reset != "" {
			if err := s.BackgroundReset(brush.ParseColor(st.Reset)); err != nil {
				return res, fmt.Errorf("step %d: %w", i, err)
			}
			res.Resets++
		}
		if st.Stroke != nil {
			samples, hits := s.replay(st.Stroke)
			res.Strokes++
			res.Samples += samples
			res.Hits += hits
		}
	}

	s.log.Info("script replayed",
		zap.Int("strokes", res.Strokes),
		zap.Int("samples", res.Samples),
		zap.Int("hits", res.Hits))
	return res, nil
}

func (s *Session) replay(st *Stroke) (samples, hits int) {
	prev := s.opts.Brush
	defer s.SetBrush(prev)

	b := prev
	if st.Color != "" {
		b.Color = brush.ParseColor(st.Color)
	}
	if st.Opacity != nil {
		b.Opacity = *st.Opacity
	}
	s.SetBrush(b)

	radius := st.Radius
	if radius <= 0 {
		radius = b.Width / 2
	}

	w, h := s.camera.Viewport()
	toRaster := func(p []float64) math.Vec2 {
		if st.Space == "pixels" {
			return math.Vec2{X: p[0], Y: p[1]}
		}
		return math.Vec2{X: p[0] * float64(w), Y: p[1] * float64(h)}
	}

	last := len(st.Points) - 1
	for i, p := range st.Points {
		pos := toRaster(p)
		var hit bool
		if i == 0 {
			hit = s.OnPointerDown(pos, radius, true).Hit
		} else {
			hit = s.OnPointerMove(pos, radius, false).Hit
		}
		samples++
		if hit {
			hits++
		}
		if i == last {
			s.OnPointerUp(pos, radius, false)
		}
	}
	return samples, hits
}
