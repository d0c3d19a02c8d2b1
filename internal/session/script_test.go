package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/surfpaint/internal/engine/camera"
	"github.com/Faultbox/surfpaint/internal/engine/texture"
)

const cubeScript = `
steps:
  - stroke:
      color: "#0000ff"
      radius: 6
      points: [[0.5, 0.5], [0.55, 0.5], [0.6, 0.52]]
  - orbit: [60, 0]
  - zoom: 0.2
  - projection: orthographic
  - stroke:
      space: pixels
      points: [[100, 100]]
`

func TestParseScript(t *testing.T) {
	sc, err := ParseScript([]byte(cubeScript))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(sc.Steps) != 5 {
		t.Fatalf("got %d steps, want 5", len(sc.Steps))
	}
	if sc.Steps[0].Stroke == nil || len(sc.Steps[0].Stroke.Points) != 3 {
		t.Errorf("first stroke = %+v", sc.Steps[0].Stroke)
	}
	if sc.Steps[1].Orbit[0] != 60 {
		t.Errorf("orbit = %v", sc.Steps[1].Orbit)
	}
}

func TestParseScriptInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad orbit", "steps:\n  - orbit: [1]\n", "orbit"},
		{"bad projection", "steps:\n  - projection: fisheye\n", "projection"},
		{"empty stroke", "steps:\n  - stroke:\n      radius: 3\n", "no points"},
		{"bad point", "steps:\n  - stroke:\n      points: [[1, 2, 3]]\n", "point 0"},
		{"bad space", "steps:\n  - stroke:\n      space: uv\n      points: [[1, 2]]\n", "space"},
		{"not yaml", "steps: [", "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadScriptMissing(t *testing.T) {
	if _, err := LoadScript(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("missing script should fail")
	}
}

func TestRunScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strokes.yaml")
	if err := os.WriteFile(path, []byte(cubeScript), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	sc, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}

	s := newCubeSession(t)
	before := s.Brush()

	res, err := s.Run(sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Strokes != 2 || res.Samples != 4 {
		t.Errorf("result = %+v, want 2 strokes and 4 samples", res)
	}
	if res.Hits != 4 {
		t.Errorf("hits = %d, want every sample on the cube", res.Hits)
	}
	if s.Brush() != before {
		t.Errorf("brush %+v not restored to %+v", s.Brush(), before)
	}
	if s.Camera().Projection != camera.Orthographic {
		t.Error("projection step not applied")
	}
	if s.Engine().Mode() != texture.Drawing {
		t.Errorf("mode = %s, want drawing after the last stroke", s.Engine().Mode())
	}
}

func TestRunScriptReset(t *testing.T) {
	sc, err := ParseScript([]byte("steps:\n  - stroke:\n      points: [[0.5, 0.5]]\n  - reset: \"#00ff00\"\n"))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}

	s := newCubeSession(t)
	res, err := s.Run(sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Resets != 1 {
		t.Errorf("resets = %d", res.Resets)
	}
	if got := s.Engine().PatchOf(0).Image.RGBAAt(0, 0); got.G != 255 || got.R != 0 {
		t.Errorf("face color after reset = %v, want green", got)
	}
}
