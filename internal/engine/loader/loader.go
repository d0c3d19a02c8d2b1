// Package loader builds session meshes from glTF files and procedural presets.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/logger"
)

// PresetPrefix marks a source as a built-in procedural mesh.
const PresetPrefix = "preset:"

var (
	// ErrUnsupportedFormat is returned for files that are not glTF or GLB.
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	// ErrUnknownPreset is returned for preset names Preset does not know.
	ErrUnknownPreset = errors.New("unknown mesh preset")
	// ErrNoTriangles is returned when a source yields no usable faces.
	ErrNoTriangles = errors.New("mesh has no triangles")
)

// Options controls mesh construction.
type Options struct {
	// Cells is the marching cubes resolution along the longest axis of a preset.
	Cells int
	// Size is the edge length (or diameter) of a preset.
	Size float64
	// WeldEpsilon merges vertices closer than this distance.
	WeldEpsilon float64
}

// DefaultOptions returns the options used by the CLI when none are configured.
func DefaultOptions() Options {
	return Options{
		Cells:       24,
		Size:        1,
		WeldEpsilon: 1e-6,
	}
}

// Load resolves source to a mesh. Sources starting with "preset:" name a
// procedural mesh; anything else is read as a .gltf or .glb file.
func Load(source string, opts Options) (*mesh.Mesh, error) {
	log := logger.Named("loader")

	var (
		m   *mesh.Mesh
		err error
	)
	if name, ok := strings.CutPrefix(source, PresetPrefix); ok {
		m, err = Preset(name, opts)
	} else {
		switch ext := strings.ToLower(filepath.Ext(source)); ext {
		case ".gltf", ".glb":
			m, err = LoadGLTF(source, opts)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
		}
	}
	if err != nil {
		return nil, err
	}

	log.Info("mesh loaded",
		zap.String("source", source),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("faces", m.FaceCount()))
	return m, nil
}

// Weld merges coincident vertices of a triangle soup and drops triangles that
// collapse to fewer than three distinct vertices.
func Weld(tris [][3]mgl64.Vec3, eps float64) *mesh.Mesh {
	if eps <= 0 {
		eps = DefaultOptions().WeldEpsilon
	}

	type key [3]int64
	quantize := func(v mgl64.Vec3) key {
		return key{
			int64(roundHalf(v[0] / eps)),
			int64(roundHalf(v[1] / eps)),
			int64(roundHalf(v[2] / eps)),
		}
	}

	index := make(map[key]int, len(tris))
	var vertices []mgl64.Vec3
	triangles := make([][3]int, 0, len(tris))

	for _, t := range tris {
		var face [3]int
		for j, v := range t {
			k := quantize(v)
			vi, ok := index[k]
			if !ok {
				vi = len(vertices)
				index[k] = vi
				vertices = append(vertices, v)
			}
			face[j] = vi
		}
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			continue
		}
		triangles = append(triangles, face)
	}

	return mesh.New(vertices, triangles)
}

func roundHalf(x float64) float64 {
	if x < 0 {
		return float64(int64(x - 0.5))
	}
	return float64(int64(x + 0.5))
}
