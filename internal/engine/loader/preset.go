package loader

import (
	"fmt"
	"sort"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/surfpaint/internal/engine/mesh"
)

// boxRounding is the edge radius of the rounded box, relative to its size.
const boxRounding = 0.15

var presets = map[string]func(opts Options) (*mesh.Mesh, error){
	"cube": func(opts Options) (*mesh.Mesh, error) {
		return mesh.Cube(opts.Size), nil
	},
	"sphere": func(opts Options) (*mesh.Mesh, error) {
		s, err := sdf.Sphere3D(opts.Size / 2)
		if err != nil {
			return nil, fmt.Errorf("sphere: %w", err)
		}
		return tessellate(s, opts)
	},
	"box": func(opts Options) (*mesh.Mesh, error) {
		d := opts.Size
		s, err := sdf.Box3D(v3.Vec{X: d, Y: d, Z: d}, d*boxRounding)
		if err != nil {
			return nil, fmt.Errorf("box: %w", err)
		}
		return tessellate(s, opts)
	},
}

// Presets lists the known preset names in order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset builds the named procedural mesh. All presets are centered on the origin.
func Preset(name string, opts Options) (*mesh.Mesh, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Cells <= 0 {
		opts.Cells = DefaultOptions().Cells
	}
	return build(opts)
}

// tessellate runs marching cubes over a convex, origin-centered solid and
// welds the resulting soup into shared-vertex topology.
func tessellate(s sdf.SDF3, opts Options) (*mesh.Mesh, error) {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(opts.Cells))

	soup := make([][3]mgl64.Vec3, 0, len(triangles))
	for _, tri := range triangles {
		var t [3]mgl64.Vec3
		for j := 0; j < 3; j++ {
			v := tri[j]
			t[j] = mgl64.Vec3{v.X, v.Y, v.Z}
		}

		// Keep counter-clockwise winding seen from outside
		n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
		c := t[0].Add(t[1]).Add(t[2])
		if n.Dot(c) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		soup = append(soup, t)
	}

	m := Weld(soup, opts.WeldEpsilon)
	if m.IsEmpty() {
		return nil, ErrNoTriangles
	}
	return m, nil
}
