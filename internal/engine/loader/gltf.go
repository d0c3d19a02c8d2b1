package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/logger"
)

// LoadGLTF reads every triangle primitive of a .gltf or .glb file into one mesh.
func LoadGLTF(path string, opts Options) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return FromDocument(doc, opts)
}

// FromDocument flattens a decoded glTF document. Meshes referenced by scene
// nodes are placed with their world transforms; without scenes each mesh is
// read in its own space. Coincident vertices are welded so faces of different
// primitives can share edges.
func FromDocument(doc *gltf.Document, opts Options) (*mesh.Mesh, error) {
	log := logger.Named("loader")

	var soup [][3]mgl64.Vec3
	emit := func(meshIndex int, world mgl64.Mat4) error {
		if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
			return fmt.Errorf("mesh index %d out of range", meshIndex)
		}
		tris, err := readMesh(doc, doc.Meshes[meshIndex], log)
		if err != nil {
			return fmt.Errorf("mesh %d: %w", meshIndex, err)
		}
		for _, t := range tris {
			for j := range t {
				t[j] = mgl64.TransformCoordinate(t[j], world)
			}
			soup = append(soup, t)
		}
		return nil
	}

	roots := sceneRoots(doc)
	if len(roots) == 0 {
		for i := range doc.Meshes {
			if err := emit(i, mgl64.Ident4()); err != nil {
				return nil, err
			}
		}
	} else {
		visited := make(map[int]bool)
		var walk func(n int, parent mgl64.Mat4) error
		walk = func(n int, parent mgl64.Mat4) error {
			if n < 0 || n >= len(doc.Nodes) || visited[n] {
				return nil
			}
			visited[n] = true

			node := doc.Nodes[n]
			world := parent.Mul4(localMatrix(node))
			if node.Mesh != nil {
				if err := emit(int(*node.Mesh), world); err != nil {
					return err
				}
			}
			for _, child := range node.Children {
				if err := walk(int(child), world); err != nil {
					return err
				}
			}
			return nil
		}
		for _, n := range roots {
			if err := walk(n, mgl64.Ident4()); err != nil {
				return nil, err
			}
		}
	}

	m := Weld(soup, opts.WeldEpsilon)
	if m.IsEmpty() {
		return nil, ErrNoTriangles
	}
	return m, nil
}

// sceneRoots returns the root nodes of the default scene, or of the first
// scene when none is marked default.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	s := 0
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		s = int(*doc.Scene)
	}
	roots := make([]int, 0, len(doc.Scenes[s].Nodes))
	for _, n := range doc.Scenes[s].Nodes {
		roots = append(roots, int(n))
	}
	return roots
}

func readMesh(doc *gltf.Document, gm *gltf.Mesh, log *zap.Logger) ([][3]mgl64.Vec3, error) {
	var tris [][3]mgl64.Vec3

	for pi, p := range gm.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			log.Warn("skipping non-triangle primitive",
				zap.String("mesh", gm.Name),
				zap.Int("primitive", pi))
			continue
		}

		posIndex, ok := p.Attributes[gltf.POSITION]
		if !ok || int(posIndex) >= len(doc.Accessors) {
			log.Warn("skipping primitive without positions",
				zap.String("mesh", gm.Name),
				zap.Int("primitive", pi))
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], [][3]float32{})
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var indices []uint32
		if p.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], []uint32{})
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var t [3]mgl64.Vec3
			valid := true
			for j := 0; j < 3; j++ {
				vi := int(indices[i+j])
				if vi >= len(positions) {
					valid = false
					break
				}
				v := positions[vi]
				t[j] = mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
			}
			if valid {
				tris = append(tris, t)
			}
		}
	}

	return tris, nil
}

// localMatrix returns the node transform. Nodes carry either an explicit
// matrix or translation, rotation and scale.
func localMatrix(node *gltf.Node) mgl64.Mat4 {
	var m mgl64.Mat4
	for i, v := range node.Matrix {
		m[i] = float64(v)
	}
	if m != (mgl64.Mat4{}) && m != mgl64.Ident4() {
		return m
	}

	t := mgl64.Translate3D(float64(node.Translation[0]), float64(node.Translation[1]), float64(node.Translation[2]))

	q := mgl64.Quat{
		W: float64(node.Rotation[3]),
		V: mgl64.Vec3{float64(node.Rotation[0]), float64(node.Rotation[1]), float64(node.Rotation[2])},
	}
	r := mgl64.Ident4()
	if q.Len() > 0 {
		r = q.Normalize().Mat4()
	}

	sx, sy, sz := float64(node.Scale[0]), float64(node.Scale[1]), float64(node.Scale[2])
	if sx == 0 && sy == 0 && sz == 0 {
		sx, sy, sz = 1, 1, 1
	}

	return t.Mul4(r).Mul4(mgl64.Scale3D(sx, sy, sz))
}
