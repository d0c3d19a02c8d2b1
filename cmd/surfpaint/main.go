// surfpaint is a headless CLI for painting meshes from stroke scripts and
// exporting the packed texture.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/config"
	"github.com/Faultbox/surfpaint/internal/engine/brush"
	"github.com/Faultbox/surfpaint/internal/engine/loader"
	"github.com/Faultbox/surfpaint/internal/engine/mesh"
	"github.com/Faultbox/surfpaint/internal/engine/texture"
	"github.com/Faultbox/surfpaint/internal/export"
	"github.com/Faultbox/surfpaint/internal/logger"
	"github.com/Faultbox/surfpaint/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args, err := config.ParseArgs(os.Args[2:])
	if err != nil {
		os.Exit(2)
	}

	switch command {
	case "info":
		cmdInfo(args)
	case "paint":
		cmdPaint(args)
	case "reset":
		cmdReset(args)
	case "render":
		cmdRender(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`surfpaint - paint on 3D mesh surfaces and export packed textures

Usage:
  surfpaint <command> [flags] [arguments]

Commands:
  info                 Show mesh and adjacency information
  paint <script.yaml>  Replay a stroke script, export the atlas and a view
  reset <color>        Fill the mesh with one color and export the atlas
  render               Render the unpainted mesh to a PNG

Flags:
  -config <file>   Config file
  -mesh <source>   preset:cube, preset:sphere, preset:box or a .gltf/.glb file
  -width, -height  Raster surface size
  -ortho           Orthographic projection
  -out <dir>       Export directory
  -debug           Debug logging

Examples:
  surfpaint info -mesh preset:sphere
  surfpaint paint -mesh model.glb -out exports strokes.yaml
  surfpaint reset -out exports "#3080ff"`)
}

// setup loads config and starts logging. Errors exit the process.
func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Source != "" {
		logger.Info("config loaded", zap.String("path", cfg.Source))
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg
}

func fail(msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}

func newWriter(cfg *config.Config) *export.Writer {
	w := export.NewWriter(cfg.Export.Dir, cfg.Export.Prefix)
	if err := w.SetCompression(cfg.Export.Compression); err != nil {
		logger.Warn("using default compression", zap.Error(err))
	}
	return w
}

func cmdInfo(_ []string) {
	cfg := setup()
	defer logger.Sync()

	m, err := loader.Load(cfg.Mesh.Source, session.LoaderOptionsFrom(cfg))
	if err != nil {
		fail("loading mesh", err)
	}

	g := mesh.BuildAdjacency(m, mesh.AdjacencyOptions{
		VertexEpsilon: cfg.Texture.VertexEpsilon,
		OpposingDot:   cfg.Texture.OpposingDot,
	})

	degenerate := 0
	for _, f := range m.Faces {
		if f.Normal.Len() == 0 {
			degenerate++
		}
	}
	isolated := 0
	for f := range m.Faces {
		if len(g.Neighbors(f)) == 0 {
			isolated++
		}
	}

	b := m.Bounds()
	fmt.Printf("Mesh: %s\n", cfg.Mesh.Source)
	fmt.Printf("Vertices: %d\n", m.VertexCount())
	fmt.Printf("Faces: %d (%d degenerate)\n", m.FaceCount(), degenerate)
	fmt.Printf("Adjacency edges: %d (%d dropped at row capacity, %d isolated faces)\n",
		g.EdgeCount(), g.Dropped(), isolated)
	fmt.Printf("Bounds: min (%.3f, %.3f, %.3f) max (%.3f, %.3f, %.3f)\n",
		b.Min.X(), b.Min.Y(), b.Min.Z(), b.Max.X(), b.Max.Y(), b.Max.Z())
	fmt.Printf("Presets: %s\n", strings.Join(loader.Presets(), ", "))
}

func cmdPaint(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: surfpaint paint [flags] <script.yaml>")
		os.Exit(1)
	}
	cfg := setup()
	defer logger.Sync()

	script, err := session.LoadScript(args[0])
	if err != nil {
		fail("loading script", err)
	}
	s, err := session.FromConfig(cfg)
	if err != nil {
		fail("creating session", err)
	}

	res, err := s.Run(script)
	if err != nil {
		fail("replaying script", err)
	}
	fmt.Printf("Replayed %d strokes: %d samples, %d on the mesh\n", res.Strokes, res.Samples, res.Hits)

	w := newWriter(cfg)
	s.UseViewingTexture()
	view, err := w.Save(s.Render())
	if err != nil {
		fail("saving view", err)
	}
	fmt.Printf("View: %s\n", view)

	exportAtlas(s, w)
}

func cmdReset(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: surfpaint reset [flags] <color>")
		os.Exit(1)
	}
	cfg := setup()
	defer logger.Sync()

	s, err := session.FromConfig(cfg)
	if err != nil {
		fail("creating session", err)
	}
	if err := s.BackgroundReset(brush.ParseColor(args[0])); err != nil {
		fail("resetting background", err)
	}
	exportAtlas(s, newWriter(cfg))
}

func cmdRender(_ []string) {
	cfg := setup()
	defer logger.Sync()

	s, err := session.FromConfig(cfg)
	if err != nil {
		fail("creating session", err)
	}
	path, err := newWriter(cfg).Save(s.Render())
	if err != nil {
		fail("saving view", err)
	}
	fmt.Printf("View: %s\n", path)
}

func exportAtlas(s *session.Session, w *export.Writer) {
	img, err := s.ExportPackedImage()
	if errors.Is(err, texture.ErrAtlasOverflow) {
		atlas := s.Engine().Atlas()
		fmt.Fprintf(os.Stderr, "Warning: %d patches did not fit the %dx%d atlas and are missing\n",
			len(atlas.Dropped), atlas.Size, atlas.Size)
	} else if err != nil {
		fail("packing atlas", err)
	}

	path, err := w.Save(img)
	if err != nil {
		fail("saving atlas", err)
	}

	atlas := s.Engine().Atlas()
	fmt.Printf("Atlas: %s (%dx%d, %d patches)\n", path, atlas.Size, atlas.Size, len(atlas.Placements))
}
