package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagMesh   = flag.String("mesh", "", "Mesh source: preset:cube, preset:sphere, preset:box or a .gltf/.glb file")
	flagWidth  = flag.Int("width", 0, "Raster surface width")
	flagHeight = flag.Int("height", 0, "Raster surface height")
	flagOrtho  = flag.Bool("ortho", false, "Use orthographic projection")
	flagOut    = flag.String("out", "", "Export directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ParseArgs parses flags from args, for subcommands that consume os.Args[1]
// themselves. It returns the remaining positional arguments.
func ParseArgs(args []string) ([]string, error) {
	if err := flag.CommandLine.Parse(args); err != nil {
		return nil, err
	}
	return flag.CommandLine.Args(), nil
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMesh != "" {
		cfg.Mesh.Source = *flagMesh
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagOrtho {
		cfg.Render.Projection = "orthographic"
	}
	if *flagOut != "" {
		cfg.Export.Dir = *flagOut
	}
}
