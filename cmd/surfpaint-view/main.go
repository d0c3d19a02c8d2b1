// surfpaint-view is the interactive SDL2 viewer for painting on a mesh.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/surfpaint/internal/config"
	"github.com/Faultbox/surfpaint/internal/engine/input"
	"github.com/Faultbox/surfpaint/internal/engine/window"
	"github.com/Faultbox/surfpaint/internal/export"
	"github.com/Faultbox/surfpaint/internal/logger"
	"github.com/Faultbox/surfpaint/internal/session"
)

// frameTime caps the redraw rate.
const frameTime = 16 * time.Millisecond

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== surfpaint viewer ===")
	if cfg.Source != "" {
		logger.Info("config loaded", zap.String("path", cfg.Source))
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := session.FromConfig(cfg)
	if err != nil {
		logger.Error("failed to create session", zap.Error(err))
		os.Exit(1)
	}

	win, err := window.New(window.Config{
		Title:      "surfpaint",
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Fullscreen: cfg.Render.Fullscreen,
	})
	if err != nil {
		logger.Error("failed to create window", zap.Error(err))
		os.Exit(1)
	}
	defer win.Close()

	// The surface may differ from the requested size on high-DPI or fullscreen
	w, h := win.GetSize()
	s.Resize(w, h)

	writer := export.NewWriter(cfg.Export.Dir, cfg.Export.Prefix)
	if err := writer.SetCompression(cfg.Export.Compression); err != nil {
		logger.Warn("using default compression", zap.Error(err))
	}

	ctrl := newController(s, writer, cfg.Texture.BaseColor)
	in := input.New()
	title := ""

	// Main loop
	for !ctrl.quit {
		start := time.Now()

		if in.Update() {
			ctrl.quit = true
		}
		for _, e := range in.Events() {
			ctrl.handle(e)
		}

		if err := win.Present(s.Render()); err != nil {
			logger.Error("present failed", zap.Error(err))
		}
		if t := ctrl.title(); t != title {
			win.SetTitle(t)
			title = t
		}

		if elapsed := time.Since(start); elapsed < frameTime {
			sdl.Delay(uint32((frameTime - elapsed) / time.Millisecond))
		}
	}

	logger.Info("viewer closed normally")
}
