// Package export writes rendered surfaces and packed textures to PNG files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout names files by capture time.
const timestampLayout = "2006-01-02_15-04-05"

// ErrNoImage is returned when there is nothing to write.
var ErrNoImage = errors.New("no image to export")

// Writer saves images under a directory with timestamped names.
type Writer struct {
	outputDir   string
	prefix      string
	compression png.CompressionLevel
	now         func() time.Time
}

// NewWriter creates a writer. An empty outputDir writes to the working directory.
func NewWriter(outputDir, prefix string) *Writer {
	return &Writer{
		outputDir:   outputDir,
		prefix:      prefix,
		compression: png.DefaultCompression,
		now:         time.Now,
	}
}

// SetOutputDir sets the output directory.
func (w *Writer) SetOutputDir(dir string) {
	w.outputDir = dir
}

// SetCompression selects the PNG compression level: "default", "none", "fast" or "best".
func (w *Writer) SetCompression(level string) error {
	switch level {
	case "", "default":
		w.compression = png.DefaultCompression
	case "none":
		w.compression = png.NoCompression
	case "fast":
		w.compression = png.BestSpeed
	case "best":
		w.compression = png.BestCompression
	default:
		return fmt.Errorf("unknown compression level %q", level)
	}
	return nil
}

// Filename returns the next free name for prefix at the current time.
// Several captures within one second get a numeric suffix.
func (w *Writer) Filename() string {
	base := fmt.Sprintf("%s_%s", w.prefix, w.now().Format(timestampLayout))
	name := filepath.Join(w.outputDir, base+".png")
	for i := 2; fileExists(name); i++ {
		name = filepath.Join(w.outputDir, fmt.Sprintf("%s_%d.png", base, i))
	}
	return name
}

// Save writes img under a generated filename and returns the path.
func (w *Writer) Save(img image.Image) (string, error) {
	if w.outputDir != "" {
		if err := os.MkdirAll(w.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := w.Filename()
	if err := w.SaveAs(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// SaveAs writes img to path.
func (w *Writer) SaveAs(path string, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return ErrNoImage
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	enc := png.Encoder{CompressionLevel: w.compression}
	if err := enc.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}

// Load reads a PNG file back, used to verify exports and seed textures.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}
	return img, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
