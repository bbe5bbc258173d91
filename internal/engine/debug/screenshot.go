// Package debug writes snapshots of the framebuffer and of the sky atlas.
package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
)

// Format is an image encoding supported by snapshots.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ErrUnknownFormat is returned for an unsupported snapshot format.
var ErrUnknownFormat = errors.New("debug: unknown snapshot format")

// ParseFormat accepts "png" or "bmp" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatBMP:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encode writes img to w in format f.
func (f Format) Encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// ScreenshotCapture writes timestamped snapshots into a directory.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	format    Format
	now       func() time.Time
}

// NewScreenshotCapture creates a capture handler.
func NewScreenshotCapture(outputDir, prefix string, format Format) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// CaptureFromPixels saves a framebuffer read back from OpenGL. pixels must
// hold width*height RGBA texels with the bottom row first.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := range height {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return sc.save("view", img)
}

// CaptureAtlas saves a res*res RGBA sky atlas as stored, top row first. The
// alpha channel is forced opaque so highlighted texels stay visible.
func (sc *ScreenshotCapture) CaptureAtlas(rgba []byte, res int) (string, error) {
	if len(rgba) != res*res*4 {
		return "", fmt.Errorf("atlas size mismatch: expected %d, got %d", res*res*4, len(rgba))
	}
	img := image.NewRGBA(image.Rect(0, 0, res, res))
	copy(img.Pix, rgba)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return sc.save("atlas", img)
}

func (sc *ScreenshotCapture) save(kind string, img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename(kind)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := sc.format.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding %s: %w", sc.format, err)
	}
	return filename, nil
}

// GenerateFilename returns the path a snapshot of the given kind taken now
// would be written to.
func (sc *ScreenshotCapture) GenerateFilename(kind string) string {
	timestamp := sc.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s_%s.%s", sc.prefix, kind, timestamp, sc.format)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}
