package debug

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"BMP", FormatBMP, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("out", "sky", FormatBMP)
	sc.now = fixedClock
	want := filepath.Join("out", "sky_atlas_2024-03-01_12-30-45.000.bmp")
	if got := sc.GenerateFilename("atlas"); got != want {
		t.Errorf("GenerateFilename() = %q, want %q", got, want)
	}
}

func TestCaptureFromPixelsFlips(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "sky", FormatPNG)

	// Two rows: bottom row red, top row blue, as OpenGL returns them.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	name, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels() error = %v", err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, b, _ := img.At(0, 0).RGBA()
	if b>>8 != 255 || r != 0 {
		t.Errorf("top pixel = %v, want blue", img.At(0, 0))
	}
}

func TestCaptureAtlasBMP(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "sky", FormatBMP)

	const res = 4
	rgba := make([]byte, res*res*4)
	for i := range rgba {
		rgba[i] = byte(i)
	}
	rgba[3] = 0 // a highlighted texel

	name, err := sc.CaptureAtlas(rgba, res)
	if err != nil {
		t.Fatalf("CaptureAtlas() error = %v", err)
	}
	if !strings.HasSuffix(name, ".bmp") {
		t.Errorf("name = %q, want .bmp", name)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, res, res) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 0 || g>>8 != 1 || b>>8 != 2 || a>>8 != 255 {
		t.Errorf("texel 0 = %v", img.At(0, 0))
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "sky", FormatPNG)
	if _, err := sc.CaptureFromPixels(make([]byte, 3), 1, 1); err == nil {
		t.Error("expected size mismatch error")
	}
	if _, err := sc.CaptureAtlas(make([]byte, 8), 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
