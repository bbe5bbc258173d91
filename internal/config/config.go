// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/skyviewer/internal/engine/skytexture"
	"github.com/Faultbox/skyviewer/internal/skymap"
	"github.com/Faultbox/skyviewer/pkg/healpix"
)

// Projection names accepted in DisplayConfig.Projection.
const (
	ProjectionSphere    = "sphere"
	ProjectionMollweide = "mollweide"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Display  DisplayConfig  `yaml:"display"`
	Map      MapConfig      `yaml:"map"`
	Debug    DebugConfig    `yaml:"debug"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds window and swap settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	MSAA       int  `yaml:"msaa"`
}

// DisplayConfig holds what is shown and how.
type DisplayConfig struct {
	Projection   string  `yaml:"projection"`
	Field        string  `yaml:"field"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	AutoRange    bool    `yaml:"auto_range"` // derive min/max from mean +- 3 sigma
	ColorTable   string  `yaml:"color_table"`
	RiggingNside int     `yaml:"rigging_nside"`
	PolarVectors bool    `yaml:"polar_vectors"`
}

// Mollweide reports whether the Mollweide projection is selected.
func (d DisplayConfig) Mollweide() bool {
	return strings.EqualFold(d.Projection, ProjectionMollweide)
}

// MapConfig describes the synthetic map loaded at start-up.
type MapConfig struct {
	Nside    int    `yaml:"nside"`
	Ordering string `yaml:"ordering"`
	Layout   string `yaml:"layout"`
	Seed     int64  `yaml:"seed"`
}

// DebugConfig holds rigging debug toggles.
type DebugConfig struct {
	RiggingLines   bool `yaml:"rigging_lines"`
	SingleFace     int  `yaml:"single_face"` // -1 draws all faces
	ForceMollweide bool `yaml:"force_mollweide"`
}

// SnapshotConfig holds atlas snapshot settings.
type SnapshotConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			MSAA:       4,
		},
		Display: DisplayConfig{
			Projection:   ProjectionSphere,
			Field:        "I",
			Min:          -1,
			Max:          1,
			AutoRange:    true,
			ColorTable:   "Default",
			RiggingNside: 16,
			PolarVectors: false,
		},
		Map: MapConfig{
			Nside:    64,
			Ordering: "ring",
			Layout:   "TPN",
			Seed:     1,
		},
		Debug: DebugConfig{
			SingleFace: -1,
		},
		Snapshot: SnapshotConfig{
			Dir:    "snapshots",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window: size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.MSAA < 0 || c.Window.MSAA > 16 {
		err = multierr.Append(err, fmt.Errorf("window: msaa %d out of range 0..16", c.Window.MSAA))
	}

	switch strings.ToLower(c.Display.Projection) {
	case ProjectionSphere, ProjectionMollweide:
	default:
		err = multierr.Append(err, fmt.Errorf("display: unknown projection %q", c.Display.Projection))
	}
	if _, ferr := skymap.ParseField(c.Display.Field); ferr != nil {
		err = multierr.Append(err, fmt.Errorf("display: %w", ferr))
	}
	if !c.Display.AutoRange && !(c.Display.Max > c.Display.Min) {
		err = multierr.Append(err, fmt.Errorf("display: max %g must exceed min %g", c.Display.Max, c.Display.Min))
	}
	if _, cerr := skytexture.ByName(c.Display.ColorTable); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("display: %w", cerr))
	}
	if c.Display.RiggingNside < 1 {
		err = multierr.Append(err, fmt.Errorf("display: rigging_nside %d must be positive", c.Display.RiggingNside))
	}

	if nerr := healpix.ValidNside(c.Map.Nside); nerr != nil {
		err = multierr.Append(err, fmt.Errorf("map: %w", nerr))
	}
	if _, oerr := healpix.ParseOrdering(c.Map.Ordering); oerr != nil {
		err = multierr.Append(err, fmt.Errorf("map: %w", oerr))
	}
	if _, lerr := skymap.ParseLayout(c.Map.Layout); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("map: %w", lerr))
	}

	if c.Debug.SingleFace < -1 || c.Debug.SingleFace > 11 {
		err = multierr.Append(err, fmt.Errorf("debug: single_face %d out of range -1..11", c.Debug.SingleFace))
	}

	switch strings.ToLower(c.Snapshot.Format) {
	case "png", "bmp":
	default:
		err = multierr.Append(err, fmt.Errorf("snapshot: unknown format %q", c.Snapshot.Format))
	}
	return err
}
