package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const fullYAML = `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

display:
  projection: mollweide
  field: Nobs
  min: 0
  max: 500
  auto_range: false
  color_table: Black/White
  rigging_nside: 8
  polar_vectors: true

map:
  nside: 32
  ordering: nest
  layout: TP
  seed: 7

debug:
  rigging_lines: true
  single_face: 6

snapshot:
  dir: /tmp/shots
  format: bmp

logging:
  level: debug
  log_file: skyview.log
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen || !cfg.Window.VSync {
		t.Errorf("unexpected window defaults %+v", cfg.Window)
	}
	if cfg.Display.Mollweide() {
		t.Error("expected sphere projection by default")
	}
	if cfg.Display.Field != "I" || cfg.Display.RiggingNside != 16 || !cfg.Display.AutoRange {
		t.Errorf("unexpected display defaults %+v", cfg.Display)
	}
	if cfg.Debug.SingleFace != -1 {
		t.Errorf("expected single_face -1, got %d", cfg.Debug.SingleFace)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.LogFile != "" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	require.NoError(t, cfg.Validate())
}

func TestMergeFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", fullYAML)

	cfg := Default()
	require.NoError(t, cfg.MergeFile(path))

	assert.Equal(t, WindowConfig{Width: 1920, Height: 1080, Fullscreen: true, MSAA: 4}, cfg.Window)
	assert.True(t, cfg.Display.Mollweide())
	assert.Equal(t, "Nobs", cfg.Display.Field)
	assert.False(t, cfg.Display.AutoRange)
	assert.Equal(t, 500.0, cfg.Display.Max)
	assert.Equal(t, "Black/White", cfg.Display.ColorTable)
	assert.Equal(t, MapConfig{Nside: 32, Ordering: "nest", Layout: "TP", Seed: 7}, cfg.Map)
	assert.True(t, cfg.Debug.RiggingLines)
	assert.Equal(t, 6, cfg.Debug.SingleFace)
	assert.Equal(t, SnapshotConfig{Dir: "/tmp/shots", Format: "bmp"}, cfg.Snapshot)
	assert.Equal(t, "skyview.log", cfg.Logging.LogFile)
	assert.NoError(t, cfg.Validate())
}

func TestMergeFileKeepsMissingKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "partial.yaml", "map:\n  nside: 128\n")

	cfg := Default()
	require.NoError(t, cfg.MergeFile(path))
	assert.Equal(t, 128, cfg.Map.Nside)
	assert.Equal(t, "ring", cfg.Map.Ordering)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestMergeFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "invalid.yaml", "window:\n  width: not a number\n  invalid syntax here\n")

	cfg := Default()
	err := cfg.MergeFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid.yaml")

	assert.Error(t, cfg.MergeFile(filepath.Join(dir, "missing.yaml")))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Display.Projection = "gnomonic"
	cfg.Display.Field = "X"
	cfg.Display.AutoRange = false
	cfg.Display.Min, cfg.Display.Max = 2, 1
	cfg.Display.ColorTable = "viridis"
	cfg.Map.Nside = 12
	cfg.Map.Ordering = "spiral"
	cfg.Debug.SingleFace = 12
	cfg.Snapshot.Format = "gif"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 9)
	for _, want := range []string{"window", "gnomonic", "viridis", "spiral", "single_face", "gif"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateAutoRangeIgnoresBounds(t *testing.T) {
	cfg := Default()
	cfg.Display.Min, cfg.Display.Max = 1, 1
	assert.NoError(t, cfg.Validate())

	cfg.Display.AutoRange = false
	assert.Error(t, cfg.Validate())
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" || !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return an absolute path, got %q", dir)
	}
	assert.Equal(t, filepath.Join(dir, FileName), SearchPath()[1])
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := writeFile(t, dir, "b.yaml", "{}\n")

	path, err := resolvePath("", []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, second, path)

	path, err = resolvePath("", []string{first, dir})
	require.NoError(t, err)
	assert.Empty(t, path, "directories are not config files")

	_, err = resolvePath(first, []string{second})
	assert.Error(t, err, "explicit path must exist")
}

func TestOverridesApply(t *testing.T) {
	tests := []struct {
		name   string
		o      Overrides
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "debug and log file",
			o:    Overrides{Debug: true, LogFile: "x.log"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "x.log", cfg.Logging.LogFile)
			},
		},
		{
			name: "fullscreen wins over windowed",
			o:    Overrides{Windowed: true, Fullscreen: true},
			verify: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Window.Fullscreen)
			},
		},
		{
			name: "size",
			o:    Overrides{Width: 2560, Height: 1440},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2560, cfg.Window.Width)
				assert.Equal(t, 1440, cfg.Window.Height)
			},
		},
		{
			name: "display",
			o:    Overrides{Mollweide: true, Field: "Q", Colors: "Colored"},
			verify: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Display.Mollweide())
				assert.Equal(t, "Q", cfg.Display.Field)
				assert.Equal(t, "Colored", cfg.Display.ColorTable)
			},
		},
		{
			name: "map",
			o:    Overrides{Nside: 128, Ordering: "nest", Seed: 9},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, MapConfig{Nside: 128, Ordering: "nest", Layout: "TPN", Seed: 9}, cfg.Map)
			},
		},
		{
			name: "zero overrides change nothing",
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.o.Apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestOverridesRegister(t *testing.T) {
	var o Overrides
	fs := flag.NewFlagSet("skyview", flag.ContinueOnError)
	o.Register(fs)

	require.NoError(t, fs.Parse([]string{"-mollweide", "-nside", "32", "-field", "P", "-config", "x.yaml", "-seed", "4"}))
	assert.True(t, o.Mollweide)
	assert.Equal(t, 32, o.Nside)
	assert.Equal(t, "P", o.Field)
	assert.Equal(t, "x.yaml", o.ConfigPath)
	assert.Equal(t, int64(4), o.Seed)
}

func TestLoadWithPriority(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "window:\n  width: 1600\n  height: 900\n")

	cfg, err := LoadWith(Overrides{ConfigPath: path, Width: 1920})
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Window.Width, "flag beats file")
	assert.Equal(t, 900, cfg.Window.Height, "file beats default")
}

func TestLoadWithRejects(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "map:\n  nside: 3\n")

	_, err := LoadWith(Overrides{ConfigPath: path})
	assert.Error(t, err)

	_, err = LoadWith(Overrides{ConfigPath: filepath.Join(dir, "absent.yaml")})
	assert.Error(t, err)

	_, err = LoadWith(Overrides{Ordering: "spiral", ConfigPath: writeFile(t, dir, "ok.yaml", "{}\n")})
	assert.ErrorContains(t, err, "spiral")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Display.Projection = ProjectionMollweide
	cfg.Map.Nside = 256

	require.NoError(t, cfg.SaveTo(path))

	loaded := Default()
	require.NoError(t, loaded.MergeFile(path))
	assert.Equal(t, cfg, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")

	cfg.Map.Nside = 5
	assert.Error(t, cfg.SaveTo(path), "invalid configs are not written")
	loaded = Default()
	require.NoError(t, loaded.MergeFile(path))
	assert.Equal(t, 256, loaded.Map.Nside)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().WriteYAML(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "window:\n  width: 1280\n"), out)
	assert.Contains(t, out, "rigging_nside: 16")
}
