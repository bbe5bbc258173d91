package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the search path.
const FileName = "config.yaml"

// Load builds the effective configuration from the process command line.
func Load() (*Config, error) {
	return LoadWith(cli)
}

// LoadWith builds a configuration from the given overrides. Later sources
// override earlier ones: built-in defaults, then the config file, then o.
func LoadWith(o Overrides) (*Config, error) {
	cfg := Default()

	path, err := resolvePath(o.ConfigPath, SearchPath())
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}

	o.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SearchPath lists the locations tried, in order, when no --config flag is
// given.
func SearchPath() []string {
	return []string{
		FileName,
		filepath.Join(ConfigDir(), FileName),
	}
}

// resolvePath returns explicit when set, otherwise the first existing entry of
// candidates. An explicit path must exist; a missing search path entry just
// means no file.
func resolvePath(explicit string, candidates []string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
	}
	return "", nil
}

// ConfigDir returns the per-user directory holding skyview.yaml.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "SkyViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "SkyViewer")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skyviewer")
	}
	return filepath.Join(home, ".config", "skyviewer")
}

// MergeFile overlays the YAML document at path onto c. Keys missing from the
// file keep their current values.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}
