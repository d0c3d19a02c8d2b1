package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that can point at a config file.
const EnvConfig = "SURFPAINT_CONFIG"

// Load builds the configuration with priority: defaults < file < flags.
// The file is the -config flag, then $SURFPAINT_CONFIG, then the first
// of SearchPaths that exists. Cfg.Source records which one was read.
func Load() (*Config, error) {
	cfg := Default()

	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := decodeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		cfg.Source = path
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SearchPaths lists the files tried, in order, when no config path is given.
func SearchPaths() []string {
	return []string{
		"surfpaint.yaml",
		"surfpaint.yml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
}

// resolveConfigPath returns the file to read, or "" to run on defaults.
// An explicitly named file must exist; search paths are optional.
func resolveConfigPath() (string, error) {
	for _, explicit := range []string{ConfigPath(), os.Getenv(EnvConfig)} {
		if explicit == "" {
			continue
		}
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "surfpaint")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "surfpaint")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "surfpaint")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "surfpaint")
	}
}

// decodeFile merges a YAML file over cfg. Unknown keys are an error so a
// misspelled option is reported instead of silently keeping its default.
// An empty file leaves cfg unchanged.
func decodeFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
