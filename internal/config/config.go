package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Journal configures the optional run journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// PluginRef selects a registered chain plugin and its options.
type PluginRef struct {
	Name    string         `toml:"name"`
	Options map[string]any `toml:"options"`
}

// Resize mirrors the codec-agnostic resize block backends accept.
type Resize struct {
	Enabled *bool  `toml:"enabled"`
	Unit    string `toml:"unit"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
}

// Step describes one pipeline step.
type Step struct {
	Kind    string                    `toml:"kind"`
	Mode    string                    `toml:"mode"`
	Plugins []PluginRef               `toml:"plugin"`
	Encode  map[string]map[string]any `toml:"encode"`
	Resize  *Resize                   `toml:"resize"`
	Rotate  *int                      `toml:"rotate"`
	Workers int                       `toml:"workers"`
}

// Config centralizes every knob the CLI needs.
type Config struct {
	Concurrency int     `toml:"concurrency"`
	LogLevel    string  `toml:"log_level"`
	LogFormat   string  `toml:"log_format"`
	OutputDir   string  `toml:"output_dir"`
	Journal     Journal `toml:"journal"`
	Steps       []Step  `toml:"step"`
}

// Sample returns the embedded sample configuration text.
func Sample() string { return sampleConfig }

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pixelmill", "config.toml"), nil
}

// Load reads the TOML file at path, applying defaults for anything unset.
// A missing file yields the defaults without error when path is empty;
// an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Journal.Path = ExpandPath(c.Journal.Path)
	c.OutputDir = ExpandPath(c.OutputDir)
}

// ExpandPath resolves a leading tilde against the user's home directory.
func ExpandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
