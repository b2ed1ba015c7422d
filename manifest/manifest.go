// Package manifest handles monty.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/monty/pkg/collection"
)

// FileName is the configuration file looked up next to programs.
const FileName = "monty.toml"

// Manifest represents a monty.toml configuration.
type Manifest struct {
	Run   RunConfig   `toml:"run"`
	Log   LogConfig   `toml:"log"`
	Image ImageConfig `toml:"image"`

	// Path is the file the manifest was read from (set at load time).
	// Empty for the built-in defaults.
	Path string `toml:"-"`
}

// RunConfig configures program execution.
type RunConfig struct {
	Mode  string `toml:"mode"` // "stack" or "queue"
	Trace bool   `toml:"trace"`
}

// LogConfig configures commonlog output.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	Path      string `toml:"path"`
}

// ImageConfig configures compiled image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// Default returns the configuration used when no monty.toml exists.
func Default() *Manifest {
	return &Manifest{
		Run: RunConfig{Mode: collection.Stack.String()},
		Log: LogConfig{Verbosity: -4},
	}
}

// Load parses the monty.toml file in dir.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a configuration file at an explicit path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if m.Run.Mode == "" {
		m.Run.Mode = collection.Stack.String()
	}
	if _, err := collection.ParseMode(m.Run.Mode); err != nil {
		return nil, fmt.Errorf("%s: run.mode: %w", path, err)
	}

	m.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Relative log paths are relative to the manifest.
	if m.Log.Path != "" && !filepath.IsAbs(m.Log.Path) {
		m.Log.Path = filepath.Join(filepath.Dir(m.Path), m.Log.Path)
	}

	return m, nil
}

// FindAndLoad walks up from startDir to find a monty.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Mode returns the configured initial collection mode.
func (m *Manifest) Mode() collection.Mode {
	mode, _ := collection.ParseMode(m.Run.Mode)
	return mode
}

// LogPath returns the configured log file, or nil for stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.Path == "" {
		return nil
	}
	return &m.Log.Path
}
