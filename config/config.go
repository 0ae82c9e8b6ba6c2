// Package config handles arraycreate.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/arraycreate/vm"
)

// FileName is the name of the configuration file.
const FileName = "arraycreate.toml"

// Config represents an arraycreate.toml file.
//
// The dense/sparse threshold and the array length validity rule are fixed
// by the runtime and intentionally have no settings here.
type Config struct {
	Log            Log            `toml:"log" json:"log"`
	Specialization Specialization `toml:"specialization" json:"specialization"`
	Profiler       Profiler       `toml:"profiler" json:"profiler"`
	Array          Array          `toml:"array" json:"array"`
	Store          Store          `toml:"store" json:"store"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"` // -4 (none) .. 2 (debug)
	File      string `toml:"file" json:"file"`           // empty for stderr
}

// Specialization toggles the advisory call-site cache.
type Specialization struct {
	Enabled bool `toml:"enabled" json:"enabled"`
}

// Profiler configures call-site profiling.
type Profiler struct {
	HotThreshold int `toml:"hot-threshold" json:"hot-threshold"`
}

// Array configures array allocation.
type Array struct {
	DensePrealloc int `toml:"dense-prealloc" json:"dense-prealloc"`
}

// Store configures the profile store.
type Store struct {
	Path string `toml:"path" json:"path"` // empty disables the store
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Specialization: Specialization{Enabled: true},
		Profiler:       Profiler{HotThreshold: vm.DefaultHotThreshold},
		Array:          Array{DensePrealloc: vm.DefaultDensePrealloc},
	}
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses arraycreate.toml from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find arraycreate.toml and loads it.
// Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			c := Default()
			c.Dir = startDir
			return c, nil
		}
		dir = parent
	}
}

// StorePath returns the absolute profile store path, or "" if disabled.
func (c *Config) StorePath() string {
	if c.Store.Path == "" {
		return ""
	}
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// RuntimeOptions converts the configuration into vm.Options.
func (c *Config) RuntimeOptions() vm.Options {
	return vm.Options{
		Context:               vm.NewContext(vm.ContextOptions{DensePrealloc: c.Array.DensePrealloc}),
		DisableSpecialization: !c.Specialization.Enabled,
		HotThreshold:          uint64(c.Profiler.HotThreshold),
	}
}
