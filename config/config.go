// Package config handles the optional ~/.glitch/glitch.toml user
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds user-level defaults. Command-line flags override all of
// these.
type Config struct {
	// Workers caps frame-level parallelism. 0 means one worker per CPU.
	Workers int `toml:"workers"`

	// SeedPerFrame offsets each animation frame's seed by its index,
	// decorrelating per-frame noise. Off by default: every frame
	// reuses the run seed, which keeps animated noise temporally
	// coherent.
	SeedPerFrame bool `toml:"seed-per-frame"`

	// CacheDir overrides the directory holding the compile cache.
	CacheDir string `toml:"cache-dir"`

	// NoCache disables the compile cache entirely.
	NoCache bool `toml:"no-cache"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Workers: runtime.NumCPU()}
}

// Load parses a configuration file. Fields absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}

// LoadDefault loads ~/.glitch/glitch.toml when it exists, or the
// built-in defaults when it does not.
func LoadDefault() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(home, ".glitch", "glitch.toml")
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}
