// Package config loads runtime settings from a tern.toml manifest.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"

	"tern/internal/trace"
)

// DefaultFileName is the manifest looked up next to the program.
const DefaultFileName = "tern.toml"

var (
	// ErrBadWorkers indicates a non-positive [runtime].workers value.
	ErrBadWorkers = errors.New("[runtime].workers must be positive")
	// ErrBadRingSize indicates a negative [trace].ring_size value.
	ErrBadRingSize = errors.New("[trace].ring_size must not be negative")
)

// Runtime configures the worker pool.
type Runtime struct {
	Workers int `toml:"workers"`
}

// Trace configures the tracing subsystem.
type Trace struct {
	Level    string `toml:"level"`
	Output   string `toml:"output"`
	RingSize int64  `toml:"ring_size"`
}

// Config is the root of a tern.toml manifest.
type Config struct {
	Runtime Runtime `toml:"runtime"`
	Trace   Trace   `toml:"trace"`
}

// Default returns the configuration used when no manifest exists: one
// worker per CPU and tracing off.
func Default() Config {
	return Config{
		Runtime: Runtime{Workers: runtime.GOMAXPROCS(0)},
		Trace:   Trace{Level: trace.LevelOff.String(), RingSize: 4096},
	}
}

// Load parses a tern.toml manifest, filling omitted sections from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("runtime", "workers") && cfg.Runtime.Workers <= 0 {
		return Config{}, fmt.Errorf("%s: %w", path, ErrBadWorkers)
	}
	if meta.IsDefined("trace", "ring_size") && cfg.Trace.RingSize < 0 {
		return Config{}, fmt.Errorf("%s: %w", path, ErrBadRingSize)
	}
	if meta.IsDefined("trace", "level") {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return cfg, nil
}

// TraceLevel returns the parsed trace level.
func (c Config) TraceLevel() trace.Level {
	lvl, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.LevelOff
	}
	return lvl
}
