// Package config loads the settings shared by the fold session, the script
// engine and the command line tool.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/mesh"
)

// DefaultEvalTimeout is the hard limit for a single script evaluation.
const DefaultEvalTimeout = 5 * time.Second

// Paper is the size of a fresh sheet.
type Paper struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config holds every tunable setting.
type Config struct {
	Paper       Paper         `yaml:"paper"`
	CreaseSpan  float64       `yaml:"crease_span"`  // crease length in paper diagonals
	EvalTimeout time.Duration `yaml:"eval_timeout"` // e.g. "5s"
	LogLevel    string        `yaml:"log_level"`    // debug, info, warn or error
}

// Default returns the built-in settings: a unit square, the default crease
// span, a five second evaluation limit and warnings only.
func Default() Config {
	return Config{
		Paper:       Paper{Width: 1, Height: 1},
		CreaseSpan:  mesh.DefaultCreaseSpan,
		EvalTimeout: DefaultEvalTimeout,
		LogLevel:    "warn",
	}
}

// Parse reads YAML settings on top of Default. Keys that are absent keep
// their default value.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads settings from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (in %s)", err, path)
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.Paper.Width <= 0 || c.Paper.Height <= 0 {
		return fmt.Errorf("config: paper size %gx%g must be positive", c.Paper.Width, c.Paper.Height)
	}
	if c.CreaseSpan <= 0 {
		return fmt.Errorf("config: crease_span %g must be positive", c.CreaseSpan)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: eval_timeout %s must be positive", c.EvalTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}
