// Package config loads the settings shared by the command line and the server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/implicit/plot"
)

// Config holds all settings.
type Config struct {
	// Domain is the default plotting rectangle.
	Domain plot.Domain `yaml:"domain"`
	// Resolution is the default number of grid columns.
	Resolution int `yaml:"resolution"`
	// Resolutions lists the resolutions users may choose.
	Resolutions []int `yaml:"resolutions"`
	// Parameter is the default sweep of t.
	Parameter plot.ParameterRange `yaml:"parameter"`

	Animation AnimationConfig `yaml:"animation"`
	Levels    LevelsConfig    `yaml:"levels"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Render    RenderConfig    `yaml:"render"`
}

// AnimationConfig configures parameter sweeps.
type AnimationConfig struct {
	// Enabled makes the plot command sweep the parameter range instead of
	// drawing a single frame.
	Enabled bool `yaml:"enabled"`
	// DelayMS is the pause between frames in milliseconds.
	DelayMS int `yaml:"delay_ms"`
}

// Delay limits.
const (
	MinDelayMS = 100
	MaxDelayMS = 2000
)

// Delay returns the pause between frames.
func (a AnimationConfig) Delay() time.Duration {
	return time.Duration(a.DelayMS) * time.Millisecond
}

// LevelsConfig sets the context contour levels.
type LevelsConfig struct {
	Static    []float64 `yaml:"static"`
	Animation []float64 `yaml:"animation"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MaxSessions bounds the number of live sessions. Zero means no limit.
	MaxSessions int `yaml:"max_sessions"`
}

// RenderConfig configures the terminal canvas.
type RenderConfig struct {
	// Width and Height are the canvas size in cells when output is not a
	// terminal.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Color enables ANSI colours. "auto" detects the terminal.
	Color string `yaml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Domain:      plot.DefaultDomain,
		Resolution:  300,
		Resolutions: slices.Clone(plot.Resolutions),
		Parameter:   plot.DefaultParameterRange,
		Animation: AnimationConfig{
			Enabled: false,
			DelayMS: 500,
		},
		Levels: LevelsConfig{
			Static:    slices.Clone(plot.StaticLevels),
			Animation: slices.Clone(plot.AnimationLevels),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:        "localhost:8080",
			MaxSessions: 1024,
		},
		Render: RenderConfig{
			Width:  80,
			Height: 40,
			Color:  "auto",
		},
	}
}

// Load loads configuration from a YAML file over the defaults. A missing file
// gives the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Use defaults.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("IMPLICIT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if lvl := os.Getenv("IMPLICIT_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Validate checks that the configuration describes plottable defaults.
func (c *Config) Validate() error {
	if err := c.Domain.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Parameter.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.Resolutions) == 0 {
		return errors.New("config: no resolutions")
	}
	for _, r := range c.Resolutions {
		if r < 2 || r > plot.MaxResolution {
			return fmt.Errorf("config: resolution %d outside [2, %d]", r, plot.MaxResolution)
		}
	}
	if !slices.Contains(c.Resolutions, c.Resolution) {
		return fmt.Errorf("config: resolution %d is not one of %v", c.Resolution, c.Resolutions)
	}
	if d := c.Animation.DelayMS; d < MinDelayMS || d > MaxDelayMS {
		return fmt.Errorf("config: animation delay %dms outside [%d, %d]", d, MinDelayMS, MaxDelayMS)
	}
	switch c.Render.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("config: render color must be auto, always, or never, not %q", c.Render.Color)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("config: render size must be positive")
	}
	if c.Server.MaxSessions < 0 {
		return errors.New("config: negative max_sessions")
	}
	return nil
}

// AllowedResolution reports whether r is one of the configured resolutions.
func (c *Config) AllowedResolution(r int) bool {
	return slices.Contains(c.Resolutions, r)
}
