package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olivier-w/wavetrail/internal/visualizer"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultScale shrinks browser-pixel distances to braille dots.
	DefaultScale = 0.25
	// DefaultFPS is the frame rate the per-frame motion constants are tuned
	// for.
	DefaultFPS = 60
)

// Config is the on-disk configuration. Keys absent from the file keep their
// defaults.
type Config struct {
	FPS           int     `yaml:"fps"`
	Lines         int     `yaml:"lines"`
	LineSpacing   float64 `yaml:"line_spacing"`
	Amplitude     float64 `yaml:"amplitude"`
	Stride        int     `yaml:"stride"`
	DecayRate     float64 `yaml:"decay_rate"`
	VolumeWeight  float64 `yaml:"volume_weight"`
	Baseline      float64 `yaml:"baseline"`
	Stars         bool    `yaml:"stars"`
	StarCount     int     `yaml:"star_count"`
	Scale         float64 `yaml:"scale"`
	InitialVolume float64 `yaml:"initial_volume"`
}

// Default returns the built-in configuration.
func Default() Config {
	v := visualizer.DefaultConfig()
	return Config{
		FPS:           DefaultFPS,
		Lines:         v.Lines,
		LineSpacing:   v.LineSpacing,
		Amplitude:     v.Amplitude,
		Stride:        v.Stride,
		DecayRate:     v.DecayRate,
		VolumeWeight:  v.VolumeWeight,
		Baseline:      v.Baseline,
		Stars:         v.Stars,
		StarCount:     v.StarCount,
		Scale:         DefaultScale,
		InitialVolume: 0.8,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/wavetrail/config.yaml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wavetrail", "config.yaml"), nil
}

// Load reads path over the defaults. An empty path tries DefaultPath and
// falls back to defaults when that file does not exist; an explicit path
// must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are an error.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the ranges the player and the trail depend on.
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 120:
		return fmt.Errorf("fps must be in [1,120], got %d", c.FPS)
	case c.Scale <= 0:
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	case c.InitialVolume < 0 || c.InitialVolume > 1:
		return fmt.Errorf("initial_volume must be in [0,1], got %g", c.InitialVolume)
	}
	if err := c.Visual().Validate(); err != nil {
		return fmt.Errorf("invalid trail settings: %w", err)
	}
	return nil
}

// Visual returns the trail configuration with Scale applied.
func (c Config) Visual() visualizer.Config {
	v := visualizer.DefaultConfig()
	v.Lines = c.Lines
	v.LineSpacing = c.LineSpacing
	v.Amplitude = c.Amplitude
	v.Stride = c.Stride
	v.DecayRate = c.DecayRate
	v.VolumeWeight = c.VolumeWeight
	v.Baseline = c.Baseline
	v.Stars = c.Stars
	v.StarCount = c.StarCount
	return v.Scaled(c.Scale)
}
