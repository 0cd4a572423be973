package visualizer

import (
	"errors"
	"fmt"
	"math"
)

// Config holds the tuning constants of the waveform trail. Distances are in
// surface pixels (braille dots on the terminal canvas).
type Config struct {
	Lines        int     // history capacity
	LineSpacing  float64 // vertical distance between consecutive rows
	Amplitude    float64 // base displacement at full spectrum magnitude
	Stride       int     // horizontal sampling step
	DecayRate    float64 // per-frame pull of older rows toward zero
	VolumeWeight float64 // how much the volume setting widens the amplitude
	Baseline     float64 // first row's baseline as a fraction of height

	BandStart float64 // left edge of the reactive band, fraction of width
	BandEnd   float64 // right edge of the reactive band

	BassSwing   float64 // oscillation amplitudes at full band energy
	TrebleSwing float64
	MidSwing    float64
	Jitter      float64 // half-width of the uniform noise

	TimeStep float64 // frame-relative time per frame

	StrokeWeight float64

	Stars     bool
	StarCount int
}

// DefaultConfig returns the constants the trail was designed around.
func DefaultConfig() Config {
	return Config{
		Lines:        50,
		LineSpacing:  4,
		Amplitude:    150,
		Stride:       5,
		DecayRate:    0.06,
		VolumeWeight: 0.8,
		Baseline:     1.0 / 3.0,
		BandStart:    0.3,
		BandEnd:      0.7,
		BassSwing:    20,
		TrebleSwing:  10,
		MidSwing:     15,
		Jitter:       2,
		TimeStep:     0.015,
		StrokeWeight: 1.5,
		StarCount:    80,
	}
}

// Scaled returns a copy with every pixel-unit distance multiplied by f.
// The terminal canvas has far fewer dots than a browser window has pixels.
func (c Config) Scaled(f float64) Config {
	c.LineSpacing *= f
	c.Amplitude *= f
	c.BassSwing *= f
	c.TrebleSwing *= f
	c.MidSwing *= f
	c.Jitter *= f
	stride := int(math.Round(float64(c.Stride) * f))
	if stride < 1 {
		stride = 1
	}
	c.Stride = stride
	return c
}

// Validate reports the first setting that would break the trail.
func (c Config) Validate() error {
	switch {
	case c.Lines < 1:
		return fmt.Errorf("lines must be at least 1, got %d", c.Lines)
	case c.Stride < 1:
		return fmt.Errorf("stride must be at least 1, got %d", c.Stride)
	case c.DecayRate <= 0 || c.DecayRate >= 1:
		return fmt.Errorf("decay rate must be in (0,1), got %g", c.DecayRate)
	case c.BandStart < 0 || c.BandEnd > 1 || c.BandStart >= c.BandEnd:
		return errors.New("reactive band must satisfy 0 <= start < end <= 1")
	case c.StarCount < 0:
		return fmt.Errorf("star count must not be negative, got %d", c.StarCount)
	}
	return nil
}
