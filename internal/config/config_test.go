package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("fps: 24\nlines: 30\nstars: true\ndecay_rate: 0.1\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.FPS != 24 || cfg.Lines != 30 || !cfg.Stars || cfg.DecayRate != 0.1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Amplitude != Default().Amplitude {
		t.Fatalf("expected default amplitude, got %v", cfg.Amplitude)
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestParseZeroValueOverridesDefault(t *testing.T) {
	cfg, err := Parse(strings.NewReader("stars: false\nbaseline: 0\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Baseline != 0 {
		t.Fatalf("expected explicit zero baseline, got %v", cfg.Baseline)
	}
	if cfg.FPS != DefaultFPS {
		t.Fatalf("expected absent fps to keep %d, got %d", DefaultFPS, cfg.FPS)
	}
}

func TestDefaultFrameRate(t *testing.T) {
	if got := Default().FPS; got != 60 {
		t.Fatalf("Default().FPS = %d, want 60", got)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse(strings.NewReader("colour: red\n")); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	tests := []string{
		"fps: 0\n",
		"scale: -1\n",
		"initial_volume: 2\n",
		"decay_rate: 0\n",
		"lines: 0\n",
	}
	for _, in := range tests {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}

func TestVisualAppliesScale(t *testing.T) {
	cfg := Default()
	cfg.Scale = 0.5
	v := cfg.Visual()
	if v.Amplitude != cfg.Amplitude*0.5 {
		t.Fatalf("Amplitude = %v, want %v", v.Amplitude, cfg.Amplitude*0.5)
	}
	if v.Lines != cfg.Lines {
		t.Fatalf("Lines = %d, want %d", v.Lines, cfg.Lines)
	}
	if v.Stride < 1 {
		t.Fatalf("Stride = %d", v.Stride)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("star_count: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StarCount != 10 {
		t.Fatalf("StarCount = %d, want 10", cfg.StarCount)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit path")
	}
}

func TestLoadDefaultPathMissingFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
