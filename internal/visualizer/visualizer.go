package visualizer

import (
	"math/rand/v2"

	"github.com/olivier-w/wavetrail/internal/analysis"
)

// Smoothing factors of the one-pole filters applied to each raw reading.
const (
	VolumeAlpha = 0.15
	BassAlpha   = 0.12
	TrebleAlpha = 0.10
)

// Visualizer owns all per-instance trail state: the history, the smoothed
// audio metrics, the rotating hue and the optional starfield. It is not safe
// for concurrent use; drive it from a single render loop.
type Visualizer struct {
	cfg     Config
	rng     *rand.Rand
	history *History
	stars   *Starfield

	volume analysis.Smoother
	bass   analysis.Smoother
	treble analysis.Smoother

	hue    float64
	width  int
	height int
}

// New creates a visualizer for a surface of the given size. rng seeds the
// jitter and starfield; nil uses a randomly seeded source.
func New(cfg Config, width, height int, rng *rand.Rand) *Visualizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	v := &Visualizer{
		cfg:    cfg,
		rng:    rng,
		volume: analysis.NewSmoother(VolumeAlpha),
		bass:   analysis.NewSmoother(BassAlpha),
		treble: analysis.NewSmoother(TrebleAlpha),
		width:  width,
		height: height,
	}
	v.history = NewHistory(cfg, width, rng)
	if cfg.Stars && cfg.StarCount > 0 {
		v.stars = NewStarfield(cfg.StarCount, rng)
	}
	return v
}

// Config returns the visualizer's configuration.
func (v *Visualizer) Config() Config { return v.cfg }

// History exposes the trail for inspection.
func (v *Visualizer) History() *History { return v.history }

// Hue returns the current background hue in degrees.
func (v *Visualizer) Hue() float64 { return v.hue }

// Smoothed returns the filtered volume, bass and treble.
func (v *Visualizer) Smoothed() (volume, bass, treble float64) {
	return v.volume.Value(), v.bass.Value(), v.treble.Value()
}

// Size returns the surface size the trail was built for.
func (v *Visualizer) Size() (width, height int) { return v.width, v.height }

// Resize rebuilds the history for a new surface size. Existing rows are
// discarded.
func (v *Visualizer) Resize(width, height int) {
	v.width = width
	v.height = height
	v.history.Resize(width)
}

// Reset clears the trail and the smoothed metrics. Call it on stop and on
// track change.
func (v *Visualizer) Reset() {
	v.history.Resize(v.width)
	v.volume.Reset()
	v.bass.Reset()
	v.treble.Reset()
}

// StarsEnabled reports whether the starfield is drawn.
func (v *Visualizer) StarsEnabled() bool { return v.stars != nil }

// SetStars turns the starfield on or off. Turning it on again starts a
// fresh field.
func (v *Visualizer) SetStars(on bool) {
	switch {
	case !on:
		v.stars = nil
	case v.stars == nil:
		n := v.cfg.StarCount
		if n <= 0 {
			n = DefaultConfig().StarCount
		}
		v.stars = NewStarfield(n, v.rng)
	}
	v.cfg.Stars = on
}

// Step consumes one raw reading: it smooths volume, bass and treble,
// advances the trail and rotates the hue. Mid is used unsmoothed.
func (v *Visualizer) Step(f Frame) {
	vol := v.volume.Update(f.Volume)
	bass := v.bass.Update(f.Bass)
	treble := v.treble.Update(f.Treble)

	v.history.Advance(Frame{
		Spectrum: f.Spectrum,
		Bass:     bass,
		Treble:   treble,
		Mid:      f.Mid,
		Volume:   vol,
	})
	if v.stars != nil {
		v.stars.Step(treble, vol)
	}
	v.hue = NextHue(v.hue, HueStep(treble))
}

// Idle advances a frame without audio: the trail is left untouched and the
// background keeps rotating at its slowest rate.
func (v *Visualizer) Idle() {
	if v.stars != nil {
		v.stars.Step(0, 0)
	}
	v.hue = NextHue(v.hue, HueStep(0))
}

// Draw paints the background, the trail and then the stars into the gaps
// the trail leaves, so the stars sit behind every row.
func (v *Visualizer) Draw(s Surface) {
	top, bottom := BackgroundColors(v.hue)
	s.FillGradient(top, bottom)
	Render(s, v.history, v.cfg, RenderState{Hue: v.hue, Bass: v.bass.Value()})
	if v.stars != nil {
		v.stars.Draw(s, v.hue)
	}
}

// DrawBackground paints only the gradient and stars; used while no track is
// loaded.
func (v *Visualizer) DrawBackground(s Surface) {
	top, bottom := BackgroundColors(v.hue)
	s.FillGradient(top, bottom)
	if v.stars != nil {
		v.stars.Draw(s, v.hue)
	}
}
