package visualizer

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	newestOpacity   = 1.0
	oldestOpacity   = 0.12
	newestLightness = 0.90
	oldestLightness = 0.35
	strokeSat       = 0.85

	minHueStep = 0.08
	maxHueStep = 0.15
)

// RowStyle is the stroke appearance of one row of the trail.
type RowStyle struct {
	Opacity   float64
	Lightness float64
}

// StyleFor returns the style of row i out of n. Older rows are fainter and
// darker.
func StyleFor(i, n int) RowStyle {
	if n <= 0 {
		return RowStyle{Opacity: newestOpacity, Lightness: newestLightness}
	}
	t := float64(i) / float64(n)
	return RowStyle{
		Opacity:   lerp(newestOpacity, oldestOpacity, t),
		Lightness: lerp(newestLightness, oldestLightness, t),
	}
}

// StrokeColor returns the row colour at the given hue in degrees.
func (s RowStyle) StrokeColor(hue float64) colorful.Color {
	return colorful.Hsl(hue, strokeSat, s.Lightness)
}

// StrokeWeight scales base by the smoothed bass energy into [0.8x, 1.5x].
func StrokeWeight(base, bass float64) float64 {
	return base * mapRange(bass, 0, 255, 0.8, 1.5)
}

// BackgroundColors returns the top and bottom colours of the gradient: the
// hue and its complement at two darkness levels.
func BackgroundColors(hue float64) (top, bottom colorful.Color) {
	top = colorful.Hsl(wrapHue(hue), 0.20, 0.15)
	bottom = colorful.Hsl(wrapHue(hue+180), 0.20, 0.08)
	return top, bottom
}

// HueStep is the per-frame hue rotation for a smoothed treble energy.
func HueStep(treble float64) float64 {
	step := mapRange(treble, 0, 255, minHueStep, maxHueStep)
	if math.IsNaN(step) || step < 0 {
		return minHueStep
	}
	return step
}

// NextHue rotates hue by step, keeping the result in [0,360).
func NextHue(hue, step float64) float64 {
	return wrapHue(hue + step)
}

func wrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// mapRange linearly maps v from [inLo,inHi] to [outLo,outHi] without clamping.
func mapRange(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (v-inLo)/(inHi-inLo)*(outHi-outLo)
}
