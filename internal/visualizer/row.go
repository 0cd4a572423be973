package visualizer

import (
	"math"
	"math/rand/v2"
)

// Row is one frame's vertical displacement of the waveform, sampled every
// Stride pixels across a surface Width pixels wide. Negative values point up.
type Row struct {
	Width   int
	Stride  int
	Samples []float64
}

// NewRow returns a zero-filled row for the given width.
func NewRow(width, stride int) Row {
	if stride < 1 {
		stride = 1
	}
	n := 0
	if width > 0 {
		n = (width + stride - 1) / stride
	}
	return Row{Width: width, Stride: stride, Samples: make([]float64, n)}
}

// X returns the horizontal position of sample k.
func (r Row) X(k int) int { return k * r.Stride }

// Frame is one analysis reading handed to the trail. Spectrum magnitudes and
// band energies are in [0,255]; Volume is the playback volume in [0,1].
type Frame struct {
	Spectrum []uint8
	Bass     float64
	Treble   float64
	Mid      float64
	Volume   float64
}

// Envelope weights audio displacement across the width: zero outside the
// reactive band, a half-sine bell inside it.
func Envelope(cfg Config, x, width float64) float64 {
	start := width * cfg.BandStart
	end := width * cfg.BandEnd
	if x <= start || x >= end {
		return 0
	}
	return math.Sin((x - start) / (end - start) * math.Pi)
}

// GenerateRow derives a new row from the current frame. t is the
// frame-relative time; rng supplies the texture jitter and may be nil.
func GenerateRow(cfg Config, width int, f Frame, t float64, rng *rand.Rand) Row {
	row := NewRow(width, cfg.Stride)
	if width <= 0 {
		return row
	}

	amplitude := cfg.Amplitude * (1 + cfg.VolumeWeight*f.Volume)
	bins := len(f.Spectrum)
	w := float64(width)

	for k := range row.Samples {
		x := float64(row.X(k))
		env := Envelope(cfg, x, w)
		if env == 0 {
			continue
		}

		var value float64
		if bins > 0 {
			bin := int(math.Floor(x / w * float64(bins)))
			bin = clampInt(bin, 0, bins-1)
			value = float64(f.Spectrum[bin]) / 255 * amplitude
		}

		bassWave := math.Sin(t*0.8+x*0.002) * f.Bass / 255 * cfg.BassSwing
		trebleWave := math.Sin(t*2.0+x*0.007) * f.Treble / 255 * cfg.TrebleSwing
		midWave := math.Cos(t+x*0.005) * f.Mid / 255 * cfg.MidSwing
		oscillation := (bassWave + trebleWave + midWave) * env

		noise := (uniform(rng)*2 - 1) * cfg.Jitter * env

		row.Samples[k] = -(value*env + oscillation + noise)
	}
	return row
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
