package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// FFTSize is the number of mono frames per analysis window.
	FFTSize = 1024
	// Bins is the number of magnitudes in a spectrum.
	Bins = FFTSize / 2

	defaultSmoothing = 0.8
	minDecibels      = -100.0
	maxDecibels      = -30.0
)

// Band is a named frequency range in Hz.
type Band struct {
	Name string
	Low  float64
	High float64
}

var (
	Bass    = Band{Name: "bass", Low: 20, High: 140}
	LowMid  = Band{Name: "lowMid", Low: 140, High: 400}
	Mid     = Band{Name: "mid", Low: 400, High: 2600}
	HighMid = Band{Name: "highMid", Low: 2600, High: 5200}
	Treble  = Band{Name: "treble", Low: 5200, High: 14000}
)

// Analyzer turns interleaved stereo int16 PCM into a byte spectrum and
// per-band energies, all in [0,255]. Magnitudes are averaged over time so
// the spectrum moves smoothly between calls.
type Analyzer struct {
	sampleRate float64
	smoothing  float64
	window     []float64
	frame      []float64
	mags       []float64
	spectrum   []uint8
}

// NewAnalyzer creates an analyzer for audio at the given sample rate.
func NewAnalyzer(sampleRate int) *Analyzer {
	a := &Analyzer{
		sampleRate: float64(sampleRate),
		smoothing:  defaultSmoothing,
		window:     make([]float64, FFTSize),
		frame:      make([]float64, FFTSize),
		mags:       make([]float64, Bins),
		spectrum:   make([]uint8, Bins),
	}
	for i := range a.window {
		a.window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(FFTSize-1)))
	}
	return a
}

// Analyze processes the most recent FFTSize frames of samples (stereo,
// interleaved) and returns the updated spectrum. Missing frames count as
// silence, so an empty slice lets the spectrum decay. The returned slice is
// reused by the next call.
func (a *Analyzer) Analyze(samples []int16) []uint8 {
	frames := len(samples) / 2
	offset := frames - FFTSize

	for i := range FFTSize {
		src := offset + i
		var v float64
		if src >= 0 {
			l := float64(samples[src*2])
			r := float64(samples[src*2+1])
			v = (l + r) / 65536.0
		}
		a.frame[i] = v * a.window[i]
	}

	coeffs := fft.FFTReal(a.frame)

	for k := range Bins {
		mag := cmplx.Abs(coeffs[k]) / FFTSize
		a.mags[k] = a.smoothing*a.mags[k] + (1-a.smoothing)*mag
		a.spectrum[k] = toByte(a.mags[k])
	}
	return a.spectrum
}

func toByte(mag float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	scaled := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
	switch {
	case math.IsNaN(scaled) || scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	}
	return uint8(scaled)
}

// Spectrum returns the last computed spectrum.
func (a *Analyzer) Spectrum() []uint8 { return a.spectrum }

// Energy returns the mean spectrum magnitude over the band, in [0,255].
func (a *Analyzer) Energy(b Band) float64 {
	nyquist := a.sampleRate / 2
	if nyquist <= 0 {
		return 0
	}
	lo := int(math.Round(b.Low / nyquist * Bins))
	hi := int(math.Round(b.High / nyquist * Bins))
	if lo > hi {
		lo, hi = hi, lo
	}
	lo = max(lo, 0)
	hi = min(hi, Bins-1)
	if lo > hi {
		return 0
	}

	var total float64
	for i := lo; i <= hi; i++ {
		total += float64(a.spectrum[i])
	}
	return total / float64(hi-lo+1)
}

// Reset clears the time-averaged magnitudes.
func (a *Analyzer) Reset() {
	clear(a.mags)
	clear(a.spectrum)
}
