package visualizer

import (
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

type star struct {
	x, y   float64 // normalised position in [0,1)
	phase  float64
	speed  float64
	bright float64
}

// Starfield is a slowly drifting set of twinkling points behind the trail.
type Starfield struct {
	stars []star
	t     float64
	boost float64
}

// NewStarfield scatters n stars using rng.
func NewStarfield(n int, rng *rand.Rand) *Starfield {
	sf := &Starfield{stars: make([]star, n)}
	for i := range sf.stars {
		sf.stars[i] = star{
			x:      uniform(rng),
			y:      uniform(rng),
			phase:  uniform(rng) * 2 * math.Pi,
			speed:  0.2 + 0.8*uniform(rng),
			bright: 0.25 + 0.35*uniform(rng),
		}
	}
	return sf
}

// Len returns the number of stars.
func (sf *Starfield) Len() int { return len(sf.stars) }

// Step drifts the stars left, faster with more treble, and brightens them
// with the smoothed volume.
func (sf *Starfield) Step(treble, volume float64) {
	drift := 0.0004 * (1 + mapRange(treble, 0, 255, 0, 3))
	if math.IsNaN(drift) || drift < 0 {
		drift = 0.0004
	}
	for i := range sf.stars {
		s := &sf.stars[i]
		s.x -= drift * s.speed
		if s.x < 0 {
			s.x += 1
		}
	}
	sf.t += 0.05
	sf.boost = clamp01(volume) * 0.3
}

// Brightness returns the current lightness of star i in [0,1].
func (sf *Starfield) Brightness(i int) float64 {
	s := sf.stars[i]
	twinkle := 0.15 * math.Sin(sf.t*s.speed*3+s.phase)
	return clamp01(s.bright + twinkle + sf.boost)
}

// Draw plots every star as a single point tinted toward hue.
func (sf *Starfield) Draw(s Surface, hue float64) {
	w, h := s.Size()
	s.SetStrokeWeight(1)
	for i, st := range sf.stars {
		b := sf.Brightness(i)
		s.SetStroke(colorful.Hsl(hue, 0.25, 0.55+0.4*b), b)
		s.Point(st.x*float64(w), st.y*float64(h))
	}
}
