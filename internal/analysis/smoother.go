package analysis

// Smoother is a one-pole low-pass filter:
//
//	value += alpha * (raw - value)
//
// evaluated once per frame. It decouples visual motion from per-frame jitter
// in the raw readings.
type Smoother struct {
	alpha float64
	value float64
}

// NewSmoother returns a smoother starting at zero.
func NewSmoother(alpha float64) Smoother {
	return Smoother{alpha: alpha}
}

// Update feeds one raw reading and returns the new smoothed value.
func (s *Smoother) Update(raw float64) float64 {
	s.value += s.alpha * (raw - s.value)
	return s.value
}

// Value returns the current smoothed value.
func (s *Smoother) Value() float64 { return s.value }

// Alpha returns the filter coefficient.
func (s *Smoother) Alpha() float64 { return s.alpha }

// Reset returns the filter to zero.
func (s *Smoother) Reset() { s.value = 0 }
