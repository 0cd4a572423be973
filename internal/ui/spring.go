package ui

import "github.com/charmbracelet/harmonica"

// springValue eases a displayed number toward its target once per frame.
type springValue struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newSpringValue(fps int, frequency, damping float64) springValue {
	return springValue{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// Set jumps to v without animating.
func (s *springValue) Set(v float64) {
	s.pos = v
	s.vel = 0
}

// Step advances one frame toward target and returns the new position.
func (s *springValue) Step(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}

// Value returns the current position.
func (s springValue) Value() float64 { return s.pos }
