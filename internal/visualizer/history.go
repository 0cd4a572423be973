package visualizer

import "math/rand/v2"

// History is the rolling waveform trail: a fixed-capacity ring of rows,
// newest first. Pushing into a full history evicts the oldest row.
type History struct {
	cfg   Config
	rng   *rand.Rand
	frame int

	rows  []Row
	head  int // slot of the newest row
	count int
	width int
}

// NewHistory creates a history of cfg.Lines zero rows of the given width.
func NewHistory(cfg Config, width int, rng *rand.Rand) *History {
	h := &History{cfg: cfg, rng: rng}
	h.Resize(width)
	return h
}

// Resize discards the trail and refills it with zero rows of the new width.
func (h *History) Resize(width int) {
	if width < 0 {
		width = 0
	}
	capacity := h.cfg.Lines
	if capacity < 1 {
		capacity = 1
	}
	h.width = width
	h.rows = make([]Row, capacity)
	for i := range h.rows {
		h.rows[i] = NewRow(width, h.cfg.Stride)
	}
	h.head = 0
	h.count = capacity
}

// Len returns the number of rows currently held.
func (h *History) Len() int { return h.count }

// Cap returns the maximum number of rows.
func (h *History) Cap() int { return len(h.rows) }

// Width returns the surface width rows are sampled across.
func (h *History) Width() int { return h.width }

// Frame returns how many times Advance has run.
func (h *History) Frame() int { return h.frame }

// At returns row i, where 0 is the newest.
func (h *History) At(i int) Row {
	return h.rows[(h.head+i)%len(h.rows)]
}

// Push inserts r as the newest row.
func (h *History) Push(r Row) {
	h.head = (h.head - 1 + len(h.rows)) % len(h.rows)
	h.rows[h.head] = r
	if h.count < len(h.rows) {
		h.count++
	}
}

// Decay pulls every row except the newest toward zero by rate.
func (h *History) Decay(rate float64) {
	for i := 1; i < h.count; i++ {
		samples := h.At(i).Samples
		for j, v := range samples {
			samples[j] = v + rate*(0-v)
		}
	}
}

// Advance derives a row from f, pushes it and decays the older rows.
func (h *History) Advance(f Frame) {
	t := float64(h.frame) * h.cfg.TimeStep
	h.Push(GenerateRow(h.cfg, h.width, f, t, h.rng))
	h.Decay(h.cfg.DecayRate)
	h.frame++
}
