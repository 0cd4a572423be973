package player

import (
	"encoding/binary"
	"sync"
)

// sampleTap keeps the most recent PCM frames handed to the audio device so
// the render loop can analyse what is playing. It is written from oto's
// reader goroutine and read from the UI goroutine.
type sampleTap struct {
	mu       sync.Mutex
	buf      []int16 // interleaved stereo
	frames   int     // capacity in frames
	w        int     // next frame slot
	filled   int
	carry    []byte // odd trailing bytes of the last write
	channels int
}

func newSampleTap(frames, channels int) *sampleTap {
	return &sampleTap{
		buf:      make([]int16, frames*channels),
		frames:   frames,
		channels: channels,
	}
}

// Write records little-endian int16 PCM, overwriting the oldest frames.
func (t *sampleTap) Write(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	frameSize := t.channels * 2
	if len(t.carry) > 0 {
		p = append(t.carry, p...)
		t.carry = nil
	}
	whole := len(p) / frameSize * frameSize
	if rest := p[whole:]; len(rest) > 0 {
		t.carry = append([]byte(nil), rest...)
	}

	for off := 0; off < whole; off += frameSize {
		base := t.w * t.channels
		for ch := range t.channels {
			t.buf[base+ch] = int16(binary.LittleEndian.Uint16(p[off+ch*2:]))
		}
		t.w = (t.w + 1) % t.frames
		if t.filled < t.frames {
			t.filled++
		}
	}
}

// Latest returns up to n frames ending lag frames before the newest one, in
// chronological order.
func (t *sampleTap) Latest(n, lag int) []int16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	lag = max(lag, 0)
	avail := t.filled - lag
	if n > avail {
		n = avail
	}
	if n <= 0 {
		return nil
	}

	out := make([]int16, n*t.channels)
	start := (t.w - lag - n + 2*t.frames) % t.frames
	for i := range n {
		src := ((start + i) % t.frames) * t.channels
		copy(out[i*t.channels:], t.buf[src:src+t.channels])
	}
	return out
}

// Clear forgets everything recorded so far.
func (t *sampleTap) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w = 0
	t.filled = 0
	t.carry = nil
}
