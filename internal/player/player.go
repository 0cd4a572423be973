package player

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	bytesPerSec = playbackSampleRate * playbackFrameSize
	tapFrames   = 1 << 15
	otoBuffer   = 80 * time.Millisecond
)

// countingReader tracks how many bytes the audio device has pulled and
// copies them into the sample tap.
type countingReader struct {
	reader io.Reader
	tap    *sampleTap
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	if n > 0 && cr.tap != nil {
		cr.tap.Write(p[:n])
	}
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player plays one audio file and exposes the samples it is playing.
type Player struct {
	file        *os.File
	decoder     audioDecoder
	counter     *countingReader
	tap         *sampleTap
	otoCtx      *oto.Context
	otoPlayer   *oto.Player
	bytesPerSec int64
	canSeek     bool
	duration    time.Duration
	volume      float64
	paused      bool
	done        chan struct{}
	stopMon     chan struct{}
	mu          sync.Mutex
	closed      bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   otoBuffer,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New opens path, starts playback at the given volume and returns the
// player. The caller must Close it.
func New(path string, volume float64) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	raw, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	dec, err := newNormalizedDecoder(raw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("preparing %s: %w", path, err)
	}

	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	tap := newSampleTap(tapFrames, playbackChannels)
	p := &Player{
		file:        f,
		decoder:     dec,
		counter:     &countingReader{reader: dec, tap: tap},
		tap:         tap,
		otoCtx:      ctx,
		bytesPerSec: bytesPerSec,
		canSeek:     true,
		duration:    time.Duration(float64(dec.Length()) / bytesPerSec * float64(time.Second)),
		volume:      clampVolume(volume),
		done:        make(chan struct{}),
		stopMon:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(p.done, p.stopMon)
	return p, nil
}

func (p *Player) monitor(done, stop chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		p.mu.Lock()
		if p.done != done {
			p.mu.Unlock()
			return
		}
		finished := !p.paused && p.counter.Pos() >= p.decoder.Length() && p.bufferedLocked() == 0
		if finished {
			p.closeDoneLocked()
		}
		p.mu.Unlock()
		if finished {
			return
		}
	}
}

func (p *Player) closeDoneLocked() {
	if p.done != nil && !p.doneFiredLocked() {
		close(p.done)
	}
}

func (p *Player) bufferedLocked() int {
	if p.otoPlayer == nil {
		return 0
	}
	return p.otoPlayer.BufferedSize()
}

// Done returns a channel closed when the track plays to its end or the
// player is closed.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart rewinds and resumes playback, re-arming Done.
func (p *Player) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("player closed")
	}

	if err := p.seekLocked(0, true); err != nil {
		return err
	}
	p.restartMonitorLocked()
	return nil
}

func (p *Player) restartMonitorLocked() {
	if p.stopMon != nil {
		close(p.stopMon)
	}
	p.closeDoneLocked()
	p.done = make(chan struct{})
	p.stopMon = make(chan struct{})
	go p.monitor(p.done, p.stopMon)
}

// Play resumes playback. If the track had already ended, Done is re-armed
// with a fresh channel.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Play()
	}
	p.paused = false
	if p.done != nil && p.doneFiredLocked() {
		p.restartMonitorLocked()
	}
}

func (p *Player) doneFiredLocked() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Pause halts playback without rewinding.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	p.paused = true
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	if p.Paused() {
		p.Play()
		return
	}
	p.Pause()
}

// Stop pauses and rewinds to the start.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seekLocked(0, false)
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the playback position, excluding audio still queued in
// the device buffer.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bytesPerSec == 0 || p.counter == nil {
		return 0
	}
	pos := p.counter.Pos() - int64(p.bufferedLocked())
	pos = max(pos, 0)
	return time.Duration(float64(pos) / float64(p.bytesPerSec) * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by delta from the current position.
func (p *Player) Seek(delta time.Duration) error {
	target := p.Position() + delta
	return p.SeekTo(target, !p.Paused())
}

// SeekTo jumps to target and resumes playback if resume is set.
func (p *Player) SeekTo(target time.Duration, resume bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.canSeek {
		return fmt.Errorf("seeking not supported")
	}
	return p.seekLocked(target, resume)
}

func (p *Player) seekLocked(target time.Duration, resume bool) error {
	offset := clampSeekByteOffset(target, p.bytesPerSec, p.decoder.Length(), playbackFrameSize)
	if _, err := p.decoder.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	p.counter.SetPos(offset)
	if p.tap != nil {
		p.tap.Clear()
	}

	// A fresh oto player drops whatever the old one had buffered.
	if p.otoCtx != nil {
		if p.otoPlayer != nil {
			p.otoPlayer.Pause()
			p.otoPlayer.Close()
		}
		p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
		p.otoPlayer.SetVolume(p.volume)
		if resume {
			p.otoPlayer.Play()
		}
	}
	p.paused = !resume
	return nil
}

// clampSeekByteOffset converts target to a byte offset inside [0,length],
// aligned down to a frame boundary.
func clampSeekByteOffset(target time.Duration, bytesPerSec, length int64, frameSize int64) int64 {
	off := int64(target.Seconds() * float64(bytesPerSec))
	off = min(max(off, 0), length)
	return off - off%frameSize
}

// Volume returns the current volume in [0,1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets the volume, clamped to [0,1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// AdjustVolume changes the volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.SetVolume(p.Volume() + delta)
}

func clampVolume(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Samples returns up to frames stereo frames of what is currently audible,
// interleaved. It returns nil while paused.
func (p *Player) Samples(frames int) []int16 {
	p.mu.Lock()
	paused := p.paused
	lag := p.bufferedLocked() / playbackFrameSize
	p.mu.Unlock()
	if paused || p.tap == nil {
		return nil
	}
	return p.tap.Latest(frames, lag)
}

// SampleRate returns the rate of the samples returned by Samples.
func (p *Player) SampleRate() int { return playbackSampleRate }

// Close stops playback and releases the file.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.stopMon != nil {
		close(p.stopMon)
	}
	p.closeDoneLocked()
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.otoPlayer.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
}
