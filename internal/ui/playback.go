package ui

import (
	"time"

	"github.com/olivier-w/wavetrail/internal/player"
)

// Playback is the part of the audio player the model drives.
type Playback interface {
	TogglePause()
	Paused() bool
	Stop() error
	Restart() error
	Seek(delta time.Duration) error
	AdjustVolume(delta float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
	Done() <-chan struct{}
	Samples(frames int) []int16
	SampleRate() int
	Close()
}

// Loader opens path for playback at the given volume. It runs off the
// Update loop.
type Loader func(path string, volume float64) (Playback, player.Metadata, error)

// PlayerLoader opens files with the system audio player.
func PlayerLoader(path string, volume float64) (Playback, player.Metadata, error) {
	p, err := player.New(path, volume)
	if err != nil {
		return nil, player.Metadata{}, err
	}
	return p, player.ReadMetadata(path), nil
}
