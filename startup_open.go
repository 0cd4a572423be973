package main

import (
	"github.com/olivier-w/wavetrail/internal/ui"
)

// buildPlaybackModel resolves path into a queue and returns the player
// screen for it. Audio is opened asynchronously by the model itself.
func buildPlaybackModel(path string, opts ui.Options) (ui.Model, error) {
	q, err := ui.QueueFor(path)
	if err != nil {
		return ui.Model{}, err
	}
	return ui.New(opts, q), nil
}
