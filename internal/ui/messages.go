package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/wavetrail/internal/player"
)

type frameMsg time.Time

// playbackEndedMsg reports that the Done channel it was armed with fired.
type playbackEndedMsg struct {
	done <-chan struct{}
}

type trackLoadedMsg struct {
	seq    int
	path   string
	player Playback
	meta   player.Metadata
	err    error
}

// BrowserSelectedMsg is sent when the user picks a file in the browser.
type BrowserSelectedMsg struct {
	Path string
}

// BrowserCancelledMsg is sent when the user leaves the browser.
type BrowserCancelledMsg struct{}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(max(fps, 1)), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return playbackEndedMsg{done: done}
	}
}

func loadTrackCmd(load Loader, seq int, path string, volume float64) tea.Cmd {
	return func() tea.Msg {
		p, meta, err := load(path, volume)
		return trackLoadedMsg{seq: seq, path: path, player: p, meta: meta, err: err}
	}
}
