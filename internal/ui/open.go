package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olivier-w/wavetrail/internal/media"
	"github.com/olivier-w/wavetrail/internal/player"
	"github.com/olivier-w/wavetrail/internal/queue"
)

// QueueFor turns a path from the command line or the browser into a play
// queue. Playlists expand to their entries; a single file brings the
// playable files of its directory along, starting at itself.
func QueueFor(path string) (*queue.Queue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ext := filepath.Ext(path)
	var files []string
	start := 0
	switch {
	case media.IsPlaylistExt(ext):
		files, err = media.ParsePlaylist(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, errors.New("playlist contains no playable entries")
		}
	case media.IsSupportedExt(ext):
		if siblings, idx := media.Siblings(path); siblings != nil {
			files, start = siblings, idx
		} else {
			files = []string{path}
		}
	default:
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	tracks := make([]queue.Track, len(files))
	for i, f := range files {
		tracks[i] = queue.Track{Title: player.TitleFromPath(f), Path: f}
	}
	q := queue.New(tracks)
	q.SetCurrentIndex(start)
	return q, nil
}
