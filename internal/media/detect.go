package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of playable formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// ScanDir returns the supported audio files in dir as absolute paths,
// sorted case-insensitively by name.
func ScanDir(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExt(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(abs, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files, nil
}

// Siblings returns the audio files next to path and the index of path among
// them. It returns nil when path has no playable siblings.
func Siblings(path string) ([]string, int) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, -1
	}
	files, err := ScanDir(filepath.Dir(abs))
	if err != nil || len(files) < 2 {
		return nil, -1
	}
	for i, f := range files {
		if f == abs {
			return files, i
		}
	}
	return nil, -1
}
