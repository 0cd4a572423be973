package media

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// IsPlaylistExt returns true if the extension is a playlist format.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

// ParsePlaylist reads a local .m3u/.m3u8/.pls file and returns the playable
// entries it lists. Relative entries resolve against the playlist's
// directory; URLs, missing files and unsupported formats are skipped.
func ParsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	baseDir := filepath.Dir(abs)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var raw []string
	if ext == ".pls" {
		raw = parsePLS(scanner)
	} else {
		raw = parseM3U(scanner)
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if strings.Contains(entry, "://") {
			continue
		}
		p := resolveEntry(entry, baseDir)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func parseM3U(scanner *bufio.Scanner) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, strings.Trim(line, `"`))
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner) []string {
	var entries []string
	for scanner.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if val == "" || !isPLSFileKey(key) {
			continue
		}
		entries = append(entries, val)
	}
	return entries
}

// isPLSFileKey matches File1, File2, ... case-insensitively.
func isPLSFileKey(key string) bool {
	if len(key) <= len("file") || !strings.EqualFold(key[:4], "file") {
		return false
	}
	for _, r := range key[4:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func resolveEntry(raw, baseDir string) string {
	p := filepath.Clean(filepath.FromSlash(raw))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
