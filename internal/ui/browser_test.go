package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEmbeddedBrowserFileSelectionReturnsMessage(t *testing.T) {
	restore := chdirTemp(t, map[string]string{
		"song.mp3": "data",
	})
	defer restore()

	m := NewEmbeddedBrowser()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}

	msg := cmd()
	selected, ok := msg.(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", msg)
	}
	if selected.Path != "song.mp3" {
		t.Fatalf("expected song.mp3, got %q", selected.Path)
	}
}

func TestEmbeddedBrowserCancelReturnsMessage(t *testing.T) {
	restore := chdirTemp(t, map[string]string{})
	defer restore()

	m := NewEmbeddedBrowser()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected cancel command")
	}

	if _, ok := cmd().(BrowserCancelledMsg); !ok {
		t.Fatalf("expected BrowserCancelledMsg, got %T", cmd())
	}
}

func TestBrowserListsAudioAndPlaylists(t *testing.T) {
	restore := chdirTemp(t, map[string]string{
		"track.flac": "data",
		"mix.m3u":    "data",
		"notes.txt":  "data",
		"clip.aac":   "data",
	})
	defer restore()

	m := NewEmbeddedBrowser()

	names := map[string]bool{}
	for _, item := range m.list.Items() {
		if file, ok := item.(fileItem); ok {
			names[file.name+file.ext] = true
		}
	}
	if !names["track.flac"] || !names["mix.m3u"] {
		t.Fatalf("expected audio and playlist entries, got %v", names)
	}
	if names["notes.txt"] || names["clip.aac"] {
		t.Fatalf("expected unsupported files hidden, got %v", names)
	}
}

func TestQueueForSingleFileAndSiblings(t *testing.T) {
	restore := chdirTemp(t, map[string]string{"b.mp3": "x", "a.wav": "x"})
	defer restore()

	q, err := QueueFor("b.mp3")
	if err != nil {
		t.Fatalf("QueueFor() error = %v", err)
	}
	if q.Len() != 2 || q.Current().Title != "b" {
		t.Fatalf("unexpected queue len=%d current=%+v", q.Len(), q.Current())
	}

	if _, err := QueueFor("a.txt"); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestQueueForRejectsUnsupported(t *testing.T) {
	restore := chdirTemp(t, map[string]string{"notes.txt": "x"})
	defer restore()

	if _, err := QueueFor("notes.txt"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func chdirTemp(t *testing.T, files map[string]string) func() {
	t.Helper()

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir temp dir: %v", err)
	}

	return func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	}
}
