package ui

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/wavetrail/internal/analysis"
	"github.com/olivier-w/wavetrail/internal/player"
	"github.com/olivier-w/wavetrail/internal/queue"
	"github.com/olivier-w/wavetrail/internal/visualizer"
)

type fakePlayback struct {
	paused   bool
	volume   float64
	pos      time.Duration
	dur      time.Duration
	done     chan struct{}
	samples  []int16
	stops    int
	restarts int
	seeks    []time.Duration
	closed   bool
}

func newFakePlayback() *fakePlayback {
	return &fakePlayback{volume: 0.8, dur: 3 * time.Minute, done: make(chan struct{})}
}

func (f *fakePlayback) TogglePause() {
	f.paused = !f.paused
	if !f.paused {
		select {
		case <-f.done:
			f.done = make(chan struct{})
		default:
		}
	}
}
func (f *fakePlayback) Paused() bool { return f.paused }
func (f *fakePlayback) Stop() error {
	f.stops++
	f.paused = true
	f.pos = 0
	return nil
}
func (f *fakePlayback) Restart() error {
	f.restarts++
	f.paused = false
	f.pos = 0
	f.done = make(chan struct{})
	return nil
}
func (f *fakePlayback) Seek(d time.Duration) error {
	f.seeks = append(f.seeks, d)
	f.pos = max(f.pos+d, 0)
	return nil
}
func (f *fakePlayback) AdjustVolume(d float64)     { f.volume = min(max(f.volume+d, 0), 1) }
func (f *fakePlayback) Volume() float64            { return f.volume }
func (f *fakePlayback) Position() time.Duration    { return f.pos }
func (f *fakePlayback) Duration() time.Duration    { return f.dur }
func (f *fakePlayback) Done() <-chan struct{}      { return f.done }
func (f *fakePlayback) Samples(frames int) []int16 { return f.samples }
func (f *fakePlayback) SampleRate() int            { return 44100 }
func (f *fakePlayback) Close()                     { f.closed = true }

func testQueue(n int) *queue.Queue {
	tracks := make([]queue.Track, n)
	for i := range tracks {
		tracks[i] = queue.Track{Title: string(rune('A' + i)), Path: string(rune('a'+i)) + ".mp3"}
	}
	return queue.New(tracks)
}

func testModel(q *queue.Queue) Model {
	cfg := visualizer.DefaultConfig().Scaled(0.25)
	return New(Options{
		FPS:    30,
		Visual: cfg,
		Volume: 0.8,
		Loader: func(string, float64) (Playback, player.Metadata, error) {
			return nil, player.Metadata{}, errors.New("loader not used")
		},
		Rand: rand.New(rand.NewPCG(1, 2)),
	}, q)
}

// loaded returns a model with fp installed as the current player.
func loaded(t *testing.T, q *queue.Queue, fp *fakePlayback) Model {
	t.Helper()
	m := testModel(q)
	m, cmd := m.handleMsg(trackLoadedMsg{seq: m.loadSeq, player: fp, meta: player.Metadata{Title: "Song"}})
	if cmd == nil {
		t.Fatal("expected watch command after load")
	}
	if m.state != stateReady {
		t.Fatalf("expected ready state, got %v", m.state)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewDefaultsToSixtyFPS(t *testing.T) {
	m := New(Options{Visual: visualizer.DefaultConfig()}, nil)
	if m.opts.FPS != 60 {
		t.Fatalf("expected default 60 fps, got %d", m.opts.FPS)
	}
}

func TestInitStartsLoadingCurrentTrack(t *testing.T) {
	var gotPath string
	var gotVol float64
	m := testModel(testQueue(2))
	m.opts.Loader = func(path string, vol float64) (Playback, player.Metadata, error) {
		gotPath, gotVol = path, vol
		return newFakePlayback(), player.Metadata{Title: "A"}, nil
	}

	msg := loadTrackCmd(m.opts.Loader, m.loadSeq, m.queue.Current().Path, m.volume)()
	loadedMsg, ok := msg.(trackLoadedMsg)
	if !ok {
		t.Fatalf("expected trackLoadedMsg, got %T", msg)
	}
	if gotPath != "a.mp3" || gotVol != 0.8 || loadedMsg.seq != m.loadSeq {
		t.Fatalf("loader called with %q %v seq %d", gotPath, gotVol, loadedMsg.seq)
	}
	if m.Init() == nil {
		t.Fatal("expected init commands")
	}
}

func TestFrameWhileLoadingOnlyMovesBackground(t *testing.T) {
	m := testModel(testQueue(1))
	hue := m.vis.Hue()
	frame := m.vis.History().Frame()

	m, cmd := m.handleMsg(frameMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected next frame to be scheduled")
	}
	if m.vis.History().Frame() != frame {
		t.Fatal("expected trail untouched while loading")
	}
	if m.vis.Hue() == hue {
		t.Fatal("expected hue to keep rotating while loading")
	}
	if m.frame == "" {
		t.Fatal("expected a rendered background")
	}
}

func TestFrameWhileReadyAdvancesTrail(t *testing.T) {
	fp := newFakePlayback()
	fp.samples = make([]int16, analysis.FFTSize*2)
	for i := range fp.samples {
		fp.samples[i] = int16(8000 * ((i / 2) % 2))
	}
	fp.pos = 42 * time.Second
	m := loaded(t, testQueue(1), fp)
	frame := m.vis.History().Frame()

	m, _ = m.handleMsg(frameMsg(time.Now()))
	if m.vis.History().Frame() != frame+1 {
		t.Fatalf("expected trail to advance one frame, got %d -> %d", frame, m.vis.History().Frame())
	}
	if m.elapsed != 42*time.Second {
		t.Fatalf("expected elapsed synced from player, got %v", m.elapsed)
	}
	if !strings.Contains(m.View(), "0:42") {
		t.Fatal("expected elapsed time in view")
	}
}

func TestLoadFailureShowsErrorAndStopsTrail(t *testing.T) {
	m := testModel(testQueue(1))
	m, _ = m.handleMsg(trackLoadedMsg{seq: m.loadSeq, path: "a.mp3", err: errors.New("bad header")})

	if m.state != stateFailed {
		t.Fatalf("expected failed state, got %v", m.state)
	}
	if m.queue.Current().State != queue.Failed {
		t.Fatal("expected track marked failed")
	}
	if !strings.Contains(m.View(), "bad header") {
		t.Fatal("expected error in view")
	}

	frame := m.vis.History().Frame()
	m, _ = m.handleMsg(frameMsg(time.Now()))
	if m.vis.History().Frame() != frame {
		t.Fatal("expected no trail update without a player")
	}
}

func TestStaleLoadIsClosedAndIgnored(t *testing.T) {
	m := testModel(testQueue(1))
	stale := newFakePlayback()
	m, cmd := m.handleMsg(trackLoadedMsg{seq: m.loadSeq - 1, player: stale})
	if cmd != nil || m.player != nil {
		t.Fatal("expected stale load to be ignored")
	}
	if !stale.closed {
		t.Fatal("expected stale player to be closed")
	}
}

func TestSpaceTogglesPause(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)

	m, _ = m.handleMsg(key(" "))
	if !fp.paused || !m.paused {
		t.Fatal("expected pause")
	}
	m, _ = m.handleMsg(key(" "))
	if fp.paused || m.paused {
		t.Fatal("expected resume")
	}
}

func TestStopRewindsAndResetsTrail(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)
	m.vis.Step(visualizer.Frame{Spectrum: []uint8{255, 255, 255}, Bass: 255, Treble: 255, Mid: 255, Volume: 1})

	m, _ = m.handleMsg(key("x"))
	if fp.stops != 1 || !m.paused || m.elapsed != 0 {
		t.Fatalf("expected stop, got stops=%d paused=%v elapsed=%v", fp.stops, m.paused, m.elapsed)
	}
	if _, bass, _ := m.vis.Smoothed(); bass != 0 {
		t.Fatalf("expected smoothed bass reset, got %v", bass)
	}
	for i := range m.vis.History().Len() {
		for _, v := range m.vis.History().At(i).Samples {
			if v != 0 {
				t.Fatalf("expected zero rows after stop, row %d has %v", i, v)
			}
		}
	}
}

func TestVolumeAndSeekKeys(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)

	m, _ = m.handleMsg(key("up"))
	m, _ = m.handleMsg(key("+"))
	if m.volume < 0.89 || m.volume > 0.91 {
		t.Fatalf("expected volume 0.9, got %v", m.volume)
	}
	m, _ = m.handleMsg(key("-"))
	if m.volume < 0.84 || m.volume > 0.86 {
		t.Fatalf("expected volume 0.85, got %v", m.volume)
	}

	m, _ = m.handleMsg(key("right"))
	m, _ = m.handleMsg(key("left"))
	if len(fp.seeks) != 2 || fp.seeks[0] != 5*time.Second || fp.seeks[1] != -5*time.Second {
		t.Fatalf("unexpected seeks %v", fp.seeks)
	}
}

func TestVolumeKeysWithoutPlayerAdjustPendingVolume(t *testing.T) {
	m := testModel(testQueue(1))
	for range 10 {
		m, _ = m.handleMsg(key("up"))
	}
	if m.volume != 1 {
		t.Fatalf("expected volume clamped to 1, got %v", m.volume)
	}
}

func TestNextLoadsFollowingTrack(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(3), fp)
	seq := m.loadSeq

	m, cmd := m.handleMsg(key("n"))
	if cmd == nil {
		t.Fatal("expected load command")
	}
	if !fp.closed {
		t.Fatal("expected previous player released before loading")
	}
	if m.queue.CurrentIndex() != 1 || m.loadSeq != seq+1 || m.state != stateLoading {
		t.Fatalf("unexpected state idx=%d seq=%d state=%v", m.queue.CurrentIndex(), m.loadSeq, m.state)
	}
	if m.metadata.Title != "B" {
		t.Fatalf("expected title of next track, got %q", m.metadata.Title)
	}

	m, _ = m.handleMsg(key("p"))
	if m.queue.CurrentIndex() != 0 {
		t.Fatalf("expected previous track, at %d", m.queue.CurrentIndex())
	}
}

func TestRepeatOneRestartsOnEnd(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(2), fp)
	m, _ = m.handleMsg(key("r"))
	if m.repeatMode != RepeatOne {
		t.Fatalf("expected repeat one, got %v", m.repeatMode)
	}

	done := m.watching
	m, cmd := m.handleMsg(playbackEndedMsg{done: done})
	if fp.restarts != 1 || cmd == nil {
		t.Fatalf("expected restart with new watch, restarts=%d", fp.restarts)
	}
	if m.queue.CurrentIndex() != 0 {
		t.Fatal("expected queue position unchanged")
	}
}

func TestEndAdvancesQueue(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(2), fp)

	m, cmd := m.handleMsg(playbackEndedMsg{done: m.watching})
	if cmd == nil || m.queue.CurrentIndex() != 1 {
		t.Fatalf("expected advance to next track, at %d", m.queue.CurrentIndex())
	}
	if m.queue.Track(0).State != queue.Done {
		t.Fatal("expected finished track marked done")
	}
}

func TestEndOfQueueStopsAndSpaceReplays(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)

	close(fp.done)
	m, _ = m.handleMsg(playbackEndedMsg{done: m.watching})
	if fp.stops != 1 || !m.paused {
		t.Fatal("expected stop at end of queue")
	}

	m, cmd := m.handleMsg(key(" "))
	if cmd == nil || m.watching == nil || m.paused {
		t.Fatal("expected replay to re-arm the end watcher")
	}
}

func TestRepeatAllWrapsToFirstTrack(t *testing.T) {
	fp := newFakePlayback()
	q := testQueue(2)
	q.SetCurrentIndex(1)
	m := loaded(t, q, fp)
	m.repeatMode = RepeatAll

	m, _ = m.handleMsg(playbackEndedMsg{done: m.watching})
	if m.queue.CurrentIndex() != 0 || m.state != stateLoading {
		t.Fatalf("expected wrap to track 0, at %d", m.queue.CurrentIndex())
	}
}

func TestStaleEndIsIgnored(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(2), fp)
	m, cmd := m.handleMsg(playbackEndedMsg{done: make(chan struct{})})
	if cmd != nil || m.queue.CurrentIndex() != 0 {
		t.Fatal("expected end from an old channel to be ignored")
	}
}

func TestToggleStars(t *testing.T) {
	m := testModel(testQueue(1))
	m, _ = m.handleMsg(key("v"))
	if !m.vis.StarsEnabled() {
		t.Fatal("expected stars on")
	}
	if !strings.Contains(m.View(), "[stars]") {
		t.Fatal("expected stars indicator")
	}
	m, _ = m.handleMsg(key("v"))
	if m.vis.StarsEnabled() {
		t.Fatal("expected stars off")
	}
}

func TestWindowSizeResizesCanvasAndTrail(t *testing.T) {
	m := testModel(testQueue(1))
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 60, Height: 25})

	cols, rows := m.canvas.Cells()
	if cols != 60 || rows != 25-transportHeight {
		t.Fatalf("canvas cells = %dx%d", cols, rows)
	}
	w, _ := m.canvas.Size()
	if m.vis.History().Width() != w {
		t.Fatalf("history width %d, want %d", m.vis.History().Width(), w)
	}

	m, _ = m.handleMsg(frameMsg(time.Now()))
	if got := strings.Count(m.View(), "\n"); got != 24 {
		t.Fatalf("expected view to fill 25 lines, got %d newlines", got)
	}
}

func TestQuitReleasesPlayer(t *testing.T) {
	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)
	m, cmd := m.handleMsg(key("q"))
	if cmd == nil || !m.quitting || !fp.closed {
		t.Fatal("expected quit to close the player")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quit")
	}
}

func TestBrowserOpenAndCancel(t *testing.T) {
	restore := chdirTemp(t, map[string]string{"song.mp3": "data"})
	defer restore()

	m := testModel(testQueue(1))
	m, _ = m.handleMsg(key("o"))
	if !m.browsing {
		t.Fatal("expected browser open")
	}
	m, _ = m.handleMsg(BrowserCancelledMsg{})
	if m.browsing {
		t.Fatal("expected browser closed")
	}
}

func TestBrowserSelectionLoadsQueue(t *testing.T) {
	restore := chdirTemp(t, map[string]string{"one.mp3": "data", "two.mp3": "data"})
	defer restore()

	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)
	m.browsing = true

	m, cmd := m.handleMsg(BrowserSelectedMsg{Path: "two.mp3"})
	if cmd == nil || m.browsing {
		t.Fatal("expected load after selection")
	}
	if m.queue.Len() != 2 || m.queue.CurrentIndex() != 1 {
		t.Fatalf("expected sibling queue positioned on two.mp3, got len=%d idx=%d", m.queue.Len(), m.queue.CurrentIndex())
	}
	if !fp.closed {
		t.Fatal("expected old player released")
	}
}

func TestBrowserSelectionErrorKeepsPlaying(t *testing.T) {
	restore := chdirTemp(t, map[string]string{})
	defer restore()

	fp := newFakePlayback()
	m := loaded(t, testQueue(1), fp)
	m, _ = m.handleMsg(BrowserSelectedMsg{Path: "missing.mp3"})
	if m.state != stateReady || fp.closed {
		t.Fatal("expected current track to keep playing")
	}
	if m.loadErr == "" {
		t.Fatal("expected error message")
	}
}

func TestRenderVolume(t *testing.T) {
	tests := []struct {
		vol  float64
		want string
	}{
		{0.8, "🔊 80%"},
		{0.3, "🔉 30%"},
		{0, "🔇 0%"},
	}
	for _, tt := range tests {
		if got := renderVolume(tt.vol, tt.vol); got != tt.want {
			t.Fatalf("renderVolume(%v) = %q, want %q", tt.vol, got, tt.want)
		}
	}
}

func TestVolumeSpringSettles(t *testing.T) {
	s := newSpringValue(30, 6, 1)
	s.Set(0.2)
	for range 120 {
		s.Step(0.7)
	}
	if v := s.Value(); v < 0.69 || v > 0.71 {
		t.Fatalf("expected spring to settle near 0.7, got %v", v)
	}
}

func TestRepeatModeCycle(t *testing.T) {
	if RepeatOne.Next(false) != RepeatOff {
		t.Fatal("expected repeat all skipped for a single track")
	}
	if RepeatOne.Next(true) != RepeatAll || RepeatAll.Next(true) != RepeatOff {
		t.Fatal("unexpected repeat cycle with a queue")
	}
}
