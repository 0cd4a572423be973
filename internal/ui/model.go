package ui

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/wavetrail/internal/analysis"
	"github.com/olivier-w/wavetrail/internal/config"
	"github.com/olivier-w/wavetrail/internal/player"
	"github.com/olivier-w/wavetrail/internal/queue"
	"github.com/olivier-w/wavetrail/internal/util"
	"github.com/olivier-w/wavetrail/internal/visualizer"
)

const (
	volumeStep = 0.05
	seekStep   = 5 * time.Second

	// Lines below the canvas: spacer, title, progress, status, help.
	transportHeight = 5

	defaultCols = 80
	defaultRows = 19
)

type loadState uint8

const (
	stateLoading loadState = iota
	stateReady
	stateFailed
)

// Options configures the playback model.
type Options struct {
	FPS    int
	Visual visualizer.Config
	Volume float64
	Loader Loader
	Rand   *rand.Rand
}

// Model is the Bubble Tea model of the player screen: the waveform trail
// on top and the transport below.
type Model struct {
	opts     Options
	player   Playback
	watching <-chan struct{}
	metadata player.Metadata
	queue    *queue.Queue

	vis      *visualizer.Visualizer
	analyzer *analysis.Analyzer
	canvas   *visualizer.Canvas
	frame    string

	progress  progress.Model
	volSpring springValue

	browser  BrowserModel
	browsing bool

	state   loadState
	loadSeq int
	loadErr string

	elapsed    time.Duration
	duration   time.Duration
	volume     float64
	paused     bool
	repeatMode RepeatMode

	width    int
	height   int
	quitting bool
}

// New creates a model that starts loading the queue's current track on
// Init.
func New(opts Options, q *queue.Queue) Model {
	if opts.FPS <= 0 {
		opts.FPS = config.DefaultFPS
	}
	if opts.Loader == nil {
		opts.Loader = PlayerLoader
	}
	if q == nil {
		q = queue.New(nil)
	}

	canvas := visualizer.NewCanvas(defaultCols, defaultRows)
	w, h := canvas.Size()
	m := Model{
		opts:      opts,
		queue:     q,
		vis:       visualizer.New(opts.Visual, w, h, opts.Rand),
		analyzer:  analysis.NewAnalyzer(44100),
		canvas:    canvas,
		progress:  newProgressBar(),
		volSpring: newSpringValue(opts.FPS, 6, 1),
		volume:    min(max(opts.Volume, 0), 1),
		state:     stateLoading,
		loadSeq:   1,
	}
	m.volSpring.Set(m.volume)
	if t := q.Current(); t != nil {
		m.metadata = player.Metadata{Title: t.Title}
	} else {
		m.state = stateFailed
		m.loadErr = "nothing to play"
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameCmd(m.opts.FPS)}
	if t := m.queue.Current(); t != nil && m.state == stateLoading {
		cmds = append(cmds,
			loadTrackCmd(m.opts.Loader, m.loadSeq, t.Path, m.volume),
			m.titleCmd(),
		)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.step()
		return m, frameCmd(m.opts.FPS)

	case trackLoadedMsg:
		return m.trackLoaded(msg)

	case playbackEndedMsg:
		if m.player == nil || msg.done != m.watching {
			return m, nil
		}
		m.watching = nil
		return m.trackEnded()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.browsing {
			m.browser, _ = updateBrowser(m.browser, msg)
		}
		return m, nil

	case BrowserSelectedMsg:
		m.browsing = false
		q, err := QueueFor(msg.Path)
		if err != nil {
			log.Printf("opening %s: %v", msg.Path, err)
			m.loadErr = err.Error()
			if m.state != stateReady {
				m.state = stateFailed
			}
			return m, nil
		}
		m.queue = q
		return m, m.loadCurrent()

	case BrowserCancelledMsg:
		m.browsing = false
		return m, m.titleCmd()

	case tea.KeyMsg:
		if m.browsing {
			var cmd tea.Cmd
			m.browser, cmd = updateBrowser(m.browser, msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	if m.browsing {
		var cmd tea.Cmd
		m.browser, cmd = updateBrowser(m.browser, msg)
		return m, cmd
	}
	return m, nil
}

func updateBrowser(b BrowserModel, msg tea.Msg) (BrowserModel, tea.Cmd) {
	model, cmd := b.Update(msg)
	if next, ok := model.(BrowserModel); ok {
		b = next
	}
	return b, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.releasePlayer()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		if m.player == nil {
			return m, nil
		}
		m.player.TogglePause()
		m.paused = m.player.Paused()
		cmds := []tea.Cmd{m.titleCmd()}
		if !m.paused && m.player.Done() != m.watching {
			cmds = append(cmds, m.watch())
		}
		return m, tea.Batch(cmds...)
	case "x":
		if m.player == nil {
			return m, nil
		}
		if err := m.player.Stop(); err != nil {
			log.Printf("stop: %v", err)
		}
		m.paused = true
		m.elapsed = 0
		m.resetVisuals()
		return m, m.titleCmd()
	case "up", "k", "+", "=":
		m.changeVolume(volumeStep)
	case "down", "j", "-":
		m.changeVolume(-volumeStep)
	case "left", "h":
		m.seek(-seekStep)
	case "right", "l":
		m.seek(seekStep)
	case "n":
		return m.skip(1)
	case "p":
		return m.skip(-1)
	case "o":
		m.browser = NewEmbeddedBrowser()
		m.browsing = true
		if m.width > 0 && m.height > 0 {
			m.browser, _ = updateBrowser(m.browser, tea.WindowSizeMsg{Width: m.width, Height: m.height})
		}
		return m, m.browser.Init()
	case "r":
		m.repeatMode = m.repeatMode.Next(m.queue.Len() > 1)
	case "v":
		m.vis.SetStars(!m.vis.StarsEnabled())
	}
	return m, nil
}

func (m *Model) changeVolume(delta float64) {
	if m.player == nil {
		m.volume = min(max(m.volume+delta, 0), 1)
		return
	}
	m.player.AdjustVolume(delta)
	m.volume = m.player.Volume()
}

func (m *Model) seek(delta time.Duration) {
	if m.player == nil {
		return
	}
	if err := m.player.Seek(delta); err != nil {
		log.Printf("seek: %v", err)
		return
	}
	m.elapsed = m.player.Position()
}

func (m Model) skip(dir int) (Model, tea.Cmd) {
	idx := m.queue.CurrentIndex()
	var moved bool
	if dir > 0 {
		moved = m.queue.Advance()
	} else {
		moved = m.queue.Previous()
	}
	if !moved {
		return m, nil
	}
	if t := m.queue.Track(idx); t != nil && t.State == queue.Playing {
		m.queue.SetTrackState(idx, queue.Ready)
	}
	return m, m.loadCurrent()
}

// loadCurrent releases the current player and starts loading the queue's
// current track. Results of earlier loads are dropped by sequence number.
func (m *Model) loadCurrent() tea.Cmd {
	m.releasePlayer()
	m.resetVisuals()
	m.loadSeq++
	m.loadErr = ""
	m.elapsed = 0
	m.duration = 0

	t := m.queue.Current()
	if t == nil {
		m.state = stateFailed
		m.loadErr = "nothing to play"
		return nil
	}
	m.state = stateLoading
	m.metadata = player.Metadata{Title: t.Title}
	return tea.Batch(
		loadTrackCmd(m.opts.Loader, m.loadSeq, t.Path, m.volume),
		m.titleCmd(),
	)
}

func (m Model) trackLoaded(msg trackLoadedMsg) (Model, tea.Cmd) {
	if msg.seq != m.loadSeq {
		if msg.player != nil {
			msg.player.Close()
		}
		return m, nil
	}

	idx := m.queue.CurrentIndex()
	if msg.err != nil {
		log.Printf("loading %s: %v", msg.path, msg.err)
		m.state = stateFailed
		m.loadErr = msg.err.Error()
		m.queue.SetTrackState(idx, queue.Failed)
		m.resetVisuals()
		return m, nil
	}

	m.player = msg.player
	m.metadata = msg.meta
	m.state = stateReady
	m.duration = m.player.Duration()
	m.elapsed = 0
	m.paused = m.player.Paused()
	m.volume = m.player.Volume()
	m.analyzer = analysis.NewAnalyzer(m.player.SampleRate())
	m.resetVisuals()
	m.queue.SetTrackState(idx, queue.Playing)
	return m, tea.Batch(m.watch(), m.titleCmd())
}

func (m Model) trackEnded() (Model, tea.Cmd) {
	if m.repeatMode == RepeatOne {
		if err := m.player.Restart(); err != nil {
			log.Printf("restart: %v", err)
		} else {
			m.elapsed = 0
			m.paused = false
			return m, m.watch()
		}
	}

	m.queue.SetTrackState(m.queue.CurrentIndex(), queue.Done)
	if m.queue.Advance() {
		return m, m.loadCurrent()
	}
	if m.repeatMode == RepeatAll && m.queue.Len() > 0 {
		m.queue.WrapToStart()
		m.queue.Advance()
		return m, m.loadCurrent()
	}

	// End of the queue: rewind and wait for the user.
	if err := m.player.Stop(); err != nil {
		log.Printf("stop: %v", err)
	}
	m.paused = true
	m.elapsed = 0
	m.resetVisuals()
	return m, m.titleCmd()
}

func (m *Model) watch() tea.Cmd {
	done := m.player.Done()
	m.watching = done
	return waitDone(done)
}

func (m *Model) releasePlayer() {
	if m.player != nil {
		m.player.Close()
	}
	m.player = nil
	m.watching = nil
}

func (m *Model) resetVisuals() {
	m.vis.Reset()
	m.analyzer.Reset()
}

// step advances the visual state by one frame and renders the canvas. While
// nothing is loaded only the background moves.
func (m *Model) step() {
	if m.state == stateReady && m.player != nil {
		spectrum := m.analyzer.Analyze(m.player.Samples(analysis.FFTSize))
		m.vis.Step(visualizer.Frame{
			Spectrum: spectrum,
			Bass:     m.analyzer.Energy(analysis.Bass),
			Treble:   m.analyzer.Energy(analysis.Treble),
			Mid:      m.analyzer.Energy(analysis.Mid),
			Volume:   m.player.Volume(),
		})
		m.elapsed = m.player.Position()
		m.paused = m.player.Paused()
		m.volume = m.player.Volume()
		m.vis.Draw(m.canvas)
	} else {
		m.vis.Idle()
		m.vis.DrawBackground(m.canvas)
	}
	m.volSpring.Step(m.volume)
	m.frame = m.canvas.String()
}

func (m *Model) resize() {
	cols := max(m.width, 1)
	rows := max(m.height-transportHeight, 1)
	m.canvas.Resize(cols, rows)
	w, h := m.canvas.Size()
	m.vis.Resize(w, h)
	m.progress.Width = min(max(m.width-20, 10), 80)
	m.frame = ""
}

func (m Model) titleCmd() tea.Cmd {
	return tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browsing {
		return m.browser.View()
	}

	var b strings.Builder
	b.WriteString(m.frame)
	b.WriteString("\n\n")
	b.WriteString("  " + m.renderTitle() + "\n")
	b.WriteString("  " + m.renderProgress() + "\n")
	b.WriteString("  " + m.renderStatus() + "\n")
	b.WriteString("  " + helpStyle.Render(helpText(m.queue.Len() > 1)))
	return b.String()
}

func (m Model) renderTitle() string {
	switch m.state {
	case stateFailed:
		return errorStyle.Render("Could not load: " + m.loadErr)
	case stateLoading:
		return statusStyle.Render("Loading " + m.metadata.Title + "...")
	}
	s := titleStyle.Render(m.metadata.Title)
	if sub := m.metadata.Subtitle(); sub != "" {
		s += "  " + artistStyle.Render(sub)
	}
	if m.loadErr != "" {
		s += "  " + errorStyle.Render(m.loadErr)
	}
	return s
}

func (m Model) renderProgress() string {
	ratio := progressRatio(m.elapsed.Seconds(), m.duration.Seconds())
	return fmt.Sprintf("%s %s %s",
		timeStyle.Render(util.FormatDuration(m.elapsed)),
		m.progress.ViewAs(ratio),
		timeStyle.Render(util.FormatDuration(m.duration)),
	)
}

func (m Model) renderStatus() string {
	icon, text := "▶", "playing"
	switch {
	case m.state != stateReady:
		icon, text = "■", "not loaded"
	case m.paused:
		icon, text = "❚❚", "paused"
	}
	left := fmt.Sprintf("%s  %s", icon, text)
	if n := m.queue.Len(); n > 1 {
		left += fmt.Sprintf("  %d/%d", m.queue.CurrentIndex()+1, n)
	}
	if r := m.repeatMode.Icon(); r != "" {
		left += "  " + r
	}
	if m.vis.StarsEnabled() {
		left += "  [stars]"
	}
	right := renderVolume(m.volume, m.volSpring.Value())

	gap := max(m.width-len([]rune(left))-len([]rune(right))-6, 2)
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " - wavetrail"
	}
	return "▶ " + title + " - wavetrail"
}
