package ui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"audido/internal/audio"
	"audido/internal/browser"
	"audido/internal/dsp"
	"audido/internal/engine"
	"audido/internal/logging"
	"audido/internal/queue"
)

type focusArea int

const (
	focusQueue focusArea = iota
	focusEQ
	focusBrowser
	focusLog
)

type tickMsg time.Time

// respMsg wraps an engine.Response so it can travel through Bubbletea's
// message loop; waitForResponse re-arms itself after every delivery.
type respMsg engine.Response

// Model is the Bubbletea model for audido. Apart from reading the output
// tap (Samples, Clipped, ResetClipped), it never touches engine state
// directly — every mutation is a Command sent over cmds, every fact about
// playback arrives as a Response on resp.
type Model struct {
	eng  *engine.Engine
	cmds chan<- engine.Command
	resp <-chan engine.Response
	logs *logging.Buffer

	browser *browser.Browser
	vis     *Visualizer

	// last known engine-reported state
	metadata audio.Metadata
	position float64
	duration float64
	playing  bool
	paused   bool
	queue    []queue.Item
	loopMode queue.LoopMode
	eqFilters []dsp.FilterNode
	eqEnabled bool
	preset    dsp.Preset
	volume    float64
	speed     float64

	browserDir     string
	browserEntries []browser.FileEntry
	browserCursor  int

	focus       focusArea
	queueCursor int
	eqCursor    int

	autoplay bool
	mini     bool
	err      error
	quitting bool
	width    int
	height   int
}

// NewModel builds a Model wired to an already-running Engine.
func NewModel(eng *engine.Engine, logs *logging.Buffer, autoplay, mini bool) Model {
	b := browser.New(256)
	entries, _ := b.List(".")
	return Model{
		eng:            eng,
		cmds:           eng.Commands(),
		resp:           eng.Responses(),
		logs:           logs,
		browser:        b,
		vis:            NewVisualizer(44100),
		volume:         1.0,
		speed:          1.0,
		eqEnabled:      true,
		browserDir:     ".",
		browserEntries: entries,
		autoplay:       autoplay,
		mini:           mini,
	}
}

// Init starts the UI tick and the response-draining loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForResponse(m.resp), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForResponse(ch <-chan engine.Response) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return respMsg(r)
	}
}

func (m *Model) send(cmd engine.Command) {
	select {
	case m.cmds <- cmd:
	default:
		go func() { m.cmds <- cmd }()
	}
}

// Update handles key presses, ticks, window resizes, and engine responses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tickCmd()

	case respMsg:
		m.applyResponse(engine.Response(msg))
		if msg.Kind == engine.RespShutdown {
			m.quitting = true
			return m, tea.Quit
		}
		return m, waitForResponse(m.resp)
	}

	return m, nil
}

func (m *Model) applyResponse(r engine.Response) {
	switch r.Kind {
	case engine.RespPlaying:
		m.playing, m.paused = true, false
	case engine.RespPaused:
		m.paused = true
	case engine.RespStopped:
		m.playing, m.paused = false, false
		m.position, m.duration = r.Position, r.Duration
	case engine.RespLoaded, engine.RespTrackChanged:
		m.metadata = r.Metadata
	case engine.RespPosition:
		m.position, m.duration = r.Position, r.Duration
	case engine.RespQueueUpdated:
		m.queue, m.loopMode = r.Queue, r.LoopMode
	case engine.RespLoopModeChanged:
		m.loopMode = r.LoopMode
	case engine.RespError:
		m.err = r.Err
	}
}

func (m *Model) togglePlayPause() {
	if m.playing && !m.paused {
		m.send(engine.Command{Kind: engine.CmdPause})
		return
	}
	if m.playing && m.paused {
		m.send(engine.Command{Kind: engine.CmdPlay})
		return
	}
	if len(m.queue) > 0 {
		m.send(engine.Command{Kind: engine.CmdPlayQueueIndex, Index: 0})
	}
}

func (m *Model) adjustVolume(delta float64) {
	m.volume = math.Max(0, math.Min(1, m.volume+delta))
	m.send(engine.Command{Kind: engine.CmdSetVolume, Volume: m.volume})
}

func (m *Model) adjustSpeed(delta float64) {
	m.speed = math.Max(0.1, math.Min(4.0, m.speed+delta))
	m.send(engine.Command{Kind: engine.CmdSetSpeed, Speed: m.speed})
}

func (m *Model) cycleFocus() {
	m.focus = (m.focus + 1) % 4
}

func (m *Model) enterBrowserEntry() {
	if m.browserCursor >= len(m.browserEntries) {
		return
	}
	entry := m.browserEntries[m.browserCursor]
	if entry.IsDir {
		entries, err := m.browser.List(entry.Path)
		if err != nil {
			m.err = err
			return
		}
		m.browserDir = entry.Path
		m.browserEntries = entries
		m.browserCursor = 0
		return
	}
	m.send(engine.Command{Kind: engine.CmdAddToQueue, Path: entry.Path})
}

func (m *Model) moveQueueCursor(delta int) {
	if len(m.queue) == 0 {
		return
	}
	m.queueCursor = clampInt(m.queueCursor+delta, 0, len(m.queue)-1)
}

func (m *Model) moveBrowserCursor(delta int) {
	if len(m.browserEntries) == 0 {
		return
	}
	m.browserCursor = clampInt(m.browserCursor+delta, 0, len(m.browserEntries)-1)
}

func (m *Model) moveEQCursor(delta int) {
	if len(m.eqFilters) == 0 {
		return
	}
	m.eqCursor = clampInt(m.eqCursor+delta, 0, len(m.eqFilters)-1)
}

func (m *Model) adjustEQGain(delta float64) {
	if m.eqCursor >= len(m.eqFilters) {
		return
	}
	f := m.eqFilters[m.eqCursor]
	f.Gain = math.Max(dsp.MinGain, math.Min(dsp.MaxGain, f.Gain+delta))
	m.eqFilters[m.eqCursor] = f
	m.send(engine.Command{Kind: engine.CmdEqUpdateFilter, FilterIndex: m.eqCursor, Filter: f})
}

func (m *Model) removeSelectedQueueItem() {
	if m.queueCursor >= len(m.queue) {
		return
	}
	id := m.queue[m.queueCursor].ID
	m.send(engine.Command{Kind: engine.CmdRemoveFromQueue, QueueID: id})
}

func (m *Model) playSelectedQueueItem() {
	if m.queueCursor >= len(m.queue) {
		return
	}
	m.send(engine.Command{Kind: engine.CmdPlayQueueIndex, Index: m.queueCursor})
}

func (m *Model) cycleLoopMode() {
	next := (m.loopMode + 1) % 4
	m.send(engine.Command{Kind: engine.CmdSetLoopMode, LoopMode: next})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func fmtPosition(seconds float64) string {
	m := int(seconds) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
