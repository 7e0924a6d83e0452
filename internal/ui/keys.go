package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"audido/internal/dsp"
	"audido/internal/engine"
)

// handleKey dispatches a single key press. Global keys work regardless of
// focus, except that left/right seek only outside the EQ panel, where they
// adjust the selected band's gain; panel-specific keys only act when that
// panel has focus.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.send(engine.Command{Kind: engine.CmdQuit})
		return nil
	case " ":
		m.togglePlayPause()
		return nil
	case "n":
		m.send(engine.Command{Kind: engine.CmdNext})
		return nil
	case "N", "p":
		m.send(engine.Command{Kind: engine.CmdPrevious})
		return nil
	case "+", "=":
		m.adjustVolume(0.05)
		return nil
	case "-":
		m.adjustVolume(-0.05)
		return nil
	case "]":
		m.adjustSpeed(0.1)
		return nil
	case "[":
		m.adjustSpeed(-0.1)
		return nil
	case "tab":
		m.cycleFocus()
		return nil
	case "left":
		if m.focus == focusEQ {
			break
		}
		m.send(engine.Command{Kind: engine.CmdSeek, Seconds: max0(m.position - 5)})
		return nil
	case "right":
		if m.focus == focusEQ {
			break
		}
		m.send(engine.Command{Kind: engine.CmdSeek, Seconds: m.position + 5})
		return nil
	}

	switch m.focus {
	case focusQueue:
		m.handleQueueKey(msg)
	case focusEQ:
		m.handleEQKey(msg)
	case focusBrowser:
		m.handleBrowserKey(msg)
	}
	return nil
}

func (m *Model) handleQueueKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		m.moveQueueCursor(-1)
	case "down", "j":
		m.moveQueueCursor(1)
	case "enter":
		m.playSelectedQueueItem()
	case "d":
		m.removeSelectedQueueItem()
	case "l":
		m.cycleLoopMode()
	}
}

func (m *Model) handleEQKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		m.moveEQCursor(-1)
	case "down", "j":
		m.moveEQCursor(1)
	case "right":
		m.adjustEQGain(1)
	case "left":
		m.adjustEQGain(-1)
	case "a":
		if len(m.eqFilters) < dsp.MaxEQFilters {
			m.eqFilters = append(m.eqFilters, dsp.DefaultFilterNode())
			m.send(engine.Command{Kind: engine.CmdEqSetAllFilters, AllFilters: m.eqFilters})
		}
	case "r":
		m.eqFilters = nil
		m.send(engine.Command{Kind: engine.CmdEqResetParameters})
	case "e":
		m.eqEnabled = !m.eqEnabled
		m.send(engine.Command{Kind: engine.CmdEqSetEnabled, Enabled: m.eqEnabled})
	case "1":
		m.applyPreset(dsp.PresetFlat)
	case "2":
		m.applyPreset(dsp.PresetAcoustic)
	case "3":
		m.applyPreset(dsp.PresetDance)
	case "4":
		m.applyPreset(dsp.PresetElectronic)
	case "5":
		m.applyPreset(dsp.PresetBassBoosted)
	}
}

func (m *Model) applyPreset(p dsp.Preset) {
	m.preset = p
	m.eqFilters = p.Filters()
	m.eqCursor = 0
	m.send(engine.Command{Kind: engine.CmdEqSetPreset, Preset: p})
}

func (m *Model) handleBrowserKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		m.moveBrowserCursor(-1)
	case "down", "j":
		m.moveBrowserCursor(1)
	case "enter":
		m.enterBrowserEntry()
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
