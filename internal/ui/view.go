package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth     = 64
	miniPanelWidth = 36
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	if m.mini {
		// Mini mode drops the spectrum, browser, log and help panels to
		// keep the frame narrow.
		sections = []string{
			titleStyle.Render("A U D I D O"),
			m.renderTrackInfo(),
			m.renderTimeStatus(),
			m.renderSeekBar(),
			m.renderVolumeAndSpeed(),
			m.renderEQ(),
			m.renderQueue(),
		}
	} else {
		sections = []string{
			titleStyle.Render("A U D I D O"),
			m.renderTrackInfo(),
			m.renderTimeStatus(),
			m.renderSpectrum(),
			m.renderSeekBar(),
			"",
			m.renderVolumeAndSpeed(),
			"",
			m.renderEQ(),
			"",
			m.renderQueue(),
			"",
			m.renderBrowser(),
			"",
			m.renderLog(),
			"",
			m.renderHelp(),
		}
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.err)))
	}

	content := strings.Join(sections, "\n")
	if m.mini {
		return miniFrameStyle.Width(miniPanelWidth).Render(content)
	}
	return frameStyle.Render(content)
}

// panelW returns the width to wrap content to, narrower in mini mode.
func (m Model) panelW() int {
	if m.mini {
		return miniPanelWidth
	}
	return panelWidth
}

func (m Model) renderTrackInfo() string {
	name := m.metadata.Title
	if name == "" {
		name = "No track loaded"
	}
	return trackStyle.Render("♫ " + name)
}

func (m Model) renderTimeStatus() string {
	timeStr := fmt.Sprintf("%s / %s", fmtPosition(m.position), fmtPosition(m.duration))

	var status string
	switch {
	case m.playing && m.paused:
		status = statusStyle.Render("Paused")
	case m.playing:
		status = statusStyle.Render("Playing")
	default:
		status = dimStyle.Render("Stopped")
	}

	left := timeStyle.Render(timeStr)
	gap := m.panelW() - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderSpectrum() string {
	var samples []float64
	if m.eng != nil {
		samples = m.eng.Samples(2048)
	}
	bands := m.vis.Analyze(samples)
	return m.vis.Render(bands, m.eqFilters, m.eqEnabled)
}

func (m Model) renderSeekBar() string {
	var progress float64
	if m.duration > 0 {
		progress = m.position / m.duration
	}
	progress = max(0, min(1, progress))

	width := m.panelW()
	filled := int(progress * float64(width-1))
	fill := lipgloss.NewStyle().Foreground(colorSeekBar)
	dim := lipgloss.NewStyle().Foreground(colorDim)
	return fill.Render(strings.Repeat("━", filled)) + fill.Render("●") +
		dim.Render(strings.Repeat("━", max(0, width-filled-1)))
}

func (m Model) renderVolumeAndSpeed() string {
	frac := max(0, min(1, m.volume))
	barW := 20
	if m.mini {
		barW = 10
	}
	filled := int(frac * float64(barW))
	bar := lipgloss.NewStyle().Foreground(colorVolume).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barW-filled))

	clip := ""
	if m.eng != nil && m.eng.Clipped() {
		clip = errorStyle.Render(" CLIP")
		m.eng.ResetClipped()
	}

	return labelStyle.Render("VOL ") + bar + dimStyle.Render(fmt.Sprintf(" %.0f%%", m.volume*100)) +
		dimStyle.Render(fmt.Sprintf("   SPEED %.2fx", m.speed)) + clip
}

func (m Model) renderEQ() string {
	header := panelTitleStyle.Render("── Equalizer ── ")
	if m.focus == focusEQ {
		header = activeToggle.Render("── Equalizer ── ")
	}
	enabled := dimStyle.Render("[off]")
	if m.eqEnabled {
		enabled = activeToggle.Render("[on]")
	}
	lines := []string{header + enabled}
	if len(m.eqFilters) == 0 {
		lines = append(lines, dimStyle.Render("  (flat — 'a' adds a band)"))
		return strings.Join(lines, "\n")
	}
	for i, f := range m.eqFilters {
		style := eqInactiveStyle
		if m.focus == focusEQ && i == m.eqCursor {
			style = eqActiveStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("  %-9s %6.0fHz %+5.1fdB Q=%.2f", f.Type, f.Freq, f.Gain, f.Q)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderQueue() string {
	header := panelTitleStyle.Render(fmt.Sprintf("── Queue (%s) ── ", m.loopMode))
	if m.focus == focusQueue {
		header = activeToggle.Render(fmt.Sprintf("── Queue (%s) ── ", m.loopMode))
	}
	if len(m.queue) == 0 {
		return header + "\n" + dimStyle.Render("  empty — browse below and press enter")
	}

	lines := []string{header}
	for i, item := range m.queue {
		prefix := "  "
		style := queueItemStyle
		name := item.Path
		if item.Metadata != nil && item.Metadata.Title != "" {
			name = item.Metadata.Title
		}
		if m.focus == focusQueue && i == m.queueCursor {
			style = queueSelectedStyle
			prefix = "> "
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, name)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBrowser() string {
	header := panelTitleStyle.Render(fmt.Sprintf("── Browse: %s ── ", m.browserDir))
	if m.focus == focusBrowser {
		header = activeToggle.Render(fmt.Sprintf("── Browse: %s ── ", m.browserDir))
	}
	lines := []string{header}
	for i, e := range m.browserEntries {
		style := browserFileStyle
		if e.IsDir {
			style = browserDirStyle
		}
		if m.focus == focusBrowser && i == m.browserCursor {
			style = browserSelectedStyle
		}
		suffix := ""
		if e.IsDir {
			suffix = "/"
		}
		lines = append(lines, style.Render("  "+e.Name+suffix))
		if i > 6 {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  … %d more", len(m.browserEntries)-i-1)))
			break
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLog() string {
	header := panelTitleStyle.Render("── Log ── ")
	if m.logs == nil {
		return header
	}
	records := m.logs.Snapshot()
	if len(records) > 3 {
		records = records[len(records)-3:]
	}
	lines := []string{header}
	for _, r := range records {
		lines = append(lines, dimStyle.Render("  "+r.Message))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	return helpStyle.Render("[Spc]Play/Pause [N/P]Trk [Tab]Focus [+-]Vol [[]]Speed [Q]Quit")
}
