// Package ui implements the Bubbletea terminal interface: now-playing
// transport, spectrum visualizer, EQ editor, playback queue, file
// browser, and a scrolling log pane, driven entirely through
// internal/engine's Command/Response channels.
package ui

import "github.com/charmbracelet/lipgloss"

// audido color palette — ANSI
// colors adapt to the user's terminal theme.
var (
	colorBorder  = lipgloss.ANSIColor(8)
	colorTitle   = lipgloss.ANSIColor(10)
	colorText    = lipgloss.ANSIColor(7)
	colorDim     = lipgloss.ANSIColor(8)
	colorAccent  = lipgloss.ANSIColor(11)
	colorPlaying = lipgloss.ANSIColor(10)
	colorSeekBar = lipgloss.ANSIColor(11)
	colorVolume  = lipgloss.ANSIColor(2)

	spectrumLow  = lipgloss.ANSIColor(10)
	spectrumMid  = lipgloss.ANSIColor(11)
	spectrumHigh = lipgloss.ANSIColor(9)
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(70)

	miniFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	trackStyle = lipgloss.NewStyle().Foreground(colorAccent)
	timeStyle  = lipgloss.NewStyle().Foreground(colorText)

	statusStyle = lipgloss.NewStyle().Foreground(colorPlaying).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	labelStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)

	eqActiveStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	eqInactiveStyle = lipgloss.NewStyle().Foreground(colorDim)

	queueActiveStyle   = lipgloss.NewStyle().Foreground(colorPlaying).Bold(true)
	queueItemStyle     = lipgloss.NewStyle().Foreground(colorText)
	queueSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	browserDirStyle      = lipgloss.NewStyle().Foreground(colorAccent)
	browserFileStyle     = lipgloss.NewStyle().Foreground(colorText)
	browserSelectedStyle = lipgloss.NewStyle().Foreground(colorPlaying).Bold(true)

	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(9))
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(11))
	logInfoStyle  = lipgloss.NewStyle().Foreground(colorDim)

	activeToggle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(9))

	panelTitleStyle = lipgloss.NewStyle().Foreground(colorDim)
)
