package ui

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/madelynnblue/go-dsp/fft"

	"audido/internal/dsp"
)

const (
	numBands = 10
	fftSize  = 2048
	barWidth = 5

	// peakDecayPerFrame controls how fast a band's peak-hold marker falls
	// back toward its current level, in the same [0,1] units as a band.
	peakDecayPerFrame = 0.015

	// eqTintThresholdDB is the minimum approximate boost/cut a band needs
	// from the active EQ before its bar is tinted to show it.
	eqTintThresholdDB = 1.0
)

var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

var bandEdges = [numBands + 1]float64{20, 100, 200, 400, 800, 1600, 3200, 6400, 12800, 16000, 20000}

var (
	specLowStyle  = lipgloss.NewStyle().Foreground(spectrumLow)
	specMidStyle  = lipgloss.NewStyle().Foreground(spectrumMid)
	specHighStyle = lipgloss.NewStyle().Foreground(spectrumHigh)
	peakStyle     = lipgloss.NewStyle().Foreground(colorAccent)
)

// Visualizer turns raw mono samples into smoothed, banded spectrum levels,
// fed by the engine's output tap rather than a direct player reference. It
// also tracks a slow-decaying peak per band and, when given the live EQ
// filter list, tints bars under an active boost or cut so the spectrum
// reads as what the equalizer is doing to the signal rather than a
// generic analyzer sitting next to it.
type Visualizer struct {
	prev [numBands]float64
	peak [numBands]float64
	sr   float64
	buf  []float64
}

// NewVisualizer creates a Visualizer for the given sample rate.
func NewVisualizer(sampleRate float64) *Visualizer {
	return &Visualizer{sr: sampleRate, buf: make([]float64, fftSize)}
}

// Analyze runs an FFT over samples and returns 10 normalized band levels,
// updating each band's peak-hold marker alongside the smoothed level.
func (v *Visualizer) Analyze(samples []float64) [numBands]float64 {
	var bands [numBands]float64
	if len(samples) == 0 {
		for b := range numBands {
			bands[b] = v.prev[b] * 0.8
			v.prev[b] = bands[b]
			v.decayPeak(b, bands[b])
		}
		return bands
	}

	clear(v.buf)
	copy(v.buf, samples)

	for i := range fftSize {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
		v.buf[i] *= w
	}

	spectrum := fft.FFTReal(v.buf)
	binHz := v.sr / float64(fftSize)

	for b := range numBands {
		loIdx := int(bandEdges[b] / binHz)
		hiIdx := int(bandEdges[b+1] / binHz)
		if loIdx < 1 {
			loIdx = 1
		}
		halfLen := len(spectrum) / 2
		if hiIdx >= halfLen {
			hiIdx = halfLen - 1
		}

		var sum float64
		count := 0
		for i := loIdx; i <= hiIdx; i++ {
			sum += cmplx.Abs(spectrum[i])
			count++
		}
		if count > 0 {
			sum /= float64(count)
		}

		if sum > 0 {
			bands[b] = (20*math.Log10(sum) + 10) / 50
		}
		bands[b] = max(0, min(1, bands[b]))

		if bands[b] > v.prev[b] {
			bands[b] = bands[b]*0.6 + v.prev[b]*0.4
		} else {
			bands[b] = bands[b]*0.25 + v.prev[b]*0.75
		}
		v.prev[b] = bands[b]
		v.decayPeak(b, bands[b])
	}

	return bands
}

func (v *Visualizer) decayPeak(b int, level float64) {
	if level >= v.peak[b] {
		v.peak[b] = level
	} else {
		v.peak[b] = math.Max(0, v.peak[b]-peakDecayPerFrame)
	}
}

// bandCenter returns the geometric-mean frequency of band b, used to
// sample the EQ's influence in Render.
func bandCenter(b int) float64 {
	return math.Sqrt(bandEdges[b] * bandEdges[b+1])
}

// eqInfluenceDB approximates the dB boost or cut the active filters apply
// at freqHz without touching the engine's live biquad state: each
// peaking/bandpass/notch band contributes its gain weighted by how close
// freqHz is to its center relative to its bandwidth (freq/Q), shelves
// contribute their full gain on their side of the corner and a falling
// share beyond it, and pass bands contribute a soft rolloff beyond their
// cutoff. It only needs to be accurate enough to decide
// whether a spectrum band should read as boosted or cut.
func eqInfluenceDB(freqHz float64, filters []dsp.FilterNode) float64 {
	total := 0.0
	for _, f := range filters {
		switch f.Type {
		case dsp.Peaking, dsp.BandPass, dsp.Notch:
			bandwidth := f.Freq / math.Max(f.Q, dsp.MinQ)
			dist := math.Abs(freqHz - f.Freq)
			weight := 1.0 / (1.0 + (dist/bandwidth)*(dist/bandwidth))
			total += f.Gain * weight
		case dsp.LowShelf:
			if freqHz <= f.Freq {
				total += f.Gain
			} else {
				total += f.Gain / (1 + math.Pow(freqHz/f.Freq, 2))
			}
		case dsp.HighShelf:
			if freqHz >= f.Freq {
				total += f.Gain
			} else {
				total += f.Gain / (1 + math.Pow(f.Freq/freqHz, 2))
			}
		case dsp.LowPass:
			if freqHz > f.Freq {
				total -= 12 * math.Log2(freqHz/f.Freq)
			}
		case dsp.HighPass:
			if freqHz < f.Freq {
				total -= 12 * math.Log2(f.Freq/freqHz)
			}
		}
	}
	return total
}

// Render converts band levels into a colored spectrum bar string. When the
// EQ is enabled, bands whose center frequency falls under an active boost
// or cut are rendered bold or faint, and a trailing peak-hold character
// marks each band's recent maximum as it decays.
func (v *Visualizer) Render(bands [numBands]float64, filters []dsp.FilterNode, eqEnabled bool) string {
	var sb strings.Builder
	for i, level := range bands {
		idx := max(0, min(int(level*float64(len(barBlocks)-1)), len(barBlocks)-1))
		block := barBlocks[idx]

		var style lipgloss.Style
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		default:
			style = specLowStyle
		}

		if eqEnabled && len(filters) > 0 {
			switch influence := eqInfluenceDB(bandCenter(i), filters); {
			case influence > eqTintThresholdDB:
				style = style.Bold(true)
			case influence < -eqTintThresholdDB:
				style = style.Faint(true)
			}
		}

		sb.WriteString(style.Render(strings.Repeat(block, barWidth-1)))

		peakIdx := max(0, min(int(v.peak[i]*float64(len(barBlocks)-1)), len(barBlocks)-1))
		if peakIdx > idx {
			sb.WriteString(peakStyle.Render(barBlocks[peakIdx]))
		} else {
			sb.WriteString(style.Render(block))
		}

		if i < numBands-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
