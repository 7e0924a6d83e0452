package dsp

import "math"

// Equalizer owns per-channel cascades of biquads and applies them to
// interleaved audio frames. The following invariants hold after every
// mutator: len(processors) == numChannels; for every channel,
// len(processors[ch]) == len(filters); for each band,
// len(processors[ch][band]) == max(1, ceil(filters[band].Order/2)).
type Equalizer struct {
	sampleRate  float64
	numChannels int
	masterGain  float64 // linear, 1.0 = unity
	preset      Preset
	filters     []FilterNode
	// processors[channel][band][section]
	processors [][][]biquad
}

// NewEqualizer constructs an Equalizer with the given sample rate, channel
// count, and initial filter set. Processors are built fresh.
func NewEqualizer(sampleRate float64, numChannels int, filters []FilterNode) *Equalizer {
	eq := &Equalizer{
		sampleRate:  sampleRate,
		numChannels: numChannels,
		masterGain:  1.0,
		preset:      PresetFlat,
		filters:     append([]FilterNode(nil), filters...),
	}
	eq.rebuild()
	return eq
}

// SampleRate returns the equalizer's configured sample rate.
func (eq *Equalizer) SampleRate() float64 { return eq.sampleRate }

// NumChannels returns the equalizer's configured channel count.
func (eq *Equalizer) NumChannels() int { return eq.numChannels }

// MasterGain returns the current linear master gain.
func (eq *Equalizer) MasterGain() float64 { return eq.masterGain }

// Filters returns a copy of the current ordered filter list.
func (eq *Equalizer) Filters() []FilterNode {
	return append([]FilterNode(nil), eq.filters...)
}

// Preset returns the currently selected preset.
func (eq *Equalizer) Preset() Preset { return eq.preset }

// SetNumChannels changes the channel count. This is always a structural
// change and triggers a full rebuild (fresh biquad state, at most one
// click, unavoidable).
func (eq *Equalizer) SetNumChannels(n int) {
	if n < 0 {
		n = 0
	}
	if n == eq.numChannels {
		return
	}
	eq.numChannels = n
	eq.rebuild()
}

// SetMasterGain sets the linear master gain (unclamped; callers convert
// dB via 10^(db/20) before calling this).
func (eq *Equalizer) SetMasterGain(linear float64) {
	eq.masterGain = linear
}

// ProcessFrame applies master gain then every band's cascade to an
// interleaved frame in place, selecting channel c = i % numChannels for
// sample i. A numChannels == 0 equalizer is a no-op.
func (eq *Equalizer) ProcessFrame(frame []float64) {
	if eq.numChannels == 0 {
		return
	}
	if math.Abs(eq.masterGain-1.0) > 1e-9 {
		for i := range frame {
			frame[i] *= eq.masterGain
		}
	}
	for i, s := range frame {
		ch := i % eq.numChannels
		if ch >= len(eq.processors) {
			continue
		}
		for band := range eq.processors[ch] {
			for section := range eq.processors[ch][band] {
				s = eq.processors[ch][band][section].process(s)
			}
		}
		frame[i] = s
	}
}

// SetAllFilters replaces the entire filter list, truncated to MaxEQFilters
// bands. Structural mismatch (band count changed) triggers a full rebuild;
// otherwise runs the non-structural reconciliation path.
func (eq *Equalizer) SetAllFilters(filters []FilterNode) {
	if len(filters) > MaxEQFilters {
		filters = filters[:MaxEQFilters]
	}
	clamped := make([]FilterNode, len(filters))
	for i, f := range filters {
		clamped[i] = f.Clamped()
	}
	eq.filters = clamped
	eq.ParametersChanged()
}

// UpdateFilter replaces a single band by index, clamping it, then
// reconciles through the non-structural path: an order change grows or
// truncates that band's section chain in place, keeping surviving state.
func (eq *Equalizer) UpdateFilter(index int, n FilterNode) {
	if index < 0 || index >= len(eq.filters) {
		return
	}
	eq.filters[index] = n.Clamped()
	eq.ParametersChanged()
}

// ParametersChanged is the hot-path parameter update entry point: if the
// processor tensor's outer shape (channel or band count) disagrees with
// the current filter list, do a full rebuild;
// otherwise reconcile each band's section count in place, preserving z1/z2
// on sections that survive.
func (eq *Equalizer) ParametersChanged() {
	if len(eq.processors) != eq.numChannels {
		eq.rebuild()
		return
	}
	for ch := range eq.processors {
		if len(eq.processors[ch]) != len(eq.filters) {
			eq.rebuild()
			return
		}
	}

	for ch := range eq.processors {
		for band, node := range eq.filters {
			chain := eq.processors[ch][band]
			count := node.SectionCount()
			if len(chain) < count {
				chain = append(chain, make([]biquad, count-len(chain))...)
			} else if len(chain) > count {
				chain = chain[:count]
			}
			for i := range chain {
				chain[i].setCoefficients(node, eq.sampleRate)
			}
			eq.processors[ch][band] = chain
		}
	}
}

// rebuild reconstructs the processor tensor from scratch with fresh
// (zero-state) biquads, matching the current channel count and filter list.
func (eq *Equalizer) rebuild() {
	processors := make([][][]biquad, eq.numChannels)
	for ch := range processors {
		bands := make([][]biquad, len(eq.filters))
		for b, node := range eq.filters {
			count := node.SectionCount()
			chain := make([]biquad, count)
			for i := range chain {
				chain[i].setCoefficients(node, eq.sampleRate)
			}
			bands[b] = chain
		}
		processors[ch] = bands
	}
	eq.processors = processors
}

// SetPreset switches to a preset wholesale, replacing the filter list and
// always rebuilding (presets are structural changes; state is not
// preserved).
func (eq *Equalizer) SetPreset(p Preset) {
	eq.preset = p
	eq.filters = p.Filters()
	eq.rebuild()
}

// ResetParameters sets master gain to 1 and the filter list back to the
// current preset's defaults.
func (eq *Equalizer) ResetParameters() {
	eq.masterGain = 1.0
	eq.filters = eq.preset.Filters()
	eq.rebuild()
}

// ResetFilterNode restores a single band to the preset's corresponding
// band, or a built-in default if the preset has none there, without
// touching neighbouring bands.
func (eq *Equalizer) ResetFilterNode(index int) error {
	if index < 0 || index >= len(eq.filters) {
		return errInvalidBandIndex(index)
	}
	presetBands := eq.preset.Filters()
	if index < len(presetBands) {
		eq.filters[index] = presetBands[index]
	} else {
		eq.filters[index] = DefaultFilterNode()
	}
	eq.ParametersChanged()
	return nil
}

// SectionCounts exposes, per band, ceil(order/2), for callers that need
// to reason about cascade depth without touching DSP state.
func (eq *Equalizer) SectionCounts() []int {
	counts := make([]int, len(eq.filters))
	for i, f := range eq.filters {
		counts[i] = f.SectionCount()
	}
	return counts
}

// ResponseDB evaluates the equalizer's combined magnitude response in dB at
// frequency freqHz: sums over bands of |H(e^{jω})|² converted to dB and
// multiplied by the band's section count, plus master gain in dB.
// Frequencies outside (0, Fs/2) return 0 dB.
func (eq *Equalizer) ResponseDB(freqHz float64) float64 {
	nyquist := eq.sampleRate / 2
	if freqHz <= 0 || freqHz >= nyquist {
		return 0
	}
	w := 2 * math.Pi * freqHz / eq.sampleRate
	total := 0.0
	for _, node := range eq.filters {
		var bq biquad
		bq.setCoefficients(node, eq.sampleRate)
		mag2 := bq.magnitudeSquared(w)
		db := 10 * math.Log10(math.Max(mag2, 1e-20))
		total += db * float64(node.SectionCount())
	}
	total += 20 * math.Log10(math.Max(eq.masterGain, 1e-20))
	return total
}

// BandMagnitudeDB evaluates a single band's magnitude response in dB,
// scaled by its section count, matching the per-band term summed inside
// ResponseDB. Exposed so callers (and tests) can verify the two agree.
func (eq *Equalizer) BandMagnitudeDB(band int, freqHz float64) float64 {
	if band < 0 || band >= len(eq.filters) {
		return 0
	}
	nyquist := eq.sampleRate / 2
	if freqHz <= 0 || freqHz >= nyquist {
		return 0
	}
	node := eq.filters[band]
	w := 2 * math.Pi * freqHz / eq.sampleRate
	var bq biquad
	bq.setCoefficients(node, eq.sampleRate)
	mag2 := bq.magnitudeSquared(w)
	db := 10 * math.Log10(math.Max(mag2, 1e-20))
	return db * float64(node.SectionCount())
}

// ResponseCurve evaluates ResponseDB at numPoints frequencies spaced
// logarithmically between 20 Hz and 20 kHz, for visualization.
func (eq *Equalizer) ResponseCurve(numPoints int) []float64 {
	if numPoints <= 0 {
		return nil
	}
	out := make([]float64, numPoints)
	logMin := math.Log10(20.0)
	logMax := math.Log10(20000.0)
	for i := 0; i < numPoints; i++ {
		frac := 0.0
		if numPoints > 1 {
			frac = float64(i) / float64(numPoints-1)
		}
		freq := math.Pow(10, logMin+frac*(logMax-logMin))
		out[i] = eq.ResponseDB(freq)
	}
	return out
}

type bandIndexError int

func (e bandIndexError) Error() string {
	return "dsp: invalid band index"
}

func errInvalidBandIndex(i int) error {
	return bandIndexError(i)
}
